// Package users declares the identity store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/msgboard/internal/server/models"
)

// Repository persists login identities. Lookups return common.ErrNotFound
// when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByLoginName(ctx context.Context, loginName string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
