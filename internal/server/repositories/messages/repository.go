// Package messages declares the message store contract and its PostgreSQL
// implementation.
package messages

import (
	"context"

	"github.com/dmitrijs2005/msgboard/internal/server/models"
)

// Repository persists board messages.
//
// GetByID and GetForUpdate return complete messages including envelope
// blobs; GetForUpdate additionally locks the row until the surrounding
// transaction ends. ListAll and ListByOwner are projections: attachments
// carry filenames but an empty Blob. Both list in insertion order.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Message, error)
	Update(ctx context.Context, msg *models.Message) error
	ListAll(ctx context.Context) ([]*models.Message, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Message, error)
}
