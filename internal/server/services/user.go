// Package services contains server-side business logic. This file implements
// UserService: shared-password login, lazy identity creation, and stateless
// access tokens.
//
// Every identity is unlocked by the same board-wide password, so a login name
// is a namespace rather than a security boundary.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/cryptox"
	"github.com/dmitrijs2005/msgboard/internal/dbx"
	"github.com/dmitrijs2005/msgboard/internal/server/auth"
	"github.com/dmitrijs2005/msgboard/internal/server/config"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
	"github.com/dmitrijs2005/msgboard/internal/server/repositories/repomanager"
)

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	User  *models.User
	Token string
}

// UserService provides identity operations.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	sharedPassword              []byte
	sharedPasswordHash          string
}

// NewUserService constructs a UserService from repositories and server config.
// cfg.SecretKey must be valid base64.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*UserService, error) {
	secret, err := base64.StdEncoding.DecodeString(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("secret key is empty")
	}
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   secret,
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		sharedPassword:              []byte(cfg.SharedPassword),
		sharedPasswordHash:          cfg.SharedPasswordHash,
	}, nil
}

// LoginOrCreate checks password against the shared secret and returns the
// identity named loginName, creating it on first use.
func (s *UserService) LoginOrCreate(ctx context.Context, loginName, password string) (*models.User, error) {
	if strings.TrimSpace(loginName) == "" {
		return nil, fmt.Errorf("%w: login name is required", common.ErrValidation)
	}
	if !s.checkPassword([]byte(password)) {
		return nil, common.ErrAuthentication
	}
	return s.EnsureUser(ctx, loginName)
}

// EnsureUser returns the identity named loginName, creating it on first use.
// It does not check the shared password and is meant for trusted in-process
// callers such as startup seeding.
func (s *UserService) EnsureUser(ctx context.Context, loginName string) (*models.User, error) {
	loginName = strings.TrimSpace(loginName)
	if loginName == "" {
		return nil, fmt.Errorf("%w: login name is required", common.ErrValidation)
	}

	user, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByLoginName(ctx, loginName)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}

		hash, err := s.credentialHash()
		if err != nil {
			return nil, err
		}
		return repo.Create(ctx, &models.User{LoginName: loginName, CredentialHash: hash})
	})
	if err != nil {
		// A concurrent first login won the insert; the row exists now.
		if dbx.IsUniqueViolation(err) {
			return s.repomanager.Users(s.db).GetByLoginName(ctx, loginName)
		}
		return nil, fmt.Errorf("login %q: %w", loginName, err)
	}
	return user, nil
}

// IssueToken signs an access token for loginName.
func (s *UserService) IssueToken(loginName string) (string, error) {
	token, err := auth.GenerateToken(loginName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// ValidateToken returns the login name carried by token. Callers treat both
// common.ErrTokenExpired and common.ErrInvalidToken as unauthenticated.
func (s *UserService) ValidateToken(token string) (string, error) {
	return auth.SubjectFromToken(token, s.jwtSecret)
}

// Login is LoginOrCreate followed by IssueToken.
func (s *UserService) Login(ctx context.Context, loginName, password string) (*LoginResult, error) {
	user, err := s.LoginOrCreate(ctx, loginName, password)
	if err != nil {
		return nil, err
	}
	token, err := s.IssueToken(user.LoginName)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

// GetUser resolves an identity by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// --- helpers below ---

func (s *UserService) checkPassword(candidate []byte) bool {
	if s.sharedPasswordHash != "" {
		return cryptox.CompareSecret(s.sharedPasswordHash, candidate)
	}
	if len(s.sharedPassword) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(s.sharedPassword, candidate) == 1
}

// credentialHash is the value stored for new identities: a hash of the
// shared secret, identical in meaning for every user.
func (s *UserService) credentialHash() (string, error) {
	if s.sharedPasswordHash != "" {
		return s.sharedPasswordHash, nil
	}
	h, err := cryptox.HashSecret(s.sharedPassword)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return h, nil
}
