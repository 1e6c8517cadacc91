package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/cryptox"
	"github.com/dmitrijs2005/msgboard/internal/dbx"
	"github.com/dmitrijs2005/msgboard/internal/logging"
	"github.com/dmitrijs2005/msgboard/internal/server/media"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
	"github.com/dmitrijs2005/msgboard/internal/server/repositories/repomanager"
)

// MessageService owns message mutation rules: only the owner may change a
// message, and attachments are encrypted before they leave this service.
// Reading messages and their media is not gated by identity.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *cryptox.Codec
	store       media.Store
	log         logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, codec *cryptox.Codec, store media.Store, log logging.Logger) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: m,
		codec:       codec,
		store:       store,
		log:         log,
	}
}

// Create posts a message for ownerID. Absent or empty uploads leave the
// corresponding attachment unset.
func (s *MessageService) Create(ctx context.Context, ownerID int64, text *string, recording, image *models.Upload) (*models.Message, error) {
	msg, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Message, error) {
		owner, err := s.repomanager.Users(tx).GetByID(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		msg := &models.Message{OwnerID: owner.ID, OwnerName: owner.LoginName, Text: text}
		if err := s.attach(ctx, msg, models.MediaRecording, recording); err != nil {
			return nil, err
		}
		if err := s.attach(ctx, msg, models.MediaImage, image); err != nil {
			return nil, err
		}
		return s.repomanager.Messages(tx).Create(ctx, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.log.Info(ctx, "message created", "message_id", msg.ID, "owner_id", ownerID,
		"has_recording", msg.HasRecording(), "has_image", msg.HasImage())
	return msg, nil
}

// ModifyText replaces the text of a message owned by ownerID. Attachments are
// left untouched.
func (s *MessageService) ModifyText(ctx context.Context, ownerID, messageID int64, newText string) (*models.Message, error) {
	msg, err := s.mutate(ctx, ownerID, messageID, func(ctx context.Context, msg *models.Message) error {
		msg.Text = &newText
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("modify message %d: %w", messageID, err)
	}

	s.log.Info(ctx, "message text modified", "message_id", messageID, "owner_id", ownerID)
	return msg, nil
}

// ReplaceMedia overwrites the attachments given as non-empty uploads. An
// absent upload keeps the stored envelope as is.
func (s *MessageService) ReplaceMedia(ctx context.Context, ownerID, messageID int64, recording, image *models.Upload) (*models.Message, error) {
	msg, err := s.mutate(ctx, ownerID, messageID, func(ctx context.Context, msg *models.Message) error {
		if err := s.attach(ctx, msg, models.MediaRecording, recording); err != nil {
			return err
		}
		return s.attach(ctx, msg, models.MediaImage, image)
	})
	if err != nil {
		return nil, fmt.Errorf("replace media of message %d: %w", messageID, err)
	}

	s.log.Info(ctx, "message media replaced", "message_id", messageID, "owner_id", ownerID,
		"recording", recording.Present(), "image", image.Present())
	return msg, nil
}

// RetrieveMedia decrypts one attachment of a message. A missing message or
// an empty slot yields common.ErrNotFound.
func (s *MessageService) RetrieveMedia(ctx context.Context, messageID int64, kind models.MediaKind) (*models.MediaContent, error) {
	if _, err := models.ParseMediaKind(string(kind)); err != nil {
		return nil, err
	}

	msg, err := s.repomanager.Messages(s.db).GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	att := msg.Attachment(kind)
	if att == nil || att.Blob.Empty() {
		return nil, common.ErrNotFound
	}

	envelope, err := s.fetch(ctx, att.Blob)
	if err != nil {
		return nil, fmt.Errorf("fetch %s of message %d: %w", kind, messageID, err)
	}

	plaintext, err := s.codec.Open(envelope)
	if err != nil {
		s.log.Error(ctx, "stored envelope failed verification", "message_id", messageID, "kind", string(kind))
		return nil, err
	}

	return &models.MediaContent{Kind: kind, Filename: att.Filename, Content: plaintext}, nil
}

// ListByOwner lists the messages of an existing identity in insertion order.
func (s *MessageService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Message, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.Messages(s.db).ListByOwner(ctx, ownerID)
}

// ListAll lists every message in insertion order.
func (s *MessageService) ListAll(ctx context.Context) ([]*models.Message, error) {
	return s.repomanager.Messages(s.db).ListAll(ctx)
}

// --- helpers below ---

// mutate locks the message row, checks ownership, applies fn and saves.
func (s *MessageService) mutate(ctx context.Context, ownerID, messageID int64, fn func(ctx context.Context, msg *models.Message) error) (*models.Message, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Message, error) {
		repo := s.repomanager.Messages(tx)

		msg, err := repo.GetForUpdate(ctx, messageID)
		if err != nil {
			return nil, err
		}
		if msg.OwnerID != ownerID {
			return nil, common.ErrAccessDenied
		}

		if err := fn(ctx, msg); err != nil {
			return nil, err
		}
		if err := repo.Update(ctx, msg); err != nil {
			return nil, err
		}
		return msg, nil
	})
}

// attach encrypts u and stores it in the kind slot of msg. No-op when u is
// absent or empty.
func (s *MessageService) attach(ctx context.Context, msg *models.Message, kind models.MediaKind, u *models.Upload) error {
	if !u.Present() {
		return nil
	}

	envelope, err := s.codec.Seal(u.Content)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", kind, err)
	}

	blob, err := s.store.Put(ctx, envelope)
	if err != nil {
		return fmt.Errorf("store %s: %w", kind, err)
	}

	msg.SetAttachment(kind, &models.Media{Filename: u.Filename, Blob: blob})
	return nil
}

// fetch reads an envelope from wherever it was placed, so rows written
// before a storage switch stay readable.
func (s *MessageService) fetch(ctx context.Context, blob models.Blob) ([]byte, error) {
	if blob.StorageKey == "" {
		return media.Inline{}.Get(ctx, blob)
	}
	return s.store.Get(ctx, blob)
}
