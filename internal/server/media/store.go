// Package media decides where encrypted envelopes live: inside the message
// row or in S3-compatible object storage. Stores never see plaintext.
package media

import (
	"context"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
)

// Store places envelopes and fetches them back.
type Store interface {
	Put(ctx context.Context, envelope []byte) (models.Blob, error)
	Get(ctx context.Context, blob models.Blob) ([]byte, error)
}

// Inline keeps the envelope in Blob.Data, i.e. in the message row.
type Inline struct{}

func (Inline) Put(_ context.Context, envelope []byte) (models.Blob, error) {
	data := make([]byte, len(envelope))
	copy(data, envelope)
	return models.Blob{Data: data}, nil
}

func (Inline) Get(_ context.Context, blob models.Blob) ([]byte, error) {
	if blob.Data == nil {
		return nil, common.ErrNotFound
	}
	return blob.Data, nil
}
