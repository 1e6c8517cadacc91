package models

import (
	"fmt"

	"github.com/dmitrijs2005/msgboard/internal/common"
)

// MediaKind names one of the two attachment slots of a message.
type MediaKind string

const (
	MediaRecording MediaKind = "recording"
	MediaImage     MediaKind = "image"
)

// ParseMediaKind validates a kind coming from a request path.
func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(s); k {
	case MediaRecording, MediaImage:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown media kind %q", common.ErrValidation, s)
	}
}

// Blob locates an encrypted envelope. Exactly one of Data (envelope kept in
// the message row) or StorageKey (envelope kept in object storage) is set.
type Blob struct {
	Data       []byte
	StorageKey string
}

// Empty reports whether the blob points nowhere.
func (b Blob) Empty() bool {
	return b.Data == nil && b.StorageKey == ""
}

// Media is an attachment as persisted: where its envelope lives and the
// filename it was uploaded with.
type Media struct {
	Filename string
	Blob     Blob
}

// Upload is a plaintext attachment as received from a caller.
type Upload struct {
	Filename string
	Content  []byte
}

// Present reports whether u carries a non-empty payload.
func (u *Upload) Present() bool {
	return u != nil && len(u.Content) > 0
}

// MediaContent is a decrypted attachment ready to be served.
type MediaContent struct {
	Kind     MediaKind
	Filename string
	Content  []byte
}
