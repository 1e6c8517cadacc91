package models

import "time"

// Message is a board post. OwnerID never changes after creation; Recording
// and Image are replaced wholesale on update.
type Message struct {
	ID        int64
	OwnerID   int64
	OwnerName string
	Text      *string
	Recording *Media
	Image     *Media
	CreatedAt time.Time
}

// HasRecording reports whether an encrypted recording is attached.
func (m *Message) HasRecording() bool { return m.Recording != nil }

// HasImage reports whether an encrypted image is attached.
func (m *Message) HasImage() bool { return m.Image != nil }

// Attachment returns the media of the given kind, or nil.
func (m *Message) Attachment(kind MediaKind) *Media {
	switch kind {
	case MediaRecording:
		return m.Recording
	case MediaImage:
		return m.Image
	default:
		return nil
	}
}

// SetAttachment replaces the media of the given kind.
func (m *Message) SetAttachment(kind MediaKind, media *Media) {
	switch kind {
	case MediaRecording:
		m.Recording = media
	case MediaImage:
		m.Image = media
	}
}
