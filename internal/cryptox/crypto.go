// Package cryptox implements the at-rest encryption of uploaded media and
// the one-way hashing of the shared login secret.
//
// An envelope is laid out as
//
//	[12-byte nonce][ciphertext || 16-byte GCM tag]
//
// with no version byte. A fresh random nonce is drawn for every Seal call;
// reusing a nonce under the same key breaks GCM confidentiality.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/msgboard/internal/common"
)

const (
	// KeySize is the AES-128 key length used for generated keys.
	KeySize = 16
	// NonceSize is the GCM nonce length stored at the head of an envelope.
	NonceSize = 12
	// TagSize is the GCM authentication tag length appended to the ciphertext.
	TagSize = 16
)

// ErrInvalidKeyLength is returned for keys that are not 16, 24 or 32 bytes.
var ErrInvalidKeyLength = errors.New("invalid key length")

// Codec seals and opens envelopes with a single symmetric key.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	aead cipher.AEAD
	rand io.Reader
}

// Option customizes a Codec.
type Option func(*Codec)

// WithRandom replaces the nonce source. Tests use it to get deterministic
// envelopes; production code must keep crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) { c.rand = r }
}

// NewCodec builds an AES-GCM codec for key.
func NewCodec(key []byte, opts ...Option) (*Codec, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, err
	}

	c := &Codec{aead: aead, rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Seal encrypts plaintext and returns nonce||ciphertext||tag.
// An empty plaintext is valid and yields a NonceSize+TagSize envelope.
func (c *Codec) Seal(plaintext []byte) ([]byte, error) {
	envelope := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(c.rand, envelope); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return c.aead.Seal(envelope, envelope[:NonceSize], plaintext, nil), nil
}

// Open reverses Seal. Truncated input and any authentication failure
// (tampering, wrong key) both yield common.ErrIntegrity and no plaintext.
func (c *Codec) Open(envelope []byte) ([]byte, error) {
	if len(envelope) < NonceSize {
		return nil, common.ErrIntegrity
	}
	nonce, sealed := envelope[:NonceSize], envelope[NonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}

// GenerateKey returns a fresh random AES-128 key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DecodeKey parses a standard base64 key and checks its AES length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, ErrInvalidKeyLength
	}
}

// EncodeKey renders key in the form DecodeKey accepts.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}
