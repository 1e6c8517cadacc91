package models

import (
	"testing"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaKind(t *testing.T) {
	k, err := ParseMediaKind("image")
	require.NoError(t, err)
	assert.Equal(t, MediaImage, k)

	k, err = ParseMediaKind("recording")
	require.NoError(t, err)
	assert.Equal(t, MediaRecording, k)

	_, err = ParseMediaKind("video")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestMessage_Attachments(t *testing.T) {
	m := &Message{}
	assert.False(t, m.HasImage())
	assert.False(t, m.HasRecording())

	rec := &Media{Filename: "a.mp3", Blob: Blob{Data: []byte{1}}}
	m.SetAttachment(MediaRecording, rec)

	assert.True(t, m.HasRecording())
	assert.False(t, m.HasImage())
	assert.Same(t, rec, m.Attachment(MediaRecording))
	assert.Nil(t, m.Attachment(MediaImage))
	assert.Nil(t, m.Attachment("other"))
}

func TestUpload_Present(t *testing.T) {
	var nilUpload *Upload
	assert.False(t, nilUpload.Present())
	assert.False(t, (&Upload{Filename: "x"}).Present())
	assert.True(t, (&Upload{Content: []byte{0}}).Present())
}

func TestBlob_Empty(t *testing.T) {
	assert.True(t, Blob{}.Empty())
	assert.False(t, Blob{Data: []byte{}}.Empty())
	assert.False(t, Blob{StorageKey: "k"}.Empty())
}
