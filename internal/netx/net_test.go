package netx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartBody(t *testing.T) {
	body, ct, err := MultipartBody(
		map[string]string{"text": "hello"},
		[]FilePart{
			{Field: "image", Filename: "cat.png", Content: []byte("png-bytes")},
			{Field: "recording", Filename: "empty.mp3"},
		},
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	require.NoError(t, req.ParseMultipartForm(1<<20))

	assert.Equal(t, "hello", req.FormValue("text"))
	require.Len(t, req.MultipartForm.File["image"], 1)
	assert.Equal(t, "cat.png", req.MultipartForm.File["image"][0].Filename)

	f, err := req.MultipartForm.File["image"][0].Open()
	require.NoError(t, err)
	defer f.Close()
	b, _ := io.ReadAll(f)
	assert.Equal(t, "png-bytes", string(b))

	assert.Empty(t, req.MultipartForm.File["recording"], "empty files are skipped")
}

func TestJSONBody(t *testing.T) {
	r, err := JSONBody(map[string]string{"a": "b"})
	require.NoError(t, err)
	b, _ := io.ReadAll(r)
	assert.JSONEq(t, `{"a":"b"}`, string(b))

	_, err = JSONBody(make(chan int))
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		resp := &http.Response{Status: "400 Bad Request", Body: io.NopCloser(strings.NewReader(`{"error":"text too long"}`))}
		assert.Equal(t, "text too long", ErrorMessage(resp))
	})

	t.Run("plain body", func(t *testing.T) {
		resp := &http.Response{Status: "502 Bad Gateway", Body: io.NopCloser(strings.NewReader("<html>oops</html>"))}
		assert.Equal(t, "502 Bad Gateway", ErrorMessage(resp))
	})
}
