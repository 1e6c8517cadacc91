package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/msgboard/internal/server/models"
)

var (
	imageTypes = []struct{ ext, ct string }{
		{".png", "image/png"},
		{".gif", "image/gif"},
		{".webp", "image/webp"},
		{".svg", "image/svg+xml"},
	}
	audioTypes = []struct{ ext, ct string }{
		{".mp3", "audio/mpeg"},
		{".wav", "audio/wav"},
		{".ogg", "audio/ogg"},
		{".webm", "audio/webm"},
		{".m4a", "audio/mp4"},
	}
)

// contentType guesses a media type from the uploaded filename. Unknown
// images are served as JPEG and unknown recordings as MPEG audio.
func contentType(kind models.MediaKind, filename string) string {
	lower := strings.ToLower(filename)

	table, fallback := imageTypes, "image/jpeg"
	if kind == models.MediaRecording {
		table, fallback = audioTypes, "audio/mpeg"
	}
	for _, t := range table {
		if strings.Contains(lower, t.ext) {
			return t.ct
		}
	}
	return fallback
}
