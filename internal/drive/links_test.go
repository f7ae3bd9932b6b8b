package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFileID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"share link", "https://drive.google.com/file/d/1AbCdEfGhIjKlMnOpQrStUv/view", "1AbCdEfGhIjKlMnOpQrStUv", true},
		{"open link", "https://drive.google.com/open?id=1AbCdEfGhIjKlMnOpQrStUv", "1AbCdEfGhIjKlMnOpQrStUv", true},
		{"bare id", "1AbCdEfGhIjKlMnOpQrStUv", "1AbCdEfGhIjKlMnOpQrStUv", true},
		{"padded link", "  https://drive.google.com/file/d/1AbCdEfGhIjKlMnOpQrStUv/preview ", "1AbCdEfGhIjKlMnOpQrStUv", true},
		{"short token", "abc123", "", false},
		{"plain text", "not a drive link", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractFileID(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPreviewAndThumbnailURLs(t *testing.T) {
	assert.Equal(t, "https://drive.google.com/file/d/abc/preview", PreviewURL("abc"))
	assert.Equal(t, "https://drive.google.com/thumbnail?id=abc&sz=w800", ThumbnailURL("abc"))
	assert.Empty(t, PreviewURL(""))
	assert.Empty(t, ThumbnailURL(""))
}
