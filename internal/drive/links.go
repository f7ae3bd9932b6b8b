// Package drive integrates the video catalog with Google Drive: link parsing
// plus folder listing through the Drive v3 API.
package drive

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	filePathPattern = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	idQueryPattern  = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	bareIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ExtractFileID pulls the file id out of a Drive share link. Accepted forms:
// https://drive.google.com/file/d/FILE_ID/view, open?id=FILE_ID links, and a
// bare file id pasted as-is.
func ExtractFileID(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	if m := filePathPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	if m := idQueryPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	// Drive file ids are opaque tokens longer than typical words; the length
	// check keeps plain text from passing as an id.
	if bareIDPattern.MatchString(trimmed) && len(trimmed) > 20 {
		return trimmed, true
	}
	return "", false
}

// PreviewURL builds the embeddable preview URL for a file.
func PreviewURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", fileID)
}

// ThumbnailURL builds the standard thumbnail URL for a file.
func ThumbnailURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w800", fileID)
}
