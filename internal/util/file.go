package util

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateMimeType sniffs the first 512 bytes of reader and matches them
// against allowed prefixes or full types such as "audio/".
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, ErrInvalidFileType
}

func IsAudio(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeAudio)
}

// AudioExtension returns the lower-cased extension of name when it is an accepted audio type.
func AudioExtension(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedAudioExtensions {
		if ext == allowed {
			return ext, true
		}
	}
	return "", false
}
