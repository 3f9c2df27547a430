package domain

import (
	"errors"
	"strings"
)

// MaxAudioFileSize is the transcription upload ceiling (25 MiB)
const MaxAudioFileSize int64 = 25 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when a media payload exceeds MaxAudioFileSize
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrExtensionNotAllowed is returned for container formats the
	// transcription capability does not accept
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// allowedAudioExtensions are the container formats accepted for transcription
var allowedAudioExtensions = []string{"mp3", "mp4", "mpeg", "mpga", "m4a", "wav", "webm"}

// IsAllowedAudioExtension checks if ext is an accepted transcription format.
// A leading dot is tolerated.
func IsAllowedAudioExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range allowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
