package repo

import (
	"context"
	"io"
)

// FetchFunc writes a media payload into w, typically by downloading it
// from the messaging platform.
type FetchFunc func(ctx context.Context, w io.Writer) error

// UseFunc consumes a staged file. The path is valid only until UseFunc
// returns; the staging area is released afterwards on every exit path.
type UseFunc func(ctx context.Context, path string) error

// StagingRepo is scoped temporary storage for media pending
// transcription. Files never leak across requests.
type StagingRepo interface {
	// WithFile stages a payload with the given extension, runs use on
	// it, and deletes the staged area regardless of outcome. sizeHint
	// (when >= 0) is validated against the size ceiling before fetch;
	// the delivered size is validated after.
	WithFile(ctx context.Context, ext string, sizeHint int64, fetch FetchFunc, use UseFunc) error
}

// Transcoder converts an audio file into another container format and
// returns the converted file's path, placed alongside the source so a
// scoped staging cleanup covers both.
type Transcoder interface {
	Transcode(ctx context.Context, srcPath, dstFormat string) (string, error)
}
