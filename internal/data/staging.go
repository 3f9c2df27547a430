package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

// StagingArea implements scoped temporary storage for media pending
// transcription. Every WithFile call gets its own directory under base,
// removed on all exit paths.
type StagingArea struct {
	base string
}

// NewStagingArea creates a staging area rooted at base, creating the
// directory when absent. An empty base falls back to the OS temp dir.
func NewStagingArea(base string) (*StagingArea, error) {
	if base == "" {
		base = filepath.Join(os.TempDir(), "telegram-gpt-bridge")
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &StagingArea{base: base}, nil
}

// WithFile stages a payload and runs use on it. The size ceiling is
// checked against sizeHint before fetch when the size is knowable in
// advance, and against the delivered bytes after.
func (a *StagingArea) WithFile(ctx context.Context, ext string, sizeHint int64, fetch repo.FetchFunc, use repo.UseFunc) (err error) {
	if sizeHint >= 0 && sizeHint > domain.MaxAudioFileSize {
		return domain.ErrFileTooLarge
	}

	dir, err := os.MkdirTemp(a.base, "stage-")
	if err != nil {
		return fmt.Errorf("create staging scope: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, uuid.NewString()+"."+strings.TrimPrefix(ext, "."))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}

	if err := fetch(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("fetch media: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close staged file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat staged file: %w", err)
	}
	if info.Size() > domain.MaxAudioFileSize {
		return domain.ErrFileTooLarge
	}

	return use(ctx, path)
}
