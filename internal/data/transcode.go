package data

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

// ffmpegTranscoder converts audio containers by shelling out to ffmpeg
type ffmpegTranscoder struct{}

// NewFFmpegTranscoder creates the ffmpeg-backed transcoder
func NewFFmpegTranscoder() repo.Transcoder {
	return &ffmpegTranscoder{}
}

// Transcode converts srcPath into dstFormat, writing the result next to
// the source so scoped staging cleanup covers both files.
func (t *ffmpegTranscoder) Transcode(ctx context.Context, srcPath, dstFormat string) (string, error) {
	ext := filepath.Ext(srcPath)
	dstPath := strings.TrimSuffix(srcPath, ext) + "." + strings.TrimPrefix(dstFormat, ".")

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-loglevel", "error", "-i", srcPath, dstPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg convert failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return dstPath, nil
}
