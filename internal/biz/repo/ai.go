package repo

import (
	"context"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
)

// Snapshot is one cumulative rendering of an in-progress chat answer.
// Text is the full answer so far, never a delta.
type Snapshot struct {
	Done bool
	Text string
}

// ChatStream yields successive answer snapshots until the provider
// signals completion. A stream is not restartable; a retry requires a
// fresh ChatCompletionStream call.
type ChatStream interface {
	// Recv returns the next snapshot. io.EOF signals normal completion.
	Recv() (Snapshot, error)

	// Close releases the underlying network stream
	Close() error
}

// AIRepo is the AI provider interface
type AIRepo interface {
	// ChatCompletionStream starts a streamed chat completion over the
	// given conversation history
	ChatCompletionStream(ctx context.Context, history []domain.Message) (ChatStream, error)

	// GenerateImages generates images for a prompt and returns their URLs
	GenerateImages(ctx context.Context, prompt string) ([]string, error)

	// TranscribeAudio transcribes the audio file at path. An empty or
	// whitespace-only result means nothing intelligible, not a fault.
	TranscribeAudio(ctx context.Context, path string) (string, error)
}
