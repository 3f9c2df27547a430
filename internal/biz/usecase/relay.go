package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

// DefaultEditThreshold is the minimum answer growth, in bytes, required
// to trigger a mid-stream message edit. It bounds edit calls against the
// rate-limited platform API to roughly one per threshold of growth.
const DefaultEditThreshold = 100

// StreamRelay drives the outbound-message lifecycle for a streamed chat
// answer: create the message on the first non-empty snapshot, then edit
// it in place as the cumulative text grows.
type StreamRelay struct {
	threshold int
	logger    *slog.Logger
}

// NewStreamRelay creates a relay with the given edit debounce threshold
func NewStreamRelay(threshold int, logger *slog.Logger) *StreamRelay {
	if threshold <= 0 {
		threshold = DefaultEditThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamRelay{
		threshold: threshold,
		logger:    logger.With("component", "relay"),
	}
}

// Relay consumes stream until completion and returns the final answer
// text. If the provider yields nothing, no outbound message is created
// and the returned text is empty; the caller decides how to report that.
func (r *StreamRelay) Relay(ctx context.Context, stream repo.ChatStream, sink repo.StreamSink) (string, error) {
	defer stream.Close()

	var (
		messageID int
		sent      bool
		lastSent  string
		final     string
	)

	for {
		snap, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return final, fmt.Errorf("receive snapshot: %w", err)
		}

		if snap.Text == "" {
			continue
		}
		final = snap.Text

		if !sent {
			messageID, err = sink.Send(ctx, snap.Text, true)
			if err != nil {
				return final, fmt.Errorf("send message: %w", err)
			}
			sent = true
			lastSent = snap.Text
			continue
		}

		// Debounce: skip edits for small growth unless this is the
		// final snapshot, which always flushes.
		if !snap.Done && len(snap.Text)-len(lastSent) < r.threshold {
			continue
		}
		if snap.Text == lastSent {
			continue
		}

		if err := r.edit(ctx, sink, messageID, snap.Text); err != nil {
			return final, err
		}
		lastSent = snap.Text
	}

	return final, nil
}

// edit applies one in-place update. An unchanged-content rejection is
// absorbed; any other failure is retried once without markdown, since
// formatting-parse errors are the dominant cause of edit rejection.
func (r *StreamRelay) edit(ctx context.Context, sink repo.StreamSink, messageID int, text string) error {
	err := sink.Edit(ctx, messageID, text, true)
	if err == nil || errors.Is(err, repo.ErrMessageNotModified) {
		return nil
	}

	r.logger.Warn("markdown edit failed, retrying as plain text", "error", err)
	if err := sink.Edit(ctx, messageID, text, false); err != nil {
		if errors.Is(err, repo.ErrMessageNotModified) {
			return nil
		}
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}
