package repo

import (
	"context"
	"errors"
)

// ErrMessageNotModified is returned by StreamSink.Edit when the platform
// rejects an edit because the content is unchanged. Callers treat it as
// a no-op, never as a fault.
var ErrMessageNotModified = errors.New("message not modified")

// StreamSink is the outbound side of a streamed reply: one Send to
// create the message, then Edits in place as the answer grows.
type StreamSink interface {
	// Send creates a new outbound message and returns its handle
	Send(ctx context.Context, text string, markdown bool) (int, error)

	// Edit replaces the text of a previously sent message
	Edit(ctx context.Context, messageID int, text string, markdown bool) error
}
