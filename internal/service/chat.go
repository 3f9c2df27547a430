package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/usecase"
)

// ChatService coordinates one chat round trip: inactivity check,
// history append, streamed completion, relay, final answer persist.
type ChatService struct {
	store  *usecase.ConversationStore
	relay  *usecase.StreamRelay
	ai     repo.AIRepo
	logger *slog.Logger
}

// NewChatService creates a chat service
func NewChatService(store *usecase.ConversationStore, relay *usecase.StreamRelay, ai repo.AIRepo, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		store:  store,
		relay:  relay,
		ai:     ai,
		logger: logger.With("component", "chat"),
	}
}

// HandleMessage processes one inbound chat message and streams the
// answer through sink. Returns the final answer text; an empty return
// with a nil error means the provider produced nothing and no outbound
// message was created.
func (s *ChatService) HandleMessage(ctx context.Context, userID int64, text string, now time.Time, sink repo.StreamSink) (string, error) {
	// Expiry must run before the append so the incoming message never
	// lands in a history that should have just been cleared.
	if s.store.TouchAndCheckExpiry(userID, now) {
		s.logger.Info("conversation expired, starting fresh", "user_id", userID)
	}
	s.store.AppendUserMessage(userID, text)

	history := s.store.GetOrCreateHistory(userID)
	stream, err := s.ai.ChatCompletionStream(ctx, history)
	if err != nil {
		return "", fmt.Errorf("start chat completion: %w", err)
	}

	answer, err := s.relay.Relay(ctx, stream, sink)
	if err != nil {
		return answer, fmt.Errorf("relay answer: %w", err)
	}

	if strings.TrimSpace(answer) != "" {
		s.store.AppendAssistantMessage(userID, answer)
	}
	return answer, nil
}
