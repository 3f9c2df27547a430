package usecase

import (
	"sync"
	"time"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
)

// DefaultIdleTimeout bounds token growth in long-lived histories: a
// conversation idle longer than this is reset on the next message.
const DefaultIdleTimeout = 3 * time.Hour

// ConversationStore owns the per-user conversation histories and
// last-activity marks. State is process-wide and in-memory only.
type ConversationStore struct {
	mu            sync.Mutex
	conversations map[int64]*domain.Conversation
	persona       string
	idleTimeout   time.Duration
}

// NewConversationStore creates a conversation store.
// persona is the system message seeded into every fresh history.
func NewConversationStore(persona string, idleTimeout time.Duration) *ConversationStore {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &ConversationStore{
		conversations: make(map[int64]*domain.Conversation),
		persona:       persona,
		idleTimeout:   idleTimeout,
	}
}

// GetOrCreateHistory returns a copy of the user's history, creating an
// empty conversation on first use. The system persona is not inserted
// here; an empty history is itself the "no history yet" marker.
func (s *ConversationStore) GetOrCreateHistory(userID int64) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.getOrCreateLocked(userID)
	history := make([]domain.Message, len(conv.History))
	copy(history, conv.History)
	return history
}

// AppendUserMessage appends a user message, seeding the system persona
// first if the history is empty.
func (s *ConversationStore) AppendUserMessage(userID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreateLocked(userID).AppendUser(text, s.persona)
}

// AppendAssistantMessage appends an assistant reply to an existing history
func (s *ConversationStore) AppendAssistantMessage(userID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID]
	if !ok || conv.IsEmpty() {
		// A user message must precede any assistant reply; nothing to
		// attach the answer to, so drop it.
		return
	}
	conv.AppendAssistant(text)
}

// Reset removes the user's history and last-activity mark.
// Reports whether a conversation existed. Idempotent.
func (s *ConversationStore) Reset(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID]
	delete(s.conversations, userID)
	return ok && !conv.IsEmpty()
}

// HasHistory checks whether the user has an active conversation
func (s *ConversationStore) HasHistory(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID]
	return ok && !conv.IsEmpty()
}

// TouchAndCheckExpiry applies the inactivity window. If the gap since
// the last accepted message exceeds the idle timeout the history is
// reset and true is returned; otherwise the mark moves to now.
// Must run before AppendUserMessage for the same incoming message.
func (s *ConversationStore) TouchAndCheckExpiry(userID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID]
	expired := ok && !conv.LastActiveAt.IsZero() && conv.IsExpired(now, s.idleTimeout)
	if expired {
		delete(s.conversations, userID)
	}

	// The mark is set on every accepted message, including the one that
	// just started a fresh history.
	s.getOrCreateLocked(userID).Touch(now)
	return expired
}

func (s *ConversationStore) getOrCreateLocked(userID int64) *domain.Conversation {
	conv, ok := s.conversations[userID]
	if !ok {
		conv = &domain.Conversation{UserID: userID}
		s.conversations[userID] = conv
	}
	return conv
}
