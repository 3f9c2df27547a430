package domain

import (
	"testing"
	"time"
)

func TestAppendUser_SeedsPersonaOnce(t *testing.T) {
	conv := &Conversation{UserID: 1}

	conv.AppendUser("hello", "persona")
	conv.AppendAssistant("hi")
	conv.AppendUser("again", "persona")

	if len(conv.History) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(conv.History))
	}
	if conv.History[0].Role != RoleSystem || conv.History[0].Content != "persona" {
		t.Errorf("Expected system persona first, got %+v", conv.History[0])
	}
	for _, m := range conv.History[1:] {
		if m.Role == RoleSystem {
			t.Error("Expected exactly one system message")
		}
	}
}

func TestAppendUser_RolesAlternate(t *testing.T) {
	conv := &Conversation{UserID: 1}

	conv.AppendUser("q1", "p")
	conv.AppendAssistant("a1")
	conv.AppendUser("q2", "p")
	conv.AppendAssistant("a2")

	want := []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser, RoleAssistant}
	for i, role := range want {
		if conv.History[i].Role != role {
			t.Errorf("Message %d: expected role %s, got %s", i, role, conv.History[i].Role)
		}
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	conv := &Conversation{UserID: 1, LastActiveAt: now.Add(-4 * time.Hour)}

	if !conv.IsExpired(now, 3*time.Hour) {
		t.Error("Expected conversation idle for 4h to be expired with a 3h timeout")
	}
	if conv.IsExpired(now, 5*time.Hour) {
		t.Error("Expected conversation idle for 4h to be fresh with a 5h timeout")
	}
	if conv.IsExpired(now, 0) {
		t.Error("Expected zero timeout to disable expiry")
	}
}
