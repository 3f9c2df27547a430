package data

import (
	"errors"
	"io"
	"testing"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

func deltaFeed(deltas ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(deltas) {
			return "", io.EOF
		}
		d := deltas[i]
		i++
		return d, nil
	}
}

func collect(t *testing.T, s repo.ChatStream) []repo.Snapshot {
	t.Helper()
	var snaps []repo.Snapshot
	for {
		snap, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return snaps
		}
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		snaps = append(snaps, snap)
	}
}

func TestChatStream_AccumulatesDeltas(t *testing.T) {
	s := &chatStream{recv: deltaFeed("Hel", "lo ", "world")}

	snaps := collect(t, s)
	want := []repo.Snapshot{
		{Done: false, Text: "Hel"},
		{Done: false, Text: "Hello "},
		{Done: false, Text: "Hello world"},
		{Done: true, Text: "Hello world"},
	}
	if len(snaps) != len(want) {
		t.Fatalf("Expected %d snapshots, got %d: %+v", len(want), len(snaps), snaps)
	}
	for i, w := range want {
		if snaps[i] != w {
			t.Errorf("Snapshot %d: expected %+v, got %+v", i, w, snaps[i])
		}
	}
}

func TestChatStream_EmptyProviderYieldsNothing(t *testing.T) {
	s := &chatStream{recv: deltaFeed()}

	snaps := collect(t, s)
	if len(snaps) != 0 {
		t.Errorf("Expected no snapshots from an empty provider, got %+v", snaps)
	}
}

func TestChatStream_ErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	s := &chatStream{recv: func() (string, error) { return "", boom }}

	if _, err := s.Recv(); !errors.Is(err, boom) {
		t.Errorf("Expected provider error to propagate, got %v", err)
	}
}

func TestChatStream_EOFAfterDone(t *testing.T) {
	s := &chatStream{recv: deltaFeed("hi")}

	collect(t, s)
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF after completion, got %v", err)
	}
}
