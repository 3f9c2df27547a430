package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/usecase"
)

func TestFileAllowListRepo_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_users.txt")

	repo, err := NewFileAllowListRepo(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected file created, got %v", err)
	}

	names, err := repo.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected empty list, got %v", names)
	}
}

func TestFileAllowListRepo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_users.txt")
	repo, err := NewFileAllowListRepo(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := repo.Save([]string{"alice", "bob"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	names, err := repo.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Expected [alice bob], got %v", names)
	}
}

func TestFileAllowListRepo_LoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_users.txt")
	if err := os.WriteFile(path, []byte("alice\n\n  \nbob\n"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	repo, err := NewFileAllowListRepo(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	names, err := repo.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("Expected blank lines skipped, got %v", names)
	}
}

func TestDuplicateAddLeavesFileUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_users.txt")
	repo, err := NewFileAllowListRepo(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	allowList, err := usecase.NewAllowListUsecase(repo)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := allowList.Add("alice"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := allowList.Add("alice"); !errors.Is(err, domain.ErrAlreadyListed) {
		t.Fatalf("Expected ErrAlreadyListed, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("Expected file byte-for-byte unchanged, before=%q after=%q", before, after)
	}
}
