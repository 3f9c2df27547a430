package usecase

import (
	"errors"
	"testing"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
)

// Mock implementations

type mockAllowListRepo struct {
	names     []string
	saveCalls int
	saveErr   error
}

func (m *mockAllowListRepo) Load() ([]string, error) {
	return m.names, nil
}

func (m *mockAllowListRepo) Save(names []string) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.names = names
	return nil
}

func newTestPolicy(t *testing.T, ownerID int64, names []string) (*AccessPolicy, *AllowListUsecase, *mockAllowListRepo) {
	t.Helper()
	repo := &mockAllowListRepo{names: names}
	allowList, err := NewAllowListUsecase(repo)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return NewAccessPolicy(ownerID, allowList), allowList, repo
}

// Tests

func TestAccessPolicy_OwnerAlwaysAuthorized(t *testing.T) {
	policy, _, _ := newTestPolicy(t, 100, nil)

	if !policy.IsAuthorized(100, "") {
		t.Error("Expected owner authorized even with an empty allow list")
	}
	if !policy.IsOwner(100) {
		t.Error("Expected owner recognized")
	}
}

func TestAccessPolicy_ListedUserAuthorized(t *testing.T) {
	policy, _, _ := newTestPolicy(t, 100, []string{"alice"})

	if !policy.IsAuthorized(200, "alice") {
		t.Error("Expected listed username authorized")
	}
	if policy.IsOwner(200) {
		t.Error("Expected listed user not to be owner")
	}
}

func TestAccessPolicy_UnlistedUserRejected(t *testing.T) {
	policy, _, _ := newTestPolicy(t, 100, []string{"alice"})

	if policy.IsAuthorized(200, "bob") {
		t.Error("Expected unlisted username rejected")
	}
	if policy.IsAuthorized(200, "") {
		t.Error("Expected empty username rejected")
	}
}

func TestAllowListUsecase_AddPersists(t *testing.T) {
	_, allowList, repo := newTestPolicy(t, 100, nil)

	if err := allowList.Add("alice"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if repo.saveCalls != 1 {
		t.Errorf("Expected one save, got %d", repo.saveCalls)
	}
	if len(repo.names) != 1 || repo.names[0] != "alice" {
		t.Errorf("Expected persisted list [alice], got %v", repo.names)
	}
}

func TestAllowListUsecase_DuplicateAddDoesNotPersist(t *testing.T) {
	_, allowList, repo := newTestPolicy(t, 100, []string{"alice"})

	if err := allowList.Add("alice"); !errors.Is(err, domain.ErrAlreadyListed) {
		t.Fatalf("Expected ErrAlreadyListed, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Errorf("Expected durable copy untouched, got %d saves", repo.saveCalls)
	}
}

func TestAllowListUsecase_AddRollsBackOnSaveFailure(t *testing.T) {
	_, allowList, repo := newTestPolicy(t, 100, nil)
	repo.saveErr = errors.New("disk full")

	if err := allowList.Add("alice"); err == nil {
		t.Fatal("Expected persistence failure to surface")
	}
	if allowList.Contains("alice") {
		t.Error("Expected in-memory state rolled back")
	}
}

func TestAllowListUsecase_RemovePersists(t *testing.T) {
	_, allowList, repo := newTestPolicy(t, 100, []string{"alice", "bob"})

	if err := allowList.Remove("alice"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(repo.names) != 1 || repo.names[0] != "bob" {
		t.Errorf("Expected persisted list [bob], got %v", repo.names)
	}

	if err := allowList.Remove("mallory"); !errors.Is(err, domain.ErrNotListed) {
		t.Errorf("Expected ErrNotListed, got %v", err)
	}
}
