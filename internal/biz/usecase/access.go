package usecase

import (
	"fmt"
	"sync"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

// AccessPolicy decides whether an identity may use the bot at all and
// whether it may mutate the allow list (owner only).
type AccessPolicy struct {
	ownerID   int64
	allowList *AllowListUsecase
}

// NewAccessPolicy creates an access policy over the allow-list state
func NewAccessPolicy(ownerID int64, allowList *AllowListUsecase) *AccessPolicy {
	return &AccessPolicy{ownerID: ownerID, allowList: allowList}
}

// IsAuthorized checks general bot use: the owner is always permitted,
// everyone else must be on the allow list by username.
func (p *AccessPolicy) IsAuthorized(userID int64, username string) bool {
	if p.IsOwner(userID) {
		return true
	}
	return username != "" && p.allowList.Contains(username)
}

// IsOwner checks the strictly narrower admin permission
func (p *AccessPolicy) IsOwner(userID int64) bool {
	return userID == p.ownerID
}

// AllowListUsecase owns the in-memory allow list and keeps the durable
// copy in sync: every mutation is persisted in full before it is
// acknowledged to the caller.
type AllowListUsecase struct {
	mu   sync.Mutex
	list *domain.AllowList
	repo repo.AllowListRepo
}

// NewAllowListUsecase loads the allow list from durable storage
func NewAllowListUsecase(r repo.AllowListRepo) (*AllowListUsecase, error) {
	names, err := r.Load()
	if err != nil {
		return nil, fmt.Errorf("load allow list: %w", err)
	}
	return &AllowListUsecase{list: domain.NewAllowList(names), repo: r}, nil
}

// Contains checks membership by username
func (uc *AllowListUsecase) Contains(name string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.list.Contains(name)
}

// Add adds a username and persists the full list. A duplicate returns
// domain.ErrAlreadyListed and leaves the durable copy untouched.
func (uc *AllowListUsecase) Add(name string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.list.Add(name); err != nil {
		return err
	}
	if err := uc.repo.Save(uc.list.Names()); err != nil {
		// Keep memory and disk consistent on persistence failure
		_ = uc.list.Remove(name)
		return fmt.Errorf("persist allow list: %w", err)
	}
	return nil
}

// Remove removes a username and persists the full list
func (uc *AllowListUsecase) Remove(name string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.list.Remove(name); err != nil {
		return err
	}
	if err := uc.repo.Save(uc.list.Names()); err != nil {
		_ = uc.list.Add(name)
		return fmt.Errorf("persist allow list: %w", err)
	}
	return nil
}

// Names returns a copy of the current usernames in list order
func (uc *AllowListUsecase) Names() []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.list.Names()
}

// Len returns the number of listed usernames
func (uc *AllowListUsecase) Len() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.list.Len()
}
