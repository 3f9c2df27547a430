package domain

import "errors"

var (
	// ErrAlreadyListed is returned when adding a username that is already allowed
	ErrAlreadyListed = errors.New("user already on the list")

	// ErrNotListed is returned when removing a username that is not allowed
	ErrNotListed = errors.New("user not on the list")
)

// AllowList holds the usernames permitted to use the bot.
// The owner identity is never stored here; ownership is checked separately.
type AllowList struct {
	names []string
}

// NewAllowList creates an allow list from a username slice
func NewAllowList(names []string) *AllowList {
	l := &AllowList{}
	for _, n := range names {
		if n != "" {
			l.names = append(l.names, n)
		}
	}
	return l
}

// Contains checks membership by username
func (l *AllowList) Contains(name string) bool {
	for _, n := range l.names {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends a username, rejecting duplicates
func (l *AllowList) Add(name string) error {
	if l.Contains(name) {
		return ErrAlreadyListed
	}
	l.names = append(l.names, name)
	return nil
}

// Remove deletes a username by value
func (l *AllowList) Remove(name string) error {
	for i, n := range l.names {
		if n == name {
			l.names = append(l.names[:i], l.names[i+1:]...)
			return nil
		}
	}
	return ErrNotListed
}

// Names returns a copy of the current usernames in list order
func (l *AllowList) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Len returns the number of listed usernames
func (l *AllowList) Len() int {
	return len(l.names)
}
