package repo

// AllowListRepo is the allow-list persistence interface.
// Save rewrites the durable copy wholesale; there is no append.
type AllowListRepo interface {
	// Load reads all allowed usernames
	Load() ([]string, error)

	// Save overwrites the durable copy with the full username list
	Save(names []string) error
}
