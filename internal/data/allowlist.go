package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

// fileAllowListRepo persists the allow list as a flat newline-delimited
// username file, rewritten wholesale on every mutation.
type fileAllowListRepo struct {
	path string
}

// NewFileAllowListRepo creates a file-backed allow-list repository.
// A missing file is created empty so first startup succeeds.
func NewFileAllowListRepo(path string) (repo.AllowListRepo, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create allow list directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, fmt.Errorf("create allow list file: %w", err)
		}
	}

	return &fileAllowListRepo{path: path}, nil
}

// Load reads all allowed usernames
func (r *fileAllowListRepo) Load() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read allow list: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Save overwrites the file with the full username list
func (r *fileAllowListRepo) Save(names []string) error {
	if err := os.WriteFile(r.path, []byte(strings.Join(names, "\n")), 0644); err != nil {
		return fmt.Errorf("write allow list: %w", err)
	}
	return nil
}
