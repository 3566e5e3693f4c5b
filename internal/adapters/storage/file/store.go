package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/madhukiran/stylist-agent/internal/domain"
)

// Store is the local-filesystem HistoryStore fallback: one JSON file per
// user under a single directory. It keeps conversations alive for the
// lifetime of the host when the document store is unreachable at startup.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("fallback directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating fallback directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// path escapes the client-supplied userId so it cannot traverse out of the
// store directory.
func (s *Store) path(userID domain.UserID) string {
	return filepath.Join(s.dir, url.PathEscape(string(userID))+".json")
}

func (s *Store) Load(_ context.Context, userID domain.UserID) (*domain.History, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("file load %q: %w", userID, err)
	}

	var h domain.History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("file load %q: decoding record: %w", userID, err)
	}
	return &h, nil
}

// Save writes the whole record through a temp file and rename, so a crash
// mid-write never leaves a half-written transcript and a concurrent Load
// sees either the old record or the new one.
func (s *Store) Save(_ context.Context, h *domain.History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("file save %q: encoding record: %w", h.UserID, err)
	}

	tmp, err := os.CreateTemp(s.dir, "conversation-*.tmp")
	if err != nil {
		return fmt.Errorf("file save %q: %w", h.UserID, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file save %q: %w", h.UserID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file save %q: %w", h.UserID, err)
	}

	if err := os.Rename(tmp.Name(), s.path(h.UserID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file save %q: %w", h.UserID, err)
	}
	return nil
}
