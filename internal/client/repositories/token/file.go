package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/common"
	"github.com/dmitrijs2005/prodauth/internal/filex"
	"github.com/spf13/afero"
)

// FileStore keeps the token in a small JSON document on an afero filesystem:
//
//	{"auth_token": "...", "auth_token_saved_at": "2025-01-01T00:00:00Z"}
type FileStore struct {
	fs   afero.Fs
	path string
	now  func() time.Time

	mu sync.Mutex
}

var (
	_ Store           = (*FileStore)(nil)
	_ SavedAtReporter = (*FileStore)(nil)
)

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path, now: time.Now}
}

func (s *FileStore) read() (map[string]string, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	doc := map[string]string{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}
	return doc, nil
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return doc[common.TokenStorageKey], nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(map[string]string{
		common.TokenStorageKey: token,
		common.TokenSavedAtKey: s.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := filex.WriteFileAtomic(s.fs, s.path, b, 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := filex.RemoveIfExists(s.fs, s.path); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *FileStore) SavedAt(_ context.Context) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return time.Time{}, false, err
	}
	v, ok := doc[common.TokenSavedAtKey]
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: saved_at %q", ErrMalformed, v)
	}
	return t, true, nil
}
