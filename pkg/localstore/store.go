package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/decentralizedrights/portal/pkg/xcontext"
)

// Keys used by the portal for client-local state.
const (
	KeySession      = "drp.session"
	KeyWallet       = "drp.wallet"
	KeyGamification = "drp_gamification"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store is a key to JSON blob store kept as one file per key in a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	return filepath.Join(s.dir, key+".json"), nil
}

// Get decodes the value stored under key into v. It returns false when the
// key is absent or its content is not valid JSON; the latter is logged.
func (s *Store) Get(ctx context.Context, key string, v any) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(p)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		xcontext.Logger(ctx).Warnf("Ignore corrupted local value of %s: %v", key, err)
		return false, nil
	}

	return true, nil
}

// Set stores v under key. The file is replaced atomically.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return err
	}

	xcontext.Logger(ctx).Debugf("Stored local value %s", key)
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
