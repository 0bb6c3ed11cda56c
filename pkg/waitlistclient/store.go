package waitlistclient

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// SubscriptionStore persists the advisory "already joined" flag between
// sessions. The server stays the source of truth for uniqueness.
type SubscriptionStore interface {
	Load() (bool, error)
	Save() error
	Clear() error
}

type subscriptionState struct {
	Subscribed bool      `toml:"subscribed"`
	JoinedAt   time.Time `toml:"joined_at,omitempty"`
}

// FileSubscriptionStore keeps the flag in a small TOML file.
type FileSubscriptionStore struct {
	path string
	now  func() time.Time
}

func NewFileSubscriptionStore(path string) *FileSubscriptionStore {
	return &FileSubscriptionStore{path: path, now: time.Now}
}

// DefaultStatePath is $XDG_CONFIG_HOME/launchwait/state.toml or its platform equivalent.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "launchwait", "state.toml"), nil
}

// Load returns false when the file does not exist yet.
func (s *FileSubscriptionStore) Load() (bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read state file: %w", err)
	}

	var state subscriptionState
	if err := toml.Unmarshal(data, &state); err != nil {
		return false, fmt.Errorf("parse state file: %w", err)
	}

	return state.Subscribed, nil
}

func (s *FileSubscriptionStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	var buf bytes.Buffer
	state := subscriptionState{Subscribed: true, JoinedAt: s.now().UTC()}
	if err := toml.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (s *FileSubscriptionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// MemorySubscriptionStore is for tests and for callers that do not want
// anything written to disk.
type MemorySubscriptionStore struct {
	mu         sync.Mutex
	subscribed bool
}

func (m *MemorySubscriptionStore) Load() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed, nil
}

func (m *MemorySubscriptionStore) Save() error {
	m.mu.Lock()
	m.subscribed = true
	m.mu.Unlock()
	return nil
}

func (m *MemorySubscriptionStore) Clear() error {
	m.mu.Lock()
	m.subscribed = false
	m.mu.Unlock()
	return nil
}
