package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/goccy/go-json"
)

// SessionKey names the persisted wallet session.
const SessionKey = "certchain.wallet.session"

type Session struct {
	AccountID string           `json:"account_id"`
	Kind      model.WalletKind `json:"kind"`
	Timestamp int64            `json:"timestamp"` // Unix Time (in second) of the connection.
}

// SessionStore persists the last connected wallet. Load returns
// model.ErrDataNotFound when nothing is stored.
type SessionStore interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() error
}

// FileSessionStore keeps the session as a JSON blob named SessionKey in a directory.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSessionStore(dir string) *FileSessionStore {
	return &FileSessionStore{path: filepath.Join(dir, SessionKey)}
}

func (s *FileSessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, model.ErrDataNotFound
	} else if err != nil {
		return Session{}, err
	}
	return decodeSession(raw)
}

func (s *FileSessionStore) Save(session Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type MemorySessionStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return Session{}, model.ErrDataNotFound
	}
	return decodeSession(s.blob)
}

func (s *MemorySessionStore) Save(session Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = raw
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

// decodeSession treats a corrupted blob as absent.
func decodeSession(raw []byte) (Session, error) {
	session := Session{}
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("corrupted session blob: %v%w", err, model.ErrDataNotFound)
	}
	if session.AccountID == "" || !session.Kind.IsValid() {
		return Session{}, fmt.Errorf("incomplete session blob%w", model.ErrDataNotFound)
	}
	return session, nil
}
