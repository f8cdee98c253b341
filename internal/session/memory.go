package session

import (
	"context"
	"sync"
)

// MemoryStore はプロセス内のmapにセッションを保持する。
// エビクションは行わないため、ログアウトされないセッションは再起動まで残り続ける。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]string),
	}
}

// Create はセッションを作成する。
func (s *MemoryStore) Create(_ context.Context, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = username
	s.mu.Unlock()

	return token, nil
}

// Lookup はトークンに紐付くユーザー名を返す。
func (s *MemoryStore) Lookup(_ context.Context, token string) (string, bool, error) {
	s.mu.RLock()
	username, ok := s.sessions[token]
	s.mu.RUnlock()
	return username, ok, nil
}

// Destroy はセッションを削除する。
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Len は保持しているセッション数を返す。メトリクス用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
