// Package verify は電話番号のSMS認証機能を提供する。
// モックプロバイダー（開発用）とTwilio Verify（本番用）を設定で切り替える。
package verify

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/paylink/internal/model"
)

// SessionStore は認証セッションのTTL付きキーバリューストアの抽象。
// モックプロバイダーに注入され、インメモリ実装（開発・テスト）と
// PostgreSQL実装（repositoryパッケージ）を差し替えられる。
type SessionStore interface {
	// Get は電話番号に対応するセッションを返す。存在しない場合はnilを返す。
	Get(ctx context.Context, phone string) (*model.VerificationSession, error)
	// Set はセッションを保存する。同じ電話番号の既存セッションは上書きされる。
	Set(ctx context.Context, session *model.VerificationSession) error
	// Delete はセッションを削除する。存在しない場合もエラーにならない。
	Delete(ctx context.Context, phone string) error
}

// MemoryStore はプロセス内メモリのSessionStore実装。
// 開発用モックモードとテストで使用する。期限切れエントリはGet時に破棄される。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.VerificationSession
	now      func() time.Time // テスト用に差し替え可能
}

// NewMemoryStore は新しいMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.VerificationSession),
		now:      time.Now,
	}
}

// Get は電話番号に対応するセッションを返す。
// 期限切れのセッションはその場で削除し、nilを返す。
func (s *MemoryStore) Get(_ context.Context, phone string) (*model.VerificationSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[phone]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, phone)
		s.mu.Unlock()
		return nil, nil
	}

	return session, nil
}

// Set はセッションを保存する。
func (s *MemoryStore) Set(_ context.Context, session *model.VerificationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Phone] = session
	return nil
}

// Delete はセッションを削除する。
func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, phone)
	return nil
}

// PurgeExpired は期限切れセッションを一括削除し、削除件数を返す。
// クリーンアップジョブから定期的に呼び出される。
func (s *MemoryStore) PurgeExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for phone, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, phone)
			purged++
		}
	}
	return purged
}
