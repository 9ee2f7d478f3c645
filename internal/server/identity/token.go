package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/server/storage"
)

const (
	// 重连令牌有效期，每次使用后续期
	tokenTTL = 10 * time.Minute
	// 令牌读写超时
	tokenTimeout = 3 * time.Second
)

// TokenStore 重连令牌存储
type TokenStore interface {
	SaveSession(ctx context.Context, session *storage.SessionData, ttl time.Duration) error
	LoadSession(ctx context.Context, token string) (*storage.SessionData, error)
}

// TokenProvider 匿名身份：首次连接分配 ID 与重连令牌，
// 携带令牌再次连接时恢复同一身份
type TokenProvider struct {
	store TokenStore
}

// NewTokenProvider 创建匿名身份解析器
func NewTokenProvider(store TokenStore) *TokenProvider {
	return &TokenProvider{store: store}
}

// Identify 解析或分配身份
func (p *TokenProvider) Identify(r *http.Request) (Identity, error) {
	ctx, cancel := context.WithTimeout(r.Context(), tokenTimeout)
	defer cancel()

	session, err := p.resolve(ctx, r)
	if err != nil {
		return Identity{}, err
	}
	if err := p.store.SaveSession(ctx, session, tokenTTL); err != nil {
		return Identity{}, fmt.Errorf("save reconnect token: %w", err)
	}
	return Identity{
		UserID:         session.PlayerID,
		Name:           session.PlayerName,
		ReconnectToken: session.Token,
	}, nil
}

func (p *TokenProvider) resolve(ctx context.Context, r *http.Request) (*storage.SessionData, error) {
	if token := tokenFromRequest(r); token != "" {
		session, err := p.store.LoadSession(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("load reconnect token: %w", err)
		}
		if session == nil {
			return nil, apperrors.ErrUnauthorized.WithReason("重连令牌无效或已过期")
		}
		return session, nil
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = GenerateNickname()
	}
	return &storage.SessionData{
		PlayerID:   uuid.NewString(),
		PlayerName: name,
		Token:      generateToken(),
	}, nil
}

// generateToken 生成随机 token
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// MemoryTokenStore 进程内令牌存储
type MemoryTokenStore struct {
	clock    quartz.Clock
	sessions map[string]memoryToken
	mu       sync.Mutex
}

type memoryToken struct {
	data      storage.SessionData
	expiresAt time.Time
}

// NewMemoryTokenStore 创建进程内令牌存储
func NewMemoryTokenStore(clock quartz.Clock) *MemoryTokenStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryTokenStore{clock: clock, sessions: make(map[string]memoryToken)}
}

// SaveSession 保存令牌
func (s *MemoryTokenStore) SaveSession(_ context.Context, session *storage.SessionData, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for token, t := range s.sessions {
		if !now.Before(t.expiresAt) {
			delete(s.sessions, token)
		}
	}
	s.sessions[session.Token] = memoryToken{data: *session, expiresAt: now.Add(ttl)}
	return nil
}

// LoadSession 读取令牌，过期视为不存在
func (s *MemoryTokenStore) LoadSession(_ context.Context, token string) (*storage.SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[token]
	if !ok || !s.clock.Now().Before(t.expiresAt) {
		return nil, nil
	}
	data := t.data
	return &data, nil
}
