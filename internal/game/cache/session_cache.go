package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/matka-bet-platform/internal/game"
)

// SessionCache guarda sessões no Redis com TTL curto. O bet-service lê
// daqui antes de ir ao banco; a checagem de janela continua sendo feita
// sobre os timestamps da sessão, o cache só evita a ida ao Postgres.
type SessionCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSessionCache(c *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{Client: c, TTL: ttl}
}

func key(sessionID string) string { return "session:" + sessionID }

// Get retorna a sessão cacheada; ok=false em miss ou erro (read-through).
func (c *SessionCache) Get(ctx context.Context, sessionID string) (game.Session, bool) {
	b, err := c.Client.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		return game.Session{}, false
	}
	var s game.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return game.Session{}, false
	}
	return s, true
}

// Set grava a sessão com TTL. Erros são ignorados pelo chamador: cache
// indisponível não pode derrubar aposta.
func (c *SessionCache) Set(ctx context.Context, s game.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key(s.ID), b, c.TTL).Err()
}

// Invalidate remove a sessão do cache (update/remoção pelo admin).
func (c *SessionCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.Client.Del(ctx, key(sessionID)).Err()
}
