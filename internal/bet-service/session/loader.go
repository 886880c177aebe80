package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/game"
	gcache "github.com/radieske/matka-bet-platform/internal/game/cache"
	grepo "github.com/radieske/matka-bet-platform/internal/game/repo"
)

// Loader resolve sessões com cache read-through: tenta o Redis, cai para o
// Postgres e repovoa o cache. Falha de cache nunca derruba a leitura.
type Loader struct {
	Log   *zap.Logger
	Cache *gcache.SessionCache
	Repo  *grepo.Postgres
}

func NewLoader(log *zap.Logger, c *gcache.SessionCache, r *grepo.Postgres) *Loader {
	return &Loader{Log: log, Cache: c, Repo: r}
}

func (l *Loader) GetSession(ctx context.Context, id string) (game.Session, error) {
	if s, ok := l.Cache.Get(ctx, id); ok {
		return s, nil
	}

	s, err := l.Repo.Get(ctx, id)
	if err != nil {
		return game.Session{}, err
	}

	if err := l.Cache.Set(ctx, s); err != nil {
		l.Log.Warn("session cache set failed", zap.String("sessionId", id), zap.Error(err))
	}
	return s, nil
}
