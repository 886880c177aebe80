package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/matka-bet-platform/internal/spinner-service/repo"
)

const lastResultsKey = "spinner:last_results"

// ResultsCache guarda as últimas rodadas encerradas com TTL curto; a rota de
// dados do spinner é a mais quente do jogo.
type ResultsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewResultsCache(client *redis.Client, ttl time.Duration) *ResultsCache {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &ResultsCache{Client: client, TTL: ttl}
}

func (c *ResultsCache) Get(ctx context.Context) ([]repo.Round, bool) {
	raw, err := c.Client.Get(ctx, lastResultsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rounds []repo.Round
	if err := json.Unmarshal(raw, &rounds); err != nil {
		return nil, false
	}
	return rounds, true
}

func (c *ResultsCache) Set(ctx context.Context, rounds []repo.Round) error {
	raw, err := json.Marshal(rounds)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, lastResultsKey, raw, c.TTL).Err()
}

func (c *ResultsCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, lastResultsKey).Err()
}
