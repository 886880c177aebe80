package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/bet-service/book"
	bhttp "github.com/radieske/matka-bet-platform/internal/bet-service/http"
	brepo "github.com/radieske/matka-bet-platform/internal/bet-service/repo"
	"github.com/radieske/matka-bet-platform/internal/bet-service/session"
	gcache "github.com/radieske/matka-bet-platform/internal/game/cache"
	grepo "github.com/radieske/matka-bet-platform/internal/game/repo"
	sharedcache "github.com/radieske/matka-bet-platform/internal/shared/cache"
	"github.com/radieske/matka-bet-platform/internal/shared/config"
	"github.com/radieske/matka-bet-platform/internal/shared/db"
	"github.com/radieske/matka-bet-platform/internal/shared/logger"
	"github.com/radieske/matka-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("bet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "bet-service"), zap.String("env", cfg.Env))

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Sessões com cache read-through (TTL curto: janela muda pouco)
	sessions := grepo.NewPostgres(pg)
	scache := gcache.NewSessionCache(redisClient, 30*time.Second)
	loader := session.NewLoader(log, scache, sessions)

	bets := brepo.NewPostgres(pg)
	bk := book.New(loader, bets)
	api := bhttp.NewServer(log, bk, bets, sessions)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8083
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (ex: 9099)
	metrics.StartMetricsServer("bet-service", cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
