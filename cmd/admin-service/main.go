package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	ahttp "github.com/radieske/matka-bet-platform/internal/admin-service/http"
	gcache "github.com/radieske/matka-bet-platform/internal/game/cache"
	grepo "github.com/radieske/matka-bet-platform/internal/game/repo"
	srepo "github.com/radieske/matka-bet-platform/internal/settlement/repo"
	sharedcache "github.com/radieske/matka-bet-platform/internal/shared/cache"
	"github.com/radieske/matka-bet-platform/internal/shared/config"
	"github.com/radieske/matka-bet-platform/internal/shared/db"
	"github.com/radieske/matka-bet-platform/internal/shared/kafka"
	"github.com/radieske/matka-bet-platform/internal/shared/logger"
	"github.com/radieske/matka-bet-platform/internal/shared/metrics"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("admin-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "admin-service"), zap.String("env", cfg.Env))

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

	// Producer de result_declared: dispara a liquidação no worker
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclared)
	defer writer.Close()

	sessions := grepo.NewPostgres(pg)
	scache := gcache.NewSessionCache(redisClient, 30*time.Second)
	results := srepo.NewPostgres(pg)
	wallet := wrepo.NewPostgres(pg)

	api := ahttp.NewServer(log, sessions, scache, results, wallet, writer,
		cfg.DefaultRateSingle, cfg.DefaultRateJodi)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8084
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (ex: 9100)
	metrics.StartMetricsServer("admin-service", cfg.MetricsPort, func(ctx context.Context) error {
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
