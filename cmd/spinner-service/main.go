package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	sharedcache "github.com/radieske/matka-bet-platform/internal/shared/cache"
	"github.com/radieske/matka-bet-platform/internal/shared/config"
	"github.com/radieske/matka-bet-platform/internal/shared/db"
	"github.com/radieske/matka-bet-platform/internal/shared/kafka"
	"github.com/radieske/matka-bet-platform/internal/shared/logger"
	"github.com/radieske/matka-bet-platform/internal/shared/metrics"
	scache "github.com/radieske/matka-bet-platform/internal/spinner-service/cache"
	shttp "github.com/radieske/matka-bet-platform/internal/spinner-service/http"
	srepo "github.com/radieske/matka-bet-platform/internal/spinner-service/repo"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("spinner-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "spinner-service"), zap.String("env", cfg.Env))

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

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSpinnerRoundClosed)
	defer writer.Close()

	repo := srepo.NewPostgres(pg, log)
	results := scache.NewResultsCache(redisClient, 10*time.Second)
	api := shttp.NewServer(log, repo, results, writer, cfg.SpinnerMultiplier)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8085
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (ex: 9101)
	metrics.StartMetricsServer("spinner-service", cfg.MetricsPort, func(ctx context.Context) error {
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
