package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/bet-service/session"
	gcache "github.com/radieske/matka-bet-platform/internal/game/cache"
	grepo "github.com/radieske/matka-bet-platform/internal/game/repo"
	"github.com/radieske/matka-bet-platform/internal/settlement"
	"github.com/radieske/matka-bet-platform/internal/settlement/consumer"
	srepo "github.com/radieske/matka-bet-platform/internal/settlement/repo"
	sharedcache "github.com/radieske/matka-bet-platform/internal/shared/cache"
	"github.com/radieske/matka-bet-platform/internal/shared/config"
	"github.com/radieske/matka-bet-platform/internal/shared/db"
	"github.com/radieske/matka-bet-platform/internal/shared/kafka"
	"github.com/radieske/matka-bet-platform/internal/shared/logger"
	"github.com/radieske/matka-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("settlement-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

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

	// Consumer de result_declared (consumer group settlement-worker)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicResultDeclared, "settlement-worker")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetsSettled)
	defer settledWriter.Close()

	declaredWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclared)
	defer declaredWriter.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicResultDeclaredDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclaredDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus de cada etapa da liquidação
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settledBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_bets_settled_total", Help: "apostas liquidadas por resultado"}, []string{"status"})
	payout := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_payout_cents_total", Help: "total pago em prêmios (centavos)"})
	promoted := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_results_promoted_total", Help: "rascunhos promovidos"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settledBy, payout, promoted, errorsBy)

	repo := srepo.NewPostgres(pg)
	scache := gcache.NewSessionCache(redisClient, 30*time.Second)
	sessions := session.NewLoader(log, scache, grepo.NewPostgres(pg))

	engine := &settlement.Engine{
		Log:      log,
		Sessions: sessions,
		Store:    repo,
		OnSettled: func(status string) { settledBy.WithLabelValues(status).Inc() },
		OnPayout:  func(cents int64) { payout.Add(float64(cents)) },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	cons := &consumer.Consumer{
		Log:        log,
		Reader:     reader,
		Engine:     engine,
		Writer:     settledWriter,
		DLQ:        dlqWriter,
		Cache:      scache,
		OnConsumed: func() { consumed.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	prom := &consumer.Promoter{
		Log:        log,
		Repo:       repo,
		Writer:     declaredWriter,
		OnPromoted: func() { promoted.Inc() },
	}

	// Servidor HTTP para métricas e health check (ex: 9102)
	metrics.StartMetricsServer("settlement-worker", cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Ticker de promoção: resultados agendados viram publicados na hora certa
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prom.Tick(ctx)
			}
		}
	}()

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicResultDeclared))
	if err := cons.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("consumer stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
