package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/shared/config"
	"github.com/radieske/matka-bet-platform/internal/shared/db"
	"github.com/radieske/matka-bet-platform/internal/shared/logger"
	"github.com/radieske/matka-bet-platform/internal/shared/metrics"
	whttp "github.com/radieske/matka-bet-platform/internal/wallet-service/http"
	"github.com/radieske/matka-bet-platform/internal/wallet-service/payment"
	"github.com/radieske/matka-bet-platform/internal/wallet-service/policy"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("wallet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "wallet-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres para operações de carteira
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Janela de saque: horário local da praça, validado na subida
	window, err := policy.NewWithdrawWindow(cfg.WithdrawWindowEnabled,
		cfg.WithdrawWindowStart, cfg.WithdrawWindowEnd, cfg.WithdrawTimezone)
	if err != nil {
		log.Fatal("withdraw window config", zap.Error(err))
	}

	// Provedor de pagamento externo (ordens + verificação de assinatura)
	pay := payment.New(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentSecret)

	repo := wrepo.NewPostgres(pg)
	api := whttp.NewServer(log, repo, pay, window,
		cfg.MinDepositCents, cfg.MinWithdrawCents, cfg.ReferralBonusCents, cfg.PaymentKeyID)

	// Servidor HTTP público (API de wallet)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8082
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (ex: 9098)
	metrics.StartMetricsServer("wallet-service", cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
