package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthFunc func(ctx context.Context) error

type healthStatus struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Handler monta o mux de observabilidade: /metrics do Prometheus e /healthz
// com o nome do serviço no corpo, pra identificar a instância na sonda.
func Handler(service string, healthFn HealthFunc) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(healthStatus{Service: service, Status: "unhealthy", Error: err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(healthStatus{Service: service, Status: "ok"})
	})

	return mux
}

// StartMetricsServer sobe o servidor de observabilidade numa goroutine;
// chamado no main de cada serviço.
func StartMetricsServer(service, port string, healthFn HealthFunc) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           Handler(service, healthFn),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
