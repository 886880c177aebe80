package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/shared/kafka"
	"github.com/radieske/matka-bet-platform/internal/spinner-service/cache"
	"github.com/radieske/matka-bet-platform/internal/spinner-service/dto"
	"github.com/radieske/matka-bet-platform/internal/spinner-service/repo"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
	"github.com/radieske/matka-bet-platform/pkg/contracts/events"
)

type Server struct {
	log        *zap.Logger
	repo       *repo.Postgres
	cache      *cache.ResultsCache
	writer     *kafkago.Writer // spinner_round_closed
	multiplier int64
}

func NewServer(log *zap.Logger, r *repo.Postgres, c *cache.ResultsCache, w *kafkago.Writer, multiplier int64) *Server {
	return &Server{log: log, repo: r, cache: c, writer: w, multiplier: multiplier}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/spinner/data", s.gameData)       // GET
	mux.HandleFunc("/spinner/play", s.play)           // POST
	mux.HandleFunc("/spinner/history", s.history)     // GET ?userId=...
	mux.HandleFunc("/spinner/rounds", s.createRound)  // POST (admin)
	mux.HandleFunc("/spinner/declare", s.declare)     // POST (admin)
	return mux
}

// gameData devolve os últimos resultados e a rodada em andamento.
func (s *Server) gameData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	rounds, ok := s.cache.Get(ctx)
	if !ok {
		var err error
		rounds, err = s.repo.LastResults(ctx, 5)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := s.cache.Set(ctx, rounds); err != nil {
			s.log.Warn("results cache set failed", zap.Error(err))
		}
	}

	resp := dto.GameDataResponse{LastResults: toRoundItems(rounds)}
	if cur, err := s.repo.CurrentRound(ctx); err == nil {
		item := toRoundItem(cur)
		resp.CurrentRound = &item
		resp.NextResultAt = &cur.ResultAt
	} else if !errors.Is(err, repo.ErrNoOpenRound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	if req.Number < 0 || req.Number > 9 {
		http.Error(w, "number must be between 0 and 9", http.StatusBadRequest)
		return
	}
	if req.AmountCents < 1 {
		http.Error(w, "minimum play amount is 1", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	roundID := req.RoundID
	if roundID == "" {
		cur, err := s.repo.CurrentRound(ctx)
		if err != nil {
			s.writeError(w, err)
			return
		}
		roundID = cur.ID
	}

	rc, err := s.repo.Play(ctx, roundID, req.UserID, req.Number, req.AmountCents)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.PlayResponse{
		PlayID:       rc.PlayID,
		RoundID:      rc.RoundID,
		BalanceCents: rc.NewBalanceCents,
		Status:       repo.PlayPending,
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	plays, err := s.repo.PlaysByUser(r.Context(), userID, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.PlayHistoryItem, 0, len(plays))
	for _, p := range plays {
		out = append(out, dto.PlayHistoryItem{
			PlayID:             p.ID,
			RoundID:            p.RoundID,
			Number:             p.Number,
			AmountCents:        p.AmountCents,
			Status:             p.Status,
			WinningAmountCents: p.WinningAmountCents,
			ResultNumber:       p.ResultNumber,
			CreatedAt:          p.CreatedAt,
		})
	}
	writeJSON(w, out)
}

func (s *Server) createRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.IntervalMinutes < 1 {
		http.Error(w, "name and interval_minutes required", http.StatusBadRequest)
		return
	}

	round, err := s.repo.CreateRound(r.Context(), req.Name, req.IntervalMinutes, s.multiplier)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toRoundItem(round))
}

// declare encerra a rodada, liquida as jogadas e agenda a próxima.
func (s *Server) declare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DeclareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.RoundID == "" {
		http.Error(w, "roundId required", http.StatusBadRequest)
		return
	}
	if req.Number < 0 || req.Number > 9 {
		http.Error(w, "number must be between 0 and 9", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sum, err := s.repo.DeclareResult(ctx, req.RoundID, req.Number)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("results cache invalidate failed", zap.Error(err))
	}

	ev := events.SpinnerRoundClosed{
		RoundID:          sum.Round.ID,
		ResultNumber:     req.Number,
		Plays:            sum.Plays,
		Winners:          sum.Winners,
		TotalPayoutCents: sum.TotalPayoutCents,
		NextRoundID:      sum.NextRound.ID,
		Ts:               time.Now(),
	}
	payload, _ := json.Marshal(ev)
	if err := kafka.WriteJSON(ctx, s.writer, sum.Round.ID, payload); err != nil {
		s.log.Warn("publish spinner_round_closed", zap.Error(err))
	}

	writeJSON(w, dto.DeclareResponse{
		RoundID:          sum.Round.ID,
		ResultNumber:     req.Number,
		Plays:            sum.Plays,
		Winners:          sum.Winners,
		TotalPayoutCents: sum.TotalPayoutCents,
		NextRoundID:      sum.NextRound.ID,
		NextResultAt:     sum.NextRound.ResultAt,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNoOpenRound):
		http.Error(w, "no open round", http.StatusNotFound)
	case errors.Is(err, repo.ErrRoundClosed):
		http.Error(w, "round closed for plays", http.StatusBadRequest)
	case errors.Is(err, repo.ErrAlreadyPlayed):
		http.Error(w, "already played this round", http.StatusConflict)
	case errors.Is(err, repo.ErrAlreadyDeclared):
		http.Error(w, "result already declared", http.StatusConflict)
	case errors.Is(err, wrepo.ErrInsufficientFunds):
		http.Error(w, "insufficient balance", http.StatusConflict)
	case errors.Is(err, wrepo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		s.log.Error("spinner request", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toRoundItems(rounds []repo.Round) []dto.RoundItem {
	out := make([]dto.RoundItem, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, toRoundItem(r))
	}
	return out
}

func toRoundItem(r repo.Round) dto.RoundItem {
	return dto.RoundItem{
		RoundID:      r.ID,
		Name:         r.Name,
		ResultAt:     r.ResultAt,
		ResultNumber: r.ResultNumber,
		Multiplier:   r.Multiplier,
		Status:       r.Status,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
