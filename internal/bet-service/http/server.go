package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/bet-service/book"
	"github.com/radieske/matka-bet-platform/internal/bet-service/dto"
	"github.com/radieske/matka-bet-platform/internal/bet-service/repo"
	"github.com/radieske/matka-bet-platform/internal/game"
	grepo "github.com/radieske/matka-bet-platform/internal/game/repo"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

type Server struct {
	log      *zap.Logger
	book     *book.Book
	bets     *repo.Postgres
	sessions *grepo.Postgres
}

func NewServer(log *zap.Logger, b *book.Book, bets *repo.Postgres, sessions *grepo.Postgres) *Server {
	return &Server{log: log, book: b, bets: bets, sessions: sessions}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.placeBet)         // POST
	mux.HandleFunc("/bets/active", s.listBets)  // GET ?userId=...
	mux.HandleFunc("/bets/", s.getBet)          // GET /bets/{id}
	mux.HandleFunc("/sessions", s.listSessions) // GET
	mux.HandleFunc("/sessions/", s.lastResults) // GET /sessions/{id}/results
	return mux
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	rc, err := s.book.PlaceBet(r.Context(), book.Placement{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Slot:        req.Slot,
		BetType:     req.BetType,
		Number:      req.Number,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, dto.PlaceBetResponse{
		BetID:            rc.BetID,
		Number:           rc.Number,
		EntryAmountCents: rc.EntryAmountCents,
		BalanceCents:     rc.NewBalanceCents,
		Status:           book.StatusPending,
	})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	bets, err := s.bets.ListByUser(r.Context(), userID, r.URL.Query().Get("status"), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, toBetResponse(b))
	}
	writeJSON(w, out)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /bets/{id}
	id := r.URL.Path[len("/bets/"):]
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	b, err := s.bets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, wrepo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toBetResponse(b))
}

// listSessions retorna as sessões apostáveis do dia pro cliente.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessions, err := s.sessions.ListActive(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.SessionItem, 0, len(sessions))
	for _, gs := range sessions {
		out = append(out, dto.SessionItem{
			SessionID:  gs.ID,
			Name:       gs.Name,
			OpenAt:     gs.OpenAt,
			CloseAt:    gs.CloseAt,
			ResultAt:   gs.ResultAt,
			GameType:   gs.GameType,
			RateSingle: gs.RateSingle,
			RateJodi:   gs.RateJodi,
		})
	}
	writeJSON(w, out)
}

// lastResults retorna os últimos resultados publicados de uma sessão.
func (s *Server) lastResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, found := strings.CutSuffix(rest, "/results")
	if !found || id == "" {
		http.Error(w, "use /sessions/{id}/results", http.StatusBadRequest)
		return
	}

	results, err := s.sessions.LastResults(r.Context(), id, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.LastResultItem, 0, len(results))
	for _, lr := range results {
		out = append(out, dto.LastResultItem{Date: lr.Date, OpenResult: lr.OpenResult, CloseResult: lr.CloseResult})
	}
	writeJSON(w, out)
}

// writeError traduz a taxonomia de erros do core para HTTP. Nenhum deles
// derruba o processo; todos viram mensagem legível pro cliente.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, game.ErrNotOpenYet):
		http.Error(w, "betting not open yet for this session", http.StatusBadRequest)
	case errors.Is(err, game.ErrBettingClosed):
		http.Error(w, "betting closed for this session", http.StatusBadRequest)
	case errors.Is(err, game.ErrNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, wrepo.ErrInsufficientFunds):
		http.Error(w, "insufficient balance", http.StatusConflict)
	case errors.Is(err, wrepo.ErrNotFound):
		http.Error(w, "wallet not found", http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		s.log.Error("place bet", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toBetResponse(b book.Bet) dto.BetResponse {
	entries := make([]dto.BetEntryItem, 0, len(b.Entries))
	for _, e := range b.Entries {
		entries = append(entries, dto.BetEntryItem{Number: e.Number, AmountCents: e.AmountCents})
	}
	return dto.BetResponse{
		BetID:              b.ID,
		SessionID:          b.SessionID,
		Slot:               b.Slot,
		BetType:            b.BetType,
		Status:             b.Status,
		WinningAmountCents: b.WinningAmountCents,
		ResultNumber:       b.ResultNumber,
		Entries:            entries,
		TotalStakedCents:   b.TotalStaked(),
		CreatedAt:          b.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
