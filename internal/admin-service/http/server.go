package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/admin-service/dto"
	"github.com/radieske/matka-bet-platform/internal/game"
	gcache "github.com/radieske/matka-bet-platform/internal/game/cache"
	grepo "github.com/radieske/matka-bet-platform/internal/game/repo"
	"github.com/radieske/matka-bet-platform/internal/settlement"
	srepo "github.com/radieske/matka-bet-platform/internal/settlement/repo"
	"github.com/radieske/matka-bet-platform/internal/shared/kafka"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
	"github.com/radieske/matka-bet-platform/pkg/contracts/events"
)

// WalletStore é o recorte da carteira que o admin opera: fila de saques,
// crédito manual e os agregados do relatório de ganhos.
type WalletStore interface {
	ListWithdrawals(ctx context.Context, status string, limit int) ([]wrepo.Transaction, error)
	ApproveWithdrawal(ctx context.Context, txID, notes string) error
	RejectWithdrawal(ctx context.Context, txID, notes string) error
	AdminCredit(ctx context.Context, userID string, amountCents int64, notes string) (int64, error)
	TotalStaked(ctx context.Context) (int64, error)
	HouseBalance(ctx context.Context) (int64, error)
}

// Server expõe a superfície administrativa: sessões, declaração de resultado,
// fila de saques, crédito manual e resumo de ganhos.
type Server struct {
	log      *zap.Logger
	sessions *grepo.Postgres
	cache    *gcache.SessionCache
	results  *srepo.Postgres
	wallet   WalletStore
	writer   *kafkago.Writer // result_declared

	defaultRateSingle int64
	defaultRateJodi   int64
}

func NewServer(
	log *zap.Logger,
	sessions *grepo.Postgres,
	cache *gcache.SessionCache,
	results *srepo.Postgres,
	wallet WalletStore,
	writer *kafkago.Writer,
	defaultRateSingle, defaultRateJodi int64,
) *Server {
	return &Server{
		log:               log,
		sessions:          sessions,
		cache:             cache,
		results:           results,
		wallet:            wallet,
		writer:            writer,
		defaultRateSingle: defaultRateSingle,
		defaultRateJodi:   defaultRateJodi,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/sessions", s.sessionsCollection)  // GET | POST
	mux.HandleFunc("/admin/sessions/", s.sessionItem)        // PUT | DELETE | GET .../results
	mux.HandleFunc("/admin/results", s.declareResult)        // POST
	mux.HandleFunc("/admin/withdrawals", s.listWithdrawals)  // GET ?status=
	mux.HandleFunc("/admin/withdrawals/", s.decideWithdrawal) // POST .../approve | .../reject
	mux.HandleFunc("/admin/points", s.addPoints)             // POST
	mux.HandleFunc("/admin/earnings", s.earnings)            // GET
	return mux
}

func (s *Server) sessionsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.sessions.ListActive(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]dto.SessionResponse, 0, len(sessions))
		for _, gs := range sessions {
			out = append(out, toSessionResponse(gs))
		}
		writeJSON(w, out)

	case http.MethodPost:
		var req dto.SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		gs, ok := s.sessionFromRequest(w, req)
		if !ok {
			return
		}
		if _, err := s.sessions.Create(r.Context(), &gs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, toSessionResponse(gs))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) sessionItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/sessions/")

	// GET /admin/sessions/{id}/results
	if id, found := strings.CutSuffix(rest, "/results"); found {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
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
		return
	}

	id := rest
	if id == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		gs, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, toSessionResponse(gs))

	case http.MethodPut:
		var req dto.SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		gs, ok := s.sessionFromRequest(w, req)
		if !ok {
			return
		}
		gs.ID = id
		if err := s.sessions.Update(r.Context(), gs); err != nil {
			s.writeError(w, err)
			return
		}
		s.invalidate(r.Context(), id)
		writeJSON(w, toSessionResponse(gs))

	case http.MethodDelete:
		if err := s.sessions.SoftDelete(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		s.invalidate(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// declareResult registra o resultado de um slot e, quando publicado, emite o
// result_declared que dispara a liquidação no worker. Declaração agendada pro
// futuro fica em rascunho até o ticker do worker promover.
func (s *Server) declareResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DeclareResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}
	if !game.ValidSlot(req.Slot) {
		http.Error(w, "session must be open or close", http.StatusBadRequest)
		return
	}
	if req.Number < 0 || req.Number > 9 {
		http.Error(w, "number must be between 0 and 9", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	gs, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if gs.GameType != game.TypeRegular {
		http.Error(w, "session does not take declared results", http.StatusBadRequest)
		return
	}

	resultDate := req.ResultDate
	if resultDate == "" {
		resultDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", resultDate); err != nil {
		http.Error(w, "result_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	res, err := s.results.DeclareResult(ctx, req.SessionID, req.Slot, req.Number, resultDate, req.ScheduledAt)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Publicada a linha, emite um evento por slot preenchido: se o outro slot
	// estava em rascunho ele acabou de virar publicado junto, e sem o evento
	// dele as singles daquele slot ficariam pendentes pra sempre. Reemitir um
	// slot já liquidado é inofensivo — a liquidação é idempotente.
	if res.Status == settlement.StatusPublished {
		for _, ev := range declaredEvents(res) {
			payload, _ := json.Marshal(ev)
			if err := kafka.WriteJSON(ctx, s.writer, res.SessionID, payload); err != nil {
				s.log.Error("publish result_declared", zap.String("slot", ev.Slot), zap.Error(err))
			}
		}
	}

	writeJSON(w, dto.DeclareResultResponse{
		ResultID:    res.ID,
		SessionID:   req.SessionID,
		Slot:        req.Slot,
		Number:      req.Number,
		ResultDate:  resultDate,
		Status:      res.Status,
		OpenResult:  res.OpenResult,
		CloseResult: res.CloseResult,
	})
}

func (s *Server) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = wrepo.StatusAdminPending
	}
	txs, err := s.wallet.ListWithdrawals(r.Context(), status, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.WithdrawalItem, 0, len(txs))
	for _, t := range txs {
		out = append(out, dto.WithdrawalItem{
			TransactionID: t.ID,
			UserID:        t.UserID,
			AmountCents:   t.AmountCents,
			Status:        t.Status,
			PaymentMethod: t.PaymentMethod,
			Destination:   t.Destination,
			AdminNotes:    t.AdminNotes.String,
			CreatedAt:     t.CreatedAt,
		})
	}
	writeJSON(w, out)
}

// decideWithdrawal aprova ou rejeita um saque pendente. Aprovação só muda o
// status (o valor já foi retido no pedido); rejeição devolve o valor retido.
func (s *Server) decideWithdrawal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/admin/withdrawals/")

	var req dto.WithdrawalDecisionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	var err error
	switch {
	case strings.HasSuffix(rest, "/approve"):
		err = s.wallet.ApproveWithdrawal(r.Context(), strings.TrimSuffix(rest, "/approve"), req.AdminNotes)
	case strings.HasSuffix(rest, "/reject"):
		err = s.wallet.RejectWithdrawal(r.Context(), strings.TrimSuffix(rest, "/reject"), req.AdminNotes)
	default:
		http.Error(w, "use /approve or /reject", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addPoints é o crédito manual do admin (entra como depósito no extrato).
func (s *Server) addPoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.AddPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents < 1 {
		http.Error(w, "userId and positive amount_cents required", http.StatusBadRequest)
		return
	}

	balance, err := s.wallet.AdminCredit(r.Context(), req.UserID, req.AmountCents, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.AddPointsResponse{UserID: req.UserID, BalanceCents: balance})
}

func (s *Server) earnings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	staked, err := s.wallet.TotalStaked(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	house, err := s.wallet.HouseBalance(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.EarningsResponse{TotalStakedCents: staked, HouseBalanceCents: house})
}

func (s *Server) sessionFromRequest(w http.ResponseWriter, req dto.SessionRequest) (game.Session, bool) {
	if req.Name == "" || req.OpenAt.IsZero() || req.CloseAt.IsZero() {
		http.Error(w, "name, open_at and close_at required", http.StatusBadRequest)
		return game.Session{}, false
	}
	if !req.OpenAt.Before(req.CloseAt) {
		http.Error(w, "open_at must be before close_at", http.StatusBadRequest)
		return game.Session{}, false
	}

	gs := game.Session{
		Name:       req.Name,
		OpenAt:     req.OpenAt,
		CloseAt:    req.CloseAt,
		ResultAt:   req.ResultAt,
		Status:     req.Status,
		GameType:   req.GameType,
		RateSingle: req.RateSingle,
		RateJodi:   req.RateJodi,
	}
	if gs.GameType == "" {
		gs.GameType = game.TypeRegular
	}
	if gs.Status == "" {
		gs.Status = game.StatusActive
	}
	if gs.RateSingle <= 0 {
		gs.RateSingle = s.defaultRateSingle
	}
	if gs.RateJodi <= 0 {
		gs.RateJodi = s.defaultRateJodi
	}
	return gs, true
}

func (s *Server) invalidate(ctx context.Context, sessionID string) {
	if err := s.cache.Invalidate(ctx, sessionID); err != nil {
		s.log.Warn("session cache invalidate failed", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound), errors.Is(err, wrepo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, srepo.ErrAlreadyDeclared):
		http.Error(w, "result already declared for this slot", http.StatusConflict)
	case errors.Is(err, wrepo.ErrAlreadyProcessed):
		http.Error(w, "already processed", http.StatusConflict)
	default:
		s.log.Error("admin request", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// declaredEvents monta um result_declared por slot preenchido da linha.
func declaredEvents(res settlement.Result) []events.ResultDeclared {
	now := time.Now()
	var out []events.ResultDeclared
	if res.OpenResult != nil {
		out = append(out, events.ResultDeclared{
			ResultID:   res.ID,
			SessionID:  res.SessionID,
			Slot:       game.SlotOpen,
			Number:     *res.OpenResult,
			ResultDate: res.Date,
			Status:     res.Status,
			DeclaredAt: now,
		})
	}
	if res.CloseResult != nil {
		out = append(out, events.ResultDeclared{
			ResultID:   res.ID,
			SessionID:  res.SessionID,
			Slot:       game.SlotClose,
			Number:     *res.CloseResult,
			ResultDate: res.Date,
			Status:     res.Status,
			DeclaredAt: now,
		})
	}
	return out
}

func toSessionResponse(gs game.Session) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:  gs.ID,
		Name:       gs.Name,
		OpenAt:     gs.OpenAt,
		CloseAt:    gs.CloseAt,
		ResultAt:   gs.ResultAt,
		Status:     gs.Status,
		GameType:   gs.GameType,
		RateSingle: gs.RateSingle,
		RateJodi:   gs.RateJodi,
		Deleted:    gs.Deleted,
		CreatedAt:  gs.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
