package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/wallet-service/dto"
	"github.com/radieske/matka-bet-platform/internal/wallet-service/policy"
	"github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

// Ledger define as operações de carteira usadas pelo handler HTTP.
// O userId já chega verificado pelo gateway de autenticação (colaborador
// externo); aqui ele é tratado como precondição.
type Ledger interface {
	GetOrCreateWallet(ctx context.Context, userID, referredBy string) (repo.Wallet, error)
	CreateDepositOrder(ctx context.Context, userID string, amount int64, orderID string) (string, error)
	CompleteDeposit(ctx context.Context, orderID string, referralBonus int64) (repo.DepositReceipt, error)
	RequestWithdrawal(ctx context.Context, userID string, amount int64, method, destination string) (string, error)
	ListTransactions(ctx context.Context, userID, txType string, limit int) ([]repo.Transaction, error)
}

// PaymentProvider é o provedor de pagamento externo (criação de ordem e
// verificação de assinatura).
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amountCents int64, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Server expõe a API HTTP da carteira (ledger)
type Server struct {
	log     *zap.Logger
	ledger  Ledger
	pay     PaymentProvider
	window  policy.WithdrawWindow
	minDep  int64
	minWdr  int64
	refBns  int64
	payKey  string
}

func NewServer(log *zap.Logger, l Ledger, pay PaymentProvider, window policy.WithdrawWindow,
	minDeposit, minWithdraw, referralBonus int64, paymentKeyID string) *Server {
	return &Server{
		log: log, ledger: l, pay: pay, window: window,
		minDep: minDeposit, minWdr: minWithdraw, refBns: referralBonus, payKey: paymentKeyID,
	}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)                       // GET ?userId=...
	mux.HandleFunc("/wallet/deposit/order", s.depositOrder)      // POST
	mux.HandleFunc("/wallet/deposit/verify", s.depositVerify)    // POST
	mux.HandleFunc("/wallet/withdraw", s.withdraw)               // POST
	mux.HandleFunc("/wallet/transactions", s.listTransactions)   // GET ?userId=...
	return mux
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	wal, err := s.ledger.GetOrCreateWallet(r.Context(), userID, r.URL.Query().Get("ref"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{
		UserID:             wal.UserID,
		WalletID:           wal.ID,
		BalanceCents:       wal.BalanceCents,
		TotalDepositsCents: wal.TotalDepositsCents,
		TotalWinningsCents: wal.TotalWinningsCents,
	})
}

// depositOrder cria a ordem no provedor e registra o depósito pendente.
// O valor fica amarrado ao orderId; o verify nunca usa valor do cliente.
func (s *Server) depositOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.AmountCents < s.minDep {
		http.Error(w, "amount below minimum deposit", http.StatusBadRequest)
		return
	}

	// garante que a carteira existe antes de criar a ordem
	if _, err := s.ledger.GetOrCreateWallet(r.Context(), req.UserID, ""); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	orderID, err := s.pay.CreateOrder(r.Context(), req.AmountCents, "dep_"+req.UserID)
	if err != nil {
		s.log.Error("payment create order", zap.Error(err))
		http.Error(w, "payment provider unavailable", http.StatusBadGateway)
		return
	}

	txID, err := s.ledger.CreateDepositOrder(r.Context(), req.UserID, req.AmountCents, orderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.DepositOrderResponse{
		OrderID:       orderID,
		TransactionID: txID,
		AmountCents:   req.AmountCents,
		KeyID:         s.payKey,
	})
}

// depositVerify confirma o pagamento: assinatura válida -> credita o valor
// registrado na ordem. Ordem já processada é rejeitada (idempotência).
func (s *Server) depositVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if !s.pay.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		http.Error(w, "invalid payment signature", http.StatusBadRequest)
		return
	}

	rc, err := s.ledger.CompleteDeposit(r.Context(), req.OrderID, s.refBns)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
		return
	case errors.Is(err, repo.ErrAlreadyProcessed):
		http.Error(w, "deposit already processed", http.StatusConflict)
		return
	case err != nil:
		s.log.Error("complete deposit", zap.String("orderId", req.OrderID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.DepositVerifyResponse{
		TransactionID: rc.TransactionID,
		AmountCents:   rc.AmountCents,
		BalanceCents:  rc.NewBalance,
		FirstDeposit:  rc.FirstDeposit,
	})
}

// withdraw cria o pedido de saque: valida mínimo e janela, retém os fundos
// e deixa o lançamento em admin_pending para o admin decidir.
func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 || req.PaymentMethod == "" || req.Destination == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.AmountCents < s.minWdr {
		http.Error(w, "amount below minimum withdrawal", http.StatusBadRequest)
		return
	}
	if err := s.window.Check(timeNow()); err != nil {
		http.Error(w, "withdrawals not allowed at this hour", http.StatusBadRequest)
		return
	}

	txID, err := s.ledger.RequestWithdrawal(r.Context(), req.UserID, req.AmountCents, req.PaymentMethod, req.Destination)
	switch {
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusConflict)
		return
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "wallet not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.WithdrawResponse{TransactionID: txID, Status: repo.StatusAdminPending, AmountCents: req.AmountCents})
}

// listTransactions retorna o extrato do usuário
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := s.ledger.ListTransactions(r.Context(), userID, r.URL.Query().Get("type"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]dto.TransactionItem, 0, len(txs))
	for _, t := range txs {
		items = append(items, dto.TransactionItem{
			ID:          t.ID,
			Type:        t.Type,
			AmountCents: t.AmountCents,
			Status:      t.Status,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	writeJSON(w, items)
}

// substituível nos testes
var timeNow = time.Now

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
