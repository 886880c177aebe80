package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/wallet-service/dto"
	"github.com/radieske/matka-bet-platform/internal/wallet-service/policy"
	"github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

// fakeLedger guarda ordens com valor amarrado no pedido, como o repo real.
type fakeLedger struct {
	balance   int64
	orders    map[string]int64 // orderId -> valor registrado
	completed map[string]bool
	withdrawn int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balance: 0, orders: map[string]int64{}, completed: map[string]bool{}}
}

func (f *fakeLedger) GetOrCreateWallet(_ context.Context, userID, _ string) (repo.Wallet, error) {
	return repo.Wallet{ID: "w1", UserID: userID, BalanceCents: f.balance}, nil
}

func (f *fakeLedger) CreateDepositOrder(_ context.Context, _ string, amount int64, orderID string) (string, error) {
	f.orders[orderID] = amount
	return "tx_" + orderID, nil
}

func (f *fakeLedger) CompleteDeposit(_ context.Context, orderID string, _ int64) (repo.DepositReceipt, error) {
	amount, ok := f.orders[orderID]
	if !ok {
		return repo.DepositReceipt{}, repo.ErrNotFound
	}
	if f.completed[orderID] {
		return repo.DepositReceipt{}, repo.ErrAlreadyProcessed
	}
	f.completed[orderID] = true
	f.balance += amount
	return repo.DepositReceipt{TransactionID: "tx_" + orderID, AmountCents: amount, NewBalance: f.balance}, nil
}

func (f *fakeLedger) RequestWithdrawal(_ context.Context, _ string, amount int64, _, _ string) (string, error) {
	if f.balance < amount {
		return "", repo.ErrInsufficientFunds
	}
	f.balance -= amount
	f.withdrawn += amount
	return "wd_1", nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, _, _ string, _ int) ([]repo.Transaction, error) {
	return nil, nil
}

type fakePay struct {
	orderID string
	valid   string // assinatura aceita
}

func (f fakePay) CreateOrder(_ context.Context, _ int64, _ string) (string, error) {
	return f.orderID, nil
}

func (f fakePay) VerifySignature(_, _, signature string) bool {
	return signature == f.valid
}

func newTestServer(t *testing.T, ledger *fakeLedger) *Server {
	t.Helper()
	window, err := policy.NewWithdrawWindow(true, "10:00", "18:00", "UTC")
	require.NoError(t, err)
	pay := fakePay{orderID: "order_1", valid: "sig_ok"}
	return NewServer(zap.NewNop(), ledger, pay, window, 100_00, 500_00, 50_00, "key")
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, strings.NewReader(string(raw)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func insideWindow() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

func TestDepositVerifyUsesStoredAmount(t *testing.T) {
	ledger := newFakeLedger()
	srv := newTestServer(t, ledger)

	rec := doJSON(t, srv, http.MethodPost, "/wallet/deposit/order",
		dto.DepositOrderRequest{UserID: "u1", AmountCents: 150_00})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// o verify não carrega valor nenhum: o crédito vem da ordem registrada
	rec = doJSON(t, srv, http.MethodPost, "/wallet/deposit/verify",
		dto.DepositVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig_ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.DepositVerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(150_00), resp.AmountCents)
	assert.Equal(t, int64(150_00), resp.BalanceCents)
}

func TestDepositVerifyRejectsBadSignature(t *testing.T) {
	ledger := newFakeLedger()
	srv := newTestServer(t, ledger)

	doJSON(t, srv, http.MethodPost, "/wallet/deposit/order",
		dto.DepositOrderRequest{UserID: "u1", AmountCents: 150_00})

	rec := doJSON(t, srv, http.MethodPost, "/wallet/deposit/verify",
		dto.DepositVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "tampered"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, ledger.balance, "nada creditado")
}

func TestDepositVerifyIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	srv := newTestServer(t, ledger)

	doJSON(t, srv, http.MethodPost, "/wallet/deposit/order",
		dto.DepositOrderRequest{UserID: "u1", AmountCents: 150_00})

	verify := dto.DepositVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig_ok"}
	rec := doJSON(t, srv, http.MethodPost, "/wallet/deposit/verify", verify)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/wallet/deposit/verify", verify)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int64(150_00), ledger.balance, "creditado uma única vez")
}

func TestDepositOrderBelowMinimum(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())
	rec := doJSON(t, srv, http.MethodPost, "/wallet/deposit/order",
		dto.DepositOrderRequest{UserID: "u1", AmountCents: 50_00})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithdrawChecks(t *testing.T) {
	origNow := timeNow
	t.Cleanup(func() { timeNow = origNow })
	timeNow = insideWindow

	ledger := newFakeLedger()
	ledger.balance = 1000_00
	srv := newTestServer(t, ledger)

	valid := dto.WithdrawRequest{UserID: "u1", AmountCents: 600_00, PaymentMethod: "upi", Destination: "u1@upi"}

	// abaixo do mínimo
	low := valid
	low.AmountCents = 100_00
	rec := doJSON(t, srv, http.MethodPost, "/wallet/withdraw", low)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// fora da janela
	timeNow = func() time.Time { return time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC) }
	rec = doJSON(t, srv, http.MethodPost, "/wallet/withdraw", valid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	timeNow = insideWindow

	// saldo insuficiente
	big := valid
	big.AmountCents = 5000_00
	rec = doJSON(t, srv, http.MethodPost, "/wallet/withdraw", big)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int64(1000_00), ledger.balance, "nada retido")

	// pedido válido retém os fundos e fica aguardando o admin
	rec = doJSON(t, srv, http.MethodPost, "/wallet/withdraw", valid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.WithdrawResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, repo.StatusAdminPending, resp.Status)
	assert.Equal(t, int64(400_00), ledger.balance, "valor retido no pedido")
}
