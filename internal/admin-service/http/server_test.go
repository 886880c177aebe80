package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/game"
	"github.com/radieske/matka-bet-platform/internal/settlement"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

// fakeWallet espelha o contrato do repo: o valor é retido no pedido de saque;
// aprovar só muda o status, rejeitar devolve exatamente o valor retido.
type fakeWallet struct {
	balance int64
	held    map[string]int64 // txID -> valor retido no pedido
	status  map[string]string
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{held: map[string]int64{}, status: map[string]string{}}
}

func (f *fakeWallet) hold(txID string, amount int64) {
	f.held[txID] = amount
	f.status[txID] = wrepo.StatusAdminPending
}

func (f *fakeWallet) ListWithdrawals(_ context.Context, _ string, _ int) ([]wrepo.Transaction, error) {
	return nil, nil
}

func (f *fakeWallet) ApproveWithdrawal(_ context.Context, txID, _ string) error {
	if f.status[txID] != wrepo.StatusAdminPending {
		return wrepo.ErrAlreadyProcessed
	}
	f.status[txID] = wrepo.StatusCompleted
	return nil
}

func (f *fakeWallet) RejectWithdrawal(_ context.Context, txID, _ string) error {
	if f.status[txID] != wrepo.StatusAdminPending {
		return wrepo.ErrAlreadyProcessed
	}
	f.balance += f.held[txID]
	f.status[txID] = wrepo.StatusCancelled
	return nil
}

func (f *fakeWallet) AdminCredit(_ context.Context, _ string, amount int64, _ string) (int64, error) {
	f.balance += amount
	return f.balance, nil
}

func (f *fakeWallet) TotalStaked(_ context.Context) (int64, error)  { return 0, nil }
func (f *fakeWallet) HouseBalance(_ context.Context) (int64, error) { return 0, nil }

func newAdminServer(wallet *fakeWallet) *Server {
	return NewServer(zap.NewNop(), nil, nil, nil, wallet, nil, 9, 950)
}

func post(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestApproveWithdrawalOnlyFlipsStatus(t *testing.T) {
	wallet := newFakeWallet()
	wallet.balance = 400_00
	wallet.hold("wd1", 600_00) // retido no pedido, já fora do saldo
	srv := newAdminServer(wallet)

	rec := post(t, srv, "/admin/withdrawals/wd1/approve")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, int64(400_00), wallet.balance, "aprovar não mexe no saldo")
	assert.Equal(t, wrepo.StatusCompleted, wallet.status["wd1"])

	// decisão repetida não processa de novo
	rec = post(t, srv, "/admin/withdrawals/wd1/approve")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRejectWithdrawalRefundsHeldAmount(t *testing.T) {
	wallet := newFakeWallet()
	wallet.balance = 400_00
	wallet.hold("wd1", 600_00)
	srv := newAdminServer(wallet)

	rec := post(t, srv, "/admin/withdrawals/wd1/reject")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1000_00), wallet.balance, "devolve exatamente o valor retido")
	assert.Equal(t, wrepo.StatusCancelled, wallet.status["wd1"])

	rec = post(t, srv, "/admin/withdrawals/wd1/reject")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int64(1000_00), wallet.balance, "sem segunda devolução")
}

func TestDeclaredEventsCoverFilledSlots(t *testing.T) {
	openNum, closeNum := 3, 7
	res := settlement.Result{
		ID: "r1", SessionID: "s1", Date: "2026-08-30",
		Status: settlement.StatusPublished, OpenResult: &openNum, CloseResult: &closeNum,
	}

	// publicar com os dois slots preenchidos emite os dois — cobre o rascunho
	// do outro slot que virou publicado junto com esta declaração
	evs := declaredEvents(res)
	require.Len(t, evs, 2)
	assert.Equal(t, game.SlotOpen, evs[0].Slot)
	assert.Equal(t, 3, evs[0].Number)
	assert.Equal(t, game.SlotClose, evs[1].Slot)
	assert.Equal(t, 7, evs[1].Number)
	for _, ev := range evs {
		assert.Equal(t, "s1", ev.SessionID)
		assert.Equal(t, "2026-08-30", ev.ResultDate)
		assert.Equal(t, settlement.StatusPublished, ev.Status)
	}

	res.CloseResult = nil
	evs = declaredEvents(res)
	require.Len(t, evs, 1)
	assert.Equal(t, game.SlotOpen, evs[0].Slot)
}
