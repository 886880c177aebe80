package book_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/matka-bet-platform/internal/bet-service/book"
	"github.com/radieske/matka-bet-platform/internal/game"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

var (
	openAt  = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	closeAt = time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
)

type fakeSessions struct{ s game.Session }

func (f fakeSessions) GetSession(_ context.Context, _ string) (game.Session, error) {
	return f.s, nil
}

// fakeStore simula o store atômico: débito com piso + acumulação por número.
type fakeStore struct {
	balance int64
	bets    map[string]*book.Bet // por (user|session|slot|tipo)
	places  int
}

func (f *fakeStore) Place(_ context.Context, p book.Placement) (book.Receipt, error) {
	if f.balance < p.AmountCents {
		return book.Receipt{}, wrepo.ErrInsufficientFunds
	}
	f.balance -= p.AmountCents
	f.places++

	key := p.UserID + "|" + p.SessionID + "|" + p.Slot + "|" + p.BetType
	b, ok := f.bets[key]
	if !ok {
		b = &book.Bet{ID: key, UserID: p.UserID, SessionID: p.SessionID, Slot: p.Slot,
			BetType: p.BetType, Status: book.StatusPending}
		f.bets[key] = b
	}
	entry := accumulate(b, p.Number, p.AmountCents)

	return book.Receipt{BetID: b.ID, Number: p.Number, EntryAmountCents: entry, NewBalanceCents: f.balance}, nil
}

// accumulate espelha o upsert soma-por-número do store real e devolve o
// acumulado da entry.
func accumulate(b *book.Bet, number int, amount int64) int64 {
	for i := range b.Entries {
		if b.Entries[i].Number == number {
			b.Entries[i].AmountCents += amount
			return b.Entries[i].AmountCents
		}
	}
	b.Entries = append(b.Entries, book.Entry{Number: number, AmountCents: amount})
	return amount
}

func activeSession() game.Session {
	return game.Session{
		ID: "s1", Name: "Kalyan", Status: game.StatusActive, GameType: game.TypeRegular,
		OpenAt: openAt, CloseAt: closeAt, RateSingle: 9, RateJodi: 950,
	}
}

func newBook(t *testing.T, s game.Session, balance int64) (*book.Book, *fakeStore) {
	t.Helper()
	store := &fakeStore{balance: balance, bets: map[string]*book.Bet{}}
	b := book.New(fakeSessions{s: s}, store)
	book.SetNow(b, func() time.Time { return openAt.Add(time.Hour) })
	return b, store
}

func placement(betType string, number int, amount int64) book.Placement {
	return book.Placement{
		UserID: "u1", SessionID: "s1", Slot: game.SlotOpen,
		BetType: betType, Number: number, AmountCents: amount,
	}
}

func TestPlaceBetDebitsAndAccumulates(t *testing.T) {
	b, store := newBook(t, activeSession(), 100_00)

	rc, err := b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 10_00))
	require.NoError(t, err)
	assert.Equal(t, int64(10_00), rc.EntryAmountCents)
	assert.Equal(t, int64(90_00), rc.NewBalanceCents)

	// repetir o número soma na entry, nunca duplica
	rc, err = b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 5_00))
	require.NoError(t, err)
	assert.Equal(t, int64(15_00), rc.EntryAmountCents)
	assert.Equal(t, int64(85_00), rc.NewBalanceCents)

	bet := store.bets["u1|s1|open|single"]
	require.NotNil(t, bet)
	assert.Len(t, bet.Entries, 1)
	assert.Equal(t, int64(15_00), bet.TotalStaked())
}

func TestPlaceBetInsufficientFundsLeavesNothing(t *testing.T) {
	b, store := newBook(t, activeSession(), 5_00)

	_, err := b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 10_00))
	assert.ErrorIs(t, err, wrepo.ErrInsufficientFunds)
	assert.Equal(t, int64(5_00), store.balance, "saldo intacto")
	assert.Empty(t, store.bets, "nenhuma aposta gravada")
}

func TestPlaceBetValidation(t *testing.T) {
	b, store := newBook(t, activeSession(), 100_00)

	cases := map[string]book.Placement{
		"amount zero":        placement(book.TypeSingle, 7, 0),
		"amount negative":    placement(book.TypeSingle, 7, -5),
		"single out of range": placement(book.TypeSingle, 10, 10_00),
		"jodi out of range":  placement(book.TypeJodi, 100, 10_00),
		"negative number":    placement(book.TypeSingle, -1, 10_00),
		"unknown type":       placement("triple", 7, 10_00),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := b.PlaceBet(context.Background(), p)
			assert.ErrorIs(t, err, book.ErrValidation)
		})
	}

	badSlot := placement(book.TypeSingle, 7, 10_00)
	badSlot.Slot = "night"
	_, err := b.PlaceBet(context.Background(), badSlot)
	assert.ErrorIs(t, err, book.ErrValidation)

	assert.Zero(t, store.places, "nenhuma tentativa chegou no store")
}

func TestPlaceBetJodiRange(t *testing.T) {
	b, _ := newBook(t, activeSession(), 100_00)

	// 0..99 é válido para jodi, inclusive dois dígitos
	_, err := b.PlaceBet(context.Background(), placement(book.TypeJodi, 99, 10_00))
	assert.NoError(t, err)
	_, err = b.PlaceBet(context.Background(), placement(book.TypeJodi, 0, 10_00))
	assert.NoError(t, err)
}

func TestPlaceBetOutsideWindow(t *testing.T) {
	b, store := newBook(t, activeSession(), 100_00)

	book.SetNow(b, func() time.Time { return openAt.Add(-time.Hour) })
	_, err := b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 10_00))
	assert.ErrorIs(t, err, game.ErrNotOpenYet)

	book.SetNow(b, func() time.Time { return closeAt.Add(time.Minute) })
	_, err = b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 10_00))
	assert.ErrorIs(t, err, game.ErrBettingClosed)

	assert.Zero(t, store.places)
}

func TestPlaceBetRejectsHardGameSession(t *testing.T) {
	s := activeSession()
	s.GameType = game.TypeHard
	b, _ := newBook(t, s, 100_00)

	_, err := b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 10_00))
	assert.ErrorIs(t, err, book.ErrValidation)
}

func TestPlaceBetClosedSession(t *testing.T) {
	s := activeSession()
	s.Status = game.StatusClosed
	b, _ := newBook(t, s, 100_00)

	_, err := b.PlaceBet(context.Background(), placement(book.TypeSingle, 7, 10_00))
	assert.ErrorIs(t, err, game.ErrBettingClosed)
}

// ledgerStore simula a carteira compartilhada com débito de piso serializado,
// como o UPDATE condicional do repo real.
type ledgerStore struct {
	mu       sync.Mutex
	balance  int64
	debited  int64
	violated bool
}

func (l *ledgerStore) Place(_ context.Context, p book.Placement) (book.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance < p.AmountCents {
		return book.Receipt{}, wrepo.ErrInsufficientFunds
	}
	l.balance -= p.AmountCents
	l.debited += p.AmountCents
	if l.balance < 0 {
		l.violated = true
	}
	return book.Receipt{BetID: "b1", Number: p.Number, NewBalanceCents: l.balance}, nil
}

func (l *ledgerStore) credit(amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance += amount
}

func TestRandomInterleavingsKeepBalanceNonNegative(t *testing.T) {
	const initial = 50_00

	store := &ledgerStore{balance: initial}
	b := book.New(fakeSessions{s: activeSession()}, store)
	book.SetNow(b, func() time.Time { return openAt.Add(time.Hour) })

	// mistura aleatória (seed fixa) de apostas e créditos disparada em paralelo
	rng := rand.New(rand.NewSource(1))
	var credited int64
	ops := make([]func(), 0, 400)
	for i := 0; i < 400; i++ {
		if rng.Intn(3) == 0 {
			amount := int64(rng.Intn(20)+1) * 1_00
			credited += amount
			ops = append(ops, func() { store.credit(amount) })
		} else {
			p := placement(book.TypeSingle, rng.Intn(10), int64(rng.Intn(30)+1)*1_00)
			ops = append(ops, func() { _, _ = b.PlaceBet(context.Background(), p) })
		}
	}

	var wg sync.WaitGroup
	wg.Add(len(ops))
	for _, op := range ops {
		op := op
		go func() {
			defer wg.Done()
			op()
		}()
	}
	wg.Wait()

	assert.False(t, store.violated, "saldo nunca pode ficar negativo")
	assert.GreaterOrEqual(t, store.balance, int64(0))
	assert.Equal(t, int64(initial)+credited-store.debited, store.balance,
		"todo débito e crédito casa com o saldo final")
}
