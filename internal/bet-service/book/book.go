package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/matka-bet-platform/internal/game"
)

var ErrValidation = errors.New("validation failed")

// Tipos de aposta.
const (
	TypeSingle = "single"
	TypeJodi   = "jodi"
)

// Status de aposta.
const (
	StatusPending = "pending"
	StatusWon     = "won"
	StatusLost    = "lost"
)

// Entry é uma linha (número, valor) de uma aposta. Apostas repetidas no
// mesmo número dentro da sessão somam no valor — nunca duplicam a linha.
type Entry struct {
	Number      int
	AmountCents int64
}

// Bet agrega as entries de um usuário em um slot de uma sessão.
type Bet struct {
	ID                 string
	UserID             string
	SessionID          string
	Slot               string
	BetType            string
	Status             string
	WinningAmountCents int64
	ResultNumber       *int
	Entries            []Entry
	CreatedAt          time.Time
}

// TotalStaked soma o valor apostado em todas as entries.
func (b Bet) TotalStaked() int64 {
	var total int64
	for _, e := range b.Entries {
		total += e.AmountCents
	}
	return total
}

// Placement é o comando de aposta já validado que o store persiste em uma
// única transação (débito + lançamento + entry + comissão da casa).
type Placement struct {
	UserID      string
	SessionID   string
	SessionName string
	Slot        string
	BetType     string
	Number      int
	AmountCents int64
}

// Receipt é o resultado de um placeBet.
type Receipt struct {
	BetID            string
	Number           int
	EntryAmountCents int64 // valor acumulado da entry após esta aposta
	NewBalanceCents  int64
}

// SessionSource resolve sessões (cache read-through na implementação real).
type SessionSource interface {
	GetSession(ctx context.Context, id string) (game.Session, error)
}

// Store persiste a aposta de forma atômica: ou tudo (débito, lançamento,
// entry, comissão) ou nada.
type Store interface {
	Place(ctx context.Context, p Placement) (Receipt, error)
}

// Book é o ponto único de entrada de apostas do jogo regular. Toda rota de
// aposta passa por aqui — validação, janela e acumulação têm uma política só.
type Book struct {
	sessions SessionSource
	store    Store
	now      func() time.Time
}

func New(sessions SessionSource, store Store) *Book {
	return &Book{sessions: sessions, store: store, now: time.Now}
}

// PlaceBet valida e persiste uma aposta.
// Ordem: forma -> janela da sessão -> débito atômico + persistência.
// Qualquer falha antes do store não deixa efeito colateral algum.
func (b *Book) PlaceBet(ctx context.Context, p Placement) (Receipt, error) {
	if p.UserID == "" || p.SessionID == "" {
		return Receipt{}, fmt.Errorf("%w: userId and sessionId are required", ErrValidation)
	}
	if p.AmountCents < 1 {
		return Receipt{}, fmt.Errorf("%w: minimum bet amount is 1", ErrValidation)
	}
	switch p.BetType {
	case TypeSingle:
		if p.Number < 0 || p.Number > 9 {
			return Receipt{}, fmt.Errorf("%w: single bet number must be between 0 and 9", ErrValidation)
		}
	case TypeJodi:
		if p.Number < 0 || p.Number > 99 {
			return Receipt{}, fmt.Errorf("%w: jodi bet number must be between 0 and 99", ErrValidation)
		}
	default:
		return Receipt{}, fmt.Errorf("%w: unknown bet type %q", ErrValidation, p.BetType)
	}
	if !game.ValidSlot(p.Slot) {
		return Receipt{}, fmt.Errorf("%w: unknown session slot %q", ErrValidation, p.Slot)
	}

	s, err := b.sessions.GetSession(ctx, p.SessionID)
	if err != nil {
		return Receipt{}, err
	}
	if s.GameType != game.TypeRegular {
		return Receipt{}, fmt.Errorf("%w: session does not accept %s bets", ErrValidation, p.BetType)
	}
	if err := s.AcceptsBets(b.now()); err != nil {
		return Receipt{}, err
	}

	p.SessionName = s.Name
	return b.store.Place(ctx, p)
}
