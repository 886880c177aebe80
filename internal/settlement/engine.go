package settlement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/game"
	"github.com/radieske/matka-bet-platform/pkg/contracts/events"
)

// Entry é uma linha (número, valor) pendente de liquidação.
type Entry struct {
	Number      int
	AmountCents int64
}

// PendingBet é uma aposta pendente com suas entries, como o scan retorna.
type PendingBet struct {
	ID      string
	UserID  string
	Slot    string
	BetType string
	Entries []Entry
}

// Result é a linha de resultado de uma sessão em uma data.
type Result struct {
	ID          string
	SessionID   string
	Date        string
	OpenResult  *int
	CloseResult *int
	Status      string
}

// Summary resume uma rodada de liquidação.
type Summary struct {
	Settled          int
	Winners          int
	Losers           int
	Skipped          int
	TotalPayoutCents int64
	SessionClosed    bool
}

// Store é a persistência que o engine precisa. SettleBet retorna claimed=false
// quando a aposta já foi liquidada antes (guarda por status no UPDATE) — o
// engine conta como skipped e segue, nunca paga duas vezes.
type Store interface {
	ResultFor(ctx context.Context, sessionID, date string) (Result, error)
	PendingSingles(ctx context.Context, sessionID, slot string, dayStart time.Time) ([]PendingBet, error)
	PendingJodis(ctx context.Context, sessionID string, dayStart time.Time) ([]PendingBet, error)
	SettleBet(ctx context.Context, betID, userID string, won bool, payoutCents int64, resultNumber int) (claimed bool, err error)
	CloseSession(ctx context.Context, sessionID string) error
}

// SessionSource resolve a sessão (taxas de pagamento).
type SessionSource interface {
	GetSession(ctx context.Context, id string) (game.Session, error)
}

// Engine liquida apostas a partir de um result_declared.
// Callbacks de métricas por etapa, no estilo dos workers.
type Engine struct {
	Log      *zap.Logger
	Sessions SessionSource
	Store    Store

	OnSettled func(status string) // métricas (won|lost)
	OnPayout  func(cents int64)   // métricas
	OnError   func(stage string)  // métricas por fase
}

// Settle processa a declaração de um slot:
//  1. singles do slot declarado pagam rateSingle quando número == resultado;
//  2. jodis só resolvem quando os DOIS slots estão declarados — o número jodi
//     é open*10+close e paga rateJodi;
//  3. com os dois slots publicados a sessão fecha.
//
// Falha em uma aposta não bloqueia as demais: loga, conta como skipped e segue.
func (e *Engine) Settle(ctx context.Context, ev events.ResultDeclared) (Summary, error) {
	var sum Summary

	s, err := e.Sessions.GetSession(ctx, ev.SessionID)
	if err != nil {
		return sum, fmt.Errorf("load session %s: %w", ev.SessionID, err)
	}

	dayStart, err := time.ParseInLocation("2006-01-02", ev.ResultDate, time.UTC)
	if err != nil {
		return sum, fmt.Errorf("bad result date %q: %w", ev.ResultDate, err)
	}

	singles, err := e.Store.PendingSingles(ctx, ev.SessionID, ev.Slot, dayStart)
	if err != nil {
		return sum, fmt.Errorf("scan pending singles: %w", err)
	}
	e.settleGroup(ctx, singles, ev.Number, s.RateSingle, &sum)

	res, err := e.Store.ResultFor(ctx, ev.SessionID, ev.ResultDate)
	if err != nil {
		return sum, fmt.Errorf("load result row: %w", err)
	}

	if res.OpenResult != nil && res.CloseResult != nil {
		jodiNumber := *res.OpenResult*10 + *res.CloseResult
		jodis, err := e.Store.PendingJodis(ctx, ev.SessionID, dayStart)
		if err != nil {
			return sum, fmt.Errorf("scan pending jodis: %w", err)
		}
		e.settleGroup(ctx, jodis, jodiNumber, s.RateJodi, &sum)

		if res.Status == StatusPublished {
			if err := e.Store.CloseSession(ctx, ev.SessionID); err != nil {
				e.Log.Error("close session", zap.String("sessionId", ev.SessionID), zap.Error(err))
				if e.OnError != nil {
					e.OnError("close_session")
				}
			} else {
				sum.SessionClosed = true
			}
		}
	}

	return sum, nil
}

func (e *Engine) settleGroup(ctx context.Context, bets []PendingBet, result int, rate int64, sum *Summary) {
	for _, b := range bets {
		payout := payoutFor(b, result, rate)
		won := payout > 0

		claimed, err := e.Store.SettleBet(ctx, b.ID, b.UserID, won, payout, result)
		if err != nil {
			e.Log.Error("settle bet", zap.String("betId", b.ID), zap.Error(err))
			if e.OnError != nil {
				e.OnError("settle")
			}
			sum.Skipped++
			continue
		}
		if !claimed {
			// já liquidada em execução anterior (redelivery do Kafka)
			sum.Skipped++
			continue
		}

		sum.Settled++
		if won {
			sum.Winners++
			sum.TotalPayoutCents += payout
			if e.OnSettled != nil {
				e.OnSettled("won")
			}
			if e.OnPayout != nil {
				e.OnPayout(payout)
			}
		} else {
			sum.Losers++
			if e.OnSettled != nil {
				e.OnSettled("lost")
			}
		}
	}
}

// payoutFor soma o prêmio de todas as entries vencedoras da aposta.
func payoutFor(b PendingBet, result int, rate int64) int64 {
	var payout int64
	for _, en := range b.Entries {
		if en.Number == result {
			payout += en.AmountCents * rate
		}
	}
	return payout
}
