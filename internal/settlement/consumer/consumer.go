package consumer

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/game"
	gcache "github.com/radieske/matka-bet-platform/internal/game/cache"
	"github.com/radieske/matka-bet-platform/internal/settlement"
	"github.com/radieske/matka-bet-platform/internal/shared/kafka"
	"github.com/radieske/matka-bet-platform/pkg/contracts/events"
)

// Consumer consome result_declared, roda o engine e publica bets_settled.
// Mensagem envenenada vai pra DLQ depois das tentativas; o loop nunca para
// por causa de um evento ruim.
type Consumer struct {
	Log    *zap.Logger
	Reader *kafkago.Reader
	Engine *settlement.Engine
	Writer *kafkago.Writer // bets_settled
	DLQ    *kafkago.Writer // opcional
	Cache  *gcache.SessionCache

	OnConsumed func()       // métricas (counter++)
	OnError    func(string) // métricas por fase
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			if c.OnError != nil {
				c.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		var ev events.ResultDeclared
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			if c.OnError != nil {
				c.OnError("decode")
			}
			continue
		}
		if ev.Status == settlement.StatusDraft {
			// rascunhos só entram quando o ticker promove
			continue
		}

		if err := c.processOne(ctx, ev); err != nil {
			c.Log.Error("settle result",
				zap.String("sessionId", ev.SessionID),
				zap.String("slot", ev.Slot),
				zap.Error(err))
			if c.OnError != nil {
				c.OnError("settle")
			}
			if c.DLQ != nil {
				_ = kafka.WriteJSON(ctx, c.DLQ, ev.SessionID, m.Value)
			}
		}
	}
}

// processOne tenta liquidar com retry simples antes de desistir.
func (c *Consumer) processOne(ctx context.Context, ev events.ResultDeclared) error {
	const retries = 3

	var sum settlement.Summary
	var err error
	for i := 0; i < retries; i++ {
		if sum, err = c.Engine.Settle(ctx, ev); err == nil {
			break
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	if err != nil {
		return err
	}

	if sum.SessionClosed && c.Cache != nil {
		if err := c.Cache.Invalidate(ctx, ev.SessionID); err != nil {
			c.Log.Warn("session cache invalidate failed", zap.Error(err))
		}
	}

	out := events.BetsSettled{
		SessionID:        ev.SessionID,
		Slot:             ev.Slot,
		ResultDate:       ev.ResultDate,
		Settled:          sum.Settled,
		Winners:          sum.Winners,
		Losers:           sum.Losers,
		Skipped:          sum.Skipped,
		TotalPayoutCents: sum.TotalPayoutCents,
		Ts:               time.Now(),
	}
	payload, _ := json.Marshal(out)
	if err := kafka.WriteJSON(ctx, c.Writer, ev.SessionID, payload); err != nil {
		c.Log.Warn("publish bets_settled", zap.Error(err))
	}

	c.Log.Info("result settled",
		zap.String("sessionId", ev.SessionID),
		zap.String("slot", ev.Slot),
		zap.Int("settled", sum.Settled),
		zap.Int("winners", sum.Winners),
		zap.Int64("payout_cents", sum.TotalPayoutCents),
	)
	return nil
}

// Promoter publica resultados agendados quando a hora chega. Roda num ticker
// no worker; cada linha promovida vira um result_declared por slot preenchido.
type Promoter struct {
	Log    *zap.Logger
	Repo   interface {
		PromoteDue(ctx context.Context) ([]settlement.Result, error)
	}
	Writer *kafkago.Writer // result_declared

	OnPromoted func() // métricas
}

func (p *Promoter) Tick(ctx context.Context) {
	promoted, err := p.Repo.PromoteDue(ctx)
	if err != nil {
		p.Log.Warn("promote due results", zap.Error(err))
		return
	}

	for _, r := range promoted {
		if p.OnPromoted != nil {
			p.OnPromoted()
		}
		p.publishSlot(ctx, r, game.SlotOpen, r.OpenResult)
		p.publishSlot(ctx, r, game.SlotClose, r.CloseResult)
	}
}

func (p *Promoter) publishSlot(ctx context.Context, r settlement.Result, slot string, number *int) {
	if number == nil {
		return
	}
	ev := events.ResultDeclared{
		ResultID:   r.ID,
		SessionID:  r.SessionID,
		Slot:       slot,
		Number:     *number,
		ResultDate: r.Date,
		Status:     settlement.StatusPublished,
		DeclaredAt: time.Now(),
	}
	payload, _ := json.Marshal(ev)
	if err := kafka.WriteJSON(ctx, p.Writer, r.SessionID, payload); err != nil {
		p.Log.Warn("publish promoted result", zap.Error(err))
	}
}
