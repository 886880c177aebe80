package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/matka-bet-platform/internal/bet-service/book"
	"github.com/radieske/matka-bet-platform/internal/game"
	"github.com/radieske/matka-bet-platform/internal/settlement"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

var ErrAlreadyDeclared = errors.New("result already declared for this slot")

// Postgres implementa o settlement.Store e a declaração de resultados.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// DeclareResult reivindica o slot de forma atômica: a constraint
// UNIQUE(session_id, result_date) garante uma linha por dia, e o WHERE no
// ON CONFLICT só deixa preencher slot ainda vazio. Duas declarações
// concorrentes do mesmo slot nunca vencem as duas — a segunda recebe
// ErrAlreadyDeclared.
func (p *Postgres) DeclareResult(ctx context.Context, sessionID, slot string, number int, resultDate string, scheduledAt *time.Time) (settlement.Result, error) {
	var col string
	switch slot {
	case game.SlotOpen:
		col = "open_result"
	case game.SlotClose:
		col = "close_result"
	default:
		return settlement.Result{}, fmt.Errorf("unknown slot %q", slot)
	}

	status := settlement.StatusPublished
	if scheduledAt != nil && scheduledAt.After(time.Now()) {
		status = settlement.StatusDraft
	}

	q := fmt.Sprintf(`
		INSERT INTO results (id, session_id, result_date, %[1]s, status, scheduled_publish_at, declared_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (session_id, result_date) DO UPDATE SET
		  %[1]s = EXCLUDED.%[1]s,
		  status = EXCLUDED.status,
		  scheduled_publish_at = EXCLUDED.scheduled_publish_at,
		  declared_at = NOW()
		WHERE results.%[1]s IS NULL
		RETURNING id, session_id, to_char(result_date,'YYYY-MM-DD'), open_result, close_result, status`, col)

	var sched sql.NullTime
	if scheduledAt != nil {
		sched = sql.NullTime{Time: *scheduledAt, Valid: true}
	}

	r, err := scanResult(p.db.QueryRowContext(ctx, q,
		uuid.NewString(), sessionID, resultDate, number, status, sched))
	if err == sql.ErrNoRows {
		return settlement.Result{}, ErrAlreadyDeclared
	} else if err != nil {
		return settlement.Result{}, err
	}
	return r, nil
}

// ResultFor retorna a linha de resultado de uma sessão em uma data.
func (p *Postgres) ResultFor(ctx context.Context, sessionID, date string) (settlement.Result, error) {
	r, err := scanResult(p.db.QueryRowContext(ctx, `
		SELECT id, session_id, to_char(result_date,'YYYY-MM-DD'), open_result, close_result, status
		FROM results WHERE session_id=$1 AND result_date=$2`, sessionID, date))
	if err == sql.ErrNoRows {
		return settlement.Result{}, wrepo.ErrNotFound
	}
	return r, err
}

// PromoteDue publica os rascunhos cuja hora agendada já passou e devolve as
// linhas promovidas para o worker emitir os eventos.
func (p *Postgres) PromoteDue(ctx context.Context) ([]settlement.Result, error) {
	rows, err := p.db.QueryContext(ctx, `
		UPDATE results SET status=$1
		WHERE status=$2 AND scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= NOW()
		RETURNING id, session_id, to_char(result_date,'YYYY-MM-DD'), open_result, close_result, status`,
		settlement.StatusPublished, settlement.StatusDraft)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PendingSingles varre as apostas single pendentes do slot na janela do dia.
func (p *Postgres) PendingSingles(ctx context.Context, sessionID, slot string, dayStart time.Time) ([]settlement.PendingBet, error) {
	return p.scanPending(ctx, `
		SELECT b.id, b.user_id, b.slot, b.bet_type, e.number, e.amount_cents
		FROM bets b JOIN bet_entries e ON e.bet_id = b.id
		WHERE b.session_id=$1 AND b.slot=$2 AND b.bet_type=$3 AND b.status=$4
		  AND b.created_at >= $5 AND b.created_at < $5 + interval '24 hours'
		ORDER BY b.id, e.number`,
		sessionID, slot, book.TypeSingle, book.StatusPending, dayStart)
}

// PendingJodis varre as apostas jodi pendentes da sessão no dia, de qualquer
// slot — jodi só resolve com os dois resultados.
func (p *Postgres) PendingJodis(ctx context.Context, sessionID string, dayStart time.Time) ([]settlement.PendingBet, error) {
	return p.scanPending(ctx, `
		SELECT b.id, b.user_id, b.slot, b.bet_type, e.number, e.amount_cents
		FROM bets b JOIN bet_entries e ON e.bet_id = b.id
		WHERE b.session_id=$1 AND b.bet_type=$2 AND b.status=$3
		  AND b.created_at >= $4 AND b.created_at < $4 + interval '24 hours'
		ORDER BY b.id, e.number`,
		sessionID, book.TypeJodi, book.StatusPending, dayStart)
}

// SettleBet liquida uma aposta em uma transação: marca won/lost guardado por
// status='pending' (exatamente uma vez mesmo com redelivery), credita o
// vencedor e debita a casa pelo prêmio. claimed=false quando outra execução
// já liquidou.
func (p *Postgres) SettleBet(ctx context.Context, betID, userID string, won bool, payoutCents int64, resultNumber int) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	status := book.StatusLost
	if won {
		status = book.StatusWon
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status=$1, winning_amount_cents=$2, result_number=$3, settled_at=NOW()
		WHERE id=$4 AND status=$5`,
		status, payoutCents, resultNumber, betID, book.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if won {
		desc := fmt.Sprintf("Prêmio da aposta %s", betID)
		if _, err := wrepo.CreditInTx(ctx, tx, userID, payoutCents, wrepo.TxWin, desc); err != nil {
			return false, err
		}
		// prêmio sai da conta da casa; pode ficar negativa em rodada ruim
		if err := wrepo.HouseAddInTx(ctx, tx, -payoutCents,
			fmt.Sprintf("Pagamento de prêmio: aposta %s", betID)); err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

// CloseSession fecha a sessão quando os dois slots foram publicados.
func (p *Postgres) CloseSession(ctx context.Context, sessionID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE game_sessions SET status=$1 WHERE id=$2 AND status<>$1`,
		game.StatusClosed, sessionID)
	return err
}

func (p *Postgres) scanPending(ctx context.Context, q string, args ...any) ([]settlement.PendingBet, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.PendingBet
	for rows.Next() {
		var betID, userID, slot, betType string
		var number int
		var amount int64
		if err := rows.Scan(&betID, &userID, &slot, &betType, &number, &amount); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ID != betID {
			out = append(out, settlement.PendingBet{ID: betID, UserID: userID, Slot: slot, BetType: betType})
		}
		last := &out[len(out)-1]
		last.Entries = append(last.Entries, settlement.Entry{Number: number, AmountCents: amount})
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanResult(row rowScanner) (settlement.Result, error) {
	var r settlement.Result
	var openRes, closeRes sql.NullInt64
	if err := row.Scan(&r.ID, &r.SessionID, &r.Date, &openRes, &closeRes, &r.Status); err != nil {
		return settlement.Result{}, err
	}
	if openRes.Valid {
		v := int(openRes.Int64)
		r.OpenResult = &v
	}
	if closeRes.Valid {
		v := int(closeRes.Int64)
		r.CloseResult = &v
	}
	return r, nil
}
