package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/radieske/matka-bet-platform/internal/bet-service/book"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

// Postgres implementa o book.Store: aposta persistida junto com o débito
// da carteira, o lançamento no ledger e a comissão da casa, em uma única
// transação. Se o débito falha, nada é gravado.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Place executa o fluxo atômico do placeBet.
// Política de ganhos do admin: a casa é creditada com o valor integral da
// aposta já na colocação; os prêmios são debitados da casa na liquidação.
func (p *Postgres) Place(ctx context.Context, pl book.Placement) (book.Receipt, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return book.Receipt{}, err
	}
	defer tx.Rollback()

	desc := fmt.Sprintf("Aposta em %s - número %d", pl.SessionName, pl.Number)
	newBalance, err := wrepo.DebitInTx(ctx, tx, pl.UserID, pl.AmountCents, wrepo.TxBet, wrepo.StatusCompleted, desc)
	if err != nil {
		return book.Receipt{}, err
	}

	// uma aposta por (usuário, sessão, slot, tipo); entries acumulam nela
	var betID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bets (id, user_id, session_id, slot, bet_type, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, session_id, slot, bet_type)
		DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`,
		uuid.NewString(), pl.UserID, pl.SessionID, pl.Slot, pl.BetType, book.StatusPending).Scan(&betID)
	if err != nil {
		return book.Receipt{}, err
	}

	// política de acumulação: soma por número, nunca linha duplicada
	var entryAmount int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bet_entries (bet_id, number, amount_cents)
		VALUES ($1,$2,$3)
		ON CONFLICT (bet_id, number)
		DO UPDATE SET amount_cents = bet_entries.amount_cents + EXCLUDED.amount_cents
		RETURNING amount_cents`,
		betID, pl.Number, pl.AmountCents).Scan(&entryAmount)
	if err != nil {
		return book.Receipt{}, err
	}

	if err := wrepo.HouseAddInTx(ctx, tx, pl.AmountCents,
		fmt.Sprintf("Stake arrecadada: aposta %s", betID)); err != nil {
		return book.Receipt{}, err
	}

	if err := tx.Commit(); err != nil {
		return book.Receipt{}, err
	}

	return book.Receipt{
		BetID:            betID,
		Number:           pl.Number,
		EntryAmountCents: entryAmount,
		NewBalanceCents:  newBalance,
	}, nil
}

// Get retorna a aposta com suas entries.
func (p *Postgres) Get(ctx context.Context, betID string) (book.Bet, error) {
	var b book.Bet
	var resultNumber sql.NullInt64
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_id, slot, bet_type, status, winning_amount_cents, result_number, created_at
		FROM bets WHERE id=$1`, betID).Scan(
		&b.ID, &b.UserID, &b.SessionID, &b.Slot, &b.BetType, &b.Status,
		&b.WinningAmountCents, &resultNumber, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return book.Bet{}, wrepo.ErrNotFound
	} else if err != nil {
		return book.Bet{}, err
	}
	if resultNumber.Valid {
		v := int(resultNumber.Int64)
		b.ResultNumber = &v
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT number, amount_cents FROM bet_entries WHERE bet_id=$1 ORDER BY number`, betID)
	if err != nil {
		return book.Bet{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e book.Entry
		if err := rows.Scan(&e.Number, &e.AmountCents); err != nil {
			return book.Bet{}, err
		}
		b.Entries = append(b.Entries, e)
	}
	return b, rows.Err()
}

// ListByUser retorna as apostas do usuário, opcionalmente por status,
// mais recentes primeiro.
func (p *Postgres) ListByUser(ctx context.Context, userID, status string, limit int) ([]book.Bet, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, session_id, slot, bet_type, status, winning_amount_cents, result_number, created_at
		FROM bets
		WHERE user_id=$1 AND ($2='' OR status=$2)
		ORDER BY created_at DESC LIMIT $3`, userID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []book.Bet
	for rows.Next() {
		var b book.Bet
		var resultNumber sql.NullInt64
		if err := rows.Scan(&b.ID, &b.UserID, &b.SessionID, &b.Slot, &b.BetType, &b.Status,
			&b.WinningAmountCents, &resultNumber, &b.CreatedAt); err != nil {
			return nil, err
		}
		if resultNumber.Valid {
			v := int(resultNumber.Int64)
			b.ResultNumber = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		erows, err := p.db.QueryContext(ctx,
			`SELECT number, amount_cents FROM bet_entries WHERE bet_id=$1 ORDER BY number`, out[i].ID)
		if err != nil {
			return nil, err
		}
		for erows.Next() {
			var e book.Entry
			if err := erows.Scan(&e.Number, &e.AmountCents); err != nil {
				erows.Close()
				return nil, err
			}
			out[i].Entries = append(out[i].Entries, e)
		}
		if err := erows.Err(); err != nil {
			erows.Close()
			return nil, err
		}
		erows.Close()
	}
	return out, nil
}
