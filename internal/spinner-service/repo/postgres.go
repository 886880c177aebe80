package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

// Postgres persiste rodadas e jogadas do spinner. O fluxo de dinheiro usa os
// mesmos primitivos transacionais da carteira que o jogo regular: débito com
// piso, lançamento no ledger e comissão da casa na mesma transação.
type Postgres struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPostgres(db *sql.DB, log *zap.Logger) *Postgres {
	return &Postgres{db: db, log: log}
}

const roundCols = "id, name, interval_minutes, result_at, result_number, multiplier, status, created_at"

// CreateRound abre uma rodada com resultado em now + intervalo.
func (p *Postgres) CreateRound(ctx context.Context, name string, intervalMinutes int, multiplier int64) (Round, error) {
	return p.scanRound(p.db.QueryRowContext(ctx, `
		INSERT INTO spinner_rounds (id, name, interval_minutes, result_at, multiplier, status)
		VALUES ($1,$2,$3,NOW() + make_interval(mins => $3),$4,$5)
		RETURNING `+roundCols,
		uuid.NewString(), name, intervalMinutes, multiplier, RoundOpen))
}

// CurrentRound retorna a rodada aberta mais recente.
func (p *Postgres) CurrentRound(ctx context.Context) (Round, error) {
	r, err := p.scanRound(p.db.QueryRowContext(ctx, `
		SELECT `+roundCols+` FROM spinner_rounds
		WHERE status=$1 ORDER BY result_at ASC LIMIT 1`, RoundOpen))
	if err == sql.ErrNoRows {
		return Round{}, ErrNoOpenRound
	}
	return r, err
}

func (p *Postgres) GetRound(ctx context.Context, id string) (Round, error) {
	r, err := p.scanRound(p.db.QueryRowContext(ctx,
		`SELECT `+roundCols+` FROM spinner_rounds WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return Round{}, wrepo.ErrNotFound
	}
	return r, err
}

// Play registra a jogada: débito com piso, lançamento, jogada e comissão da
// casa em uma transação. UNIQUE(round_id, user_id) garante uma jogada por
// rodada — a segunda recebe ErrAlreadyPlayed sem efeito colateral.
func (p *Postgres) Play(ctx context.Context, roundID, userID string, number int, amount int64) (PlayReceipt, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return PlayReceipt{}, err
	}
	defer tx.Rollback()

	var status string
	var resultAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT status, result_at FROM spinner_rounds WHERE id=$1`, roundID).
		Scan(&status, &resultAt)
	if err == sql.ErrNoRows {
		return PlayReceipt{}, wrepo.ErrNotFound
	} else if err != nil {
		return PlayReceipt{}, err
	}
	if status != RoundOpen || !time.Now().Before(resultAt) {
		return PlayReceipt{}, ErrRoundClosed
	}

	newBalance, err := wrepo.DebitInTx(ctx, tx, userID, amount, wrepo.TxBet, wrepo.StatusCompleted,
		fmt.Sprintf("Jogada no spinner - número %d", number))
	if err != nil {
		return PlayReceipt{}, err
	}

	playID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO spinner_plays (id, round_id, user_id, number, amount_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		playID, roundID, userID, number, amount, PlayPending)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return PlayReceipt{}, ErrAlreadyPlayed
		}
		return PlayReceipt{}, err
	}

	if err := wrepo.HouseAddInTx(ctx, tx, amount,
		fmt.Sprintf("Stake arrecadada: jogada %s", playID)); err != nil {
		return PlayReceipt{}, err
	}

	if err := tx.Commit(); err != nil {
		return PlayReceipt{}, err
	}
	return PlayReceipt{PlayID: playID, RoundID: roundID, NewBalanceCents: newBalance}, nil
}

// DeclareResult é o ponto único de serialização da rodada: o UPDATE condicional
// por status='open' garante que só uma declaração vence. Liquida as jogadas com
// o multiplicador fixo e agenda a próxima rodada recorrente. Redeclarar com o
// MESMO número retoma de onde parou — liquida as jogadas que ficaram pendentes
// e cria a próxima rodada se ela não existe; com número diferente é duplicata
// e recebe ErrAlreadyDeclared.
func (p *Postgres) DeclareResult(ctx context.Context, roundID string, number int) (CloseSummary, error) {
	var sum CloseSummary

	r, err := p.claimRound(ctx, roundID, number)
	if err != nil {
		return sum, err
	}
	sum.Round = r

	plays, err := p.pendingPlays(ctx, roundID)
	if err != nil {
		return sum, err
	}

	// falha em uma jogada não bloqueia as demais; a pendente liquida na retomada
	for _, pl := range plays {
		payout := int64(0)
		if pl.Number == number {
			payout = pl.AmountCents * r.Multiplier
		}
		claimed, err := p.settlePlay(ctx, pl, payout > 0, payout, number)
		if err != nil {
			p.log.Error("settle play", zap.String("playId", pl.ID), zap.Error(err))
			sum.Skipped++
			continue
		}
		if !claimed {
			sum.Skipped++
			continue
		}
		sum.Plays++
		if payout > 0 {
			sum.Winners++
			sum.TotalPayoutCents += payout
		}
	}

	next, err := p.ensureNextRound(ctx, r)
	if err != nil {
		return sum, fmt.Errorf("schedule next round: %w", err)
	}
	sum.NextRound = next
	return sum, nil
}

func (p *Postgres) claimRound(ctx context.Context, roundID string, number int) (Round, error) {
	r, err := p.scanRound(p.db.QueryRowContext(ctx, `
		UPDATE spinner_rounds SET result_number=$1, status=$2
		WHERE id=$3 AND status=$4
		RETURNING `+roundCols,
		number, RoundCompleted, roundID, RoundOpen))
	if err == sql.ErrNoRows {
		// ou a rodada não existe, ou já foi declarada
		r, gerr := p.GetRound(ctx, roundID)
		if gerr != nil {
			return Round{}, gerr
		}
		if resumableRound(r, number) {
			return r, nil
		}
		return Round{}, ErrAlreadyDeclared
	}
	return r, err
}

// resumableRound diz se uma redeclaração pode retomar a liquidação: mesma
// rodada já encerrada com o mesmo número. Número diferente é duplicata.
func resumableRound(r Round, number int) bool {
	return r.Status == RoundCompleted && r.ResultNumber != nil && *r.ResultNumber == number
}

// ensureNextRound devolve a rodada aberta da cadeia ou cria a próxima. Mantém
// a recorrência viva mesmo quando a criação falhou numa declaração anterior.
func (p *Postgres) ensureNextRound(ctx context.Context, prev Round) (Round, error) {
	r, err := p.scanRound(p.db.QueryRowContext(ctx, `
		SELECT `+roundCols+` FROM spinner_rounds
		WHERE name=$1 AND status=$2 ORDER BY result_at DESC LIMIT 1`,
		prev.Name, RoundOpen))
	if err == nil {
		return r, nil
	}
	if err != sql.ErrNoRows {
		return Round{}, err
	}
	return p.CreateRound(ctx, prev.Name, prev.IntervalMinutes, prev.Multiplier)
}

func (p *Postgres) settlePlay(ctx context.Context, pl Play, won bool, payout int64, resultNumber int) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	status := PlayLost
	if won {
		status = PlayWon
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE spinner_plays SET status=$1, winning_amount_cents=$2, result_number=$3
		WHERE id=$4 AND status=$5`,
		status, payout, resultNumber, pl.ID, PlayPending)
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
		if _, err := wrepo.CreditInTx(ctx, tx, pl.UserID, payout, wrepo.TxWin,
			fmt.Sprintf("Prêmio do spinner: jogada %s", pl.ID)); err != nil {
			return false, err
		}
		if err := wrepo.HouseAddInTx(ctx, tx, -payout,
			fmt.Sprintf("Pagamento de prêmio: jogada %s", pl.ID)); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

func (p *Postgres) pendingPlays(ctx context.Context, roundID string) ([]Play, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, round_id, user_id, number, amount_cents, status, winning_amount_cents, created_at
		FROM spinner_plays WHERE round_id=$1 AND status=$2 ORDER BY created_at`,
		roundID, PlayPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Play
	for rows.Next() {
		var pl Play
		if err := rows.Scan(&pl.ID, &pl.RoundID, &pl.UserID, &pl.Number, &pl.AmountCents,
			&pl.Status, &pl.WinningAmountCents, &pl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

// LastResults retorna as últimas rodadas encerradas, mais recentes primeiro.
func (p *Postgres) LastResults(ctx context.Context, limit int) ([]Round, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+roundCols+` FROM spinner_rounds
		WHERE status=$1 ORDER BY result_at DESC LIMIT $2`, RoundCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		r, err := p.scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlaysByUser retorna o histórico de jogadas do usuário.
func (p *Postgres) PlaysByUser(ctx context.Context, userID string, limit int) ([]Play, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, round_id, user_id, number, amount_cents, status, winning_amount_cents, result_number, created_at
		FROM spinner_plays WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Play
	for rows.Next() {
		var pl Play
		var resultNumber sql.NullInt64
		if err := rows.Scan(&pl.ID, &pl.RoundID, &pl.UserID, &pl.Number, &pl.AmountCents,
			&pl.Status, &pl.WinningAmountCents, &resultNumber, &pl.CreatedAt); err != nil {
			return nil, err
		}
		if resultNumber.Valid {
			v := int(resultNumber.Int64)
			pl.ResultNumber = &v
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func (p *Postgres) scanRound(row rowScanner) (Round, error) {
	var r Round
	var resultNumber sql.NullInt64
	if err := row.Scan(&r.ID, &r.Name, &r.IntervalMinutes, &r.ResultAt,
		&resultNumber, &r.Multiplier, &r.Status, &r.CreatedAt); err != nil {
		return Round{}, err
	}
	if resultNumber.Valid {
		v := int(resultNumber.Int64)
		r.ResultNumber = &v
	}
	return r, nil
}
