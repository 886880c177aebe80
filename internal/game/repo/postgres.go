package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/matka-bet-platform/internal/game"
)

// Postgres persiste as sessões de jogo
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const sessionCols = `id, name, open_at, close_at, result_at, status, game_type, rate_single, rate_jodi, deleted, created_at`

// Create insere uma nova sessão ativa.
func (p *Postgres) Create(ctx context.Context, s *game.Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = game.StatusActive
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO game_sessions (id, name, open_at, close_at, result_at, status, game_type, rate_single, rate_jodi)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.Name, s.OpenAt, s.CloseAt, s.ResultAt, s.Status, s.GameType, s.RateSingle, s.RateJodi)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// Get retorna a sessão pelo id (inclusive removidas, para o admin).
func (p *Postgres) Get(ctx context.Context, id string) (game.Session, error) {
	return p.scanOne(p.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM game_sessions WHERE id=$1`, id))
}

// ListActive retorna as sessões apostáveis, mais recentes primeiro.
func (p *Postgres) ListActive(ctx context.Context) ([]game.Session, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+sessionCols+` FROM game_sessions
		 WHERE status=$1 AND NOT deleted
		 ORDER BY created_at DESC`, game.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Session
	for rows.Next() {
		s, err := p.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update altera os campos editáveis de uma sessão ainda não encerrada.
func (p *Postgres) Update(ctx context.Context, s game.Session) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE game_sessions
		SET name=$1, open_at=$2, close_at=$3, result_at=$4, status=$5, rate_single=$6, rate_jodi=$7
		WHERE id=$8 AND NOT deleted AND status <> $9`,
		s.Name, s.OpenAt, s.CloseAt, s.ResultAt, s.Status, s.RateSingle, s.RateJodi, s.ID, game.StatusClosed)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return game.ErrNotFound
	}
	return nil
}

// SoftDelete marca a sessão como removida; as apostas existentes ficam.
func (p *Postgres) SoftDelete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE game_sessions SET deleted=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return game.ErrNotFound
	}
	return nil
}

// Close encerra a sessão depois que os dois slots foram declarados.
// Transição terminal: uma sessão encerrada não reabre.
func (p *Postgres) Close(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE game_sessions SET status=$1 WHERE id=$2 AND status <> $1`,
		game.StatusClosed, id)
	return err
}

// LastResults lista os últimos resultados publicados da sessão.
func (p *Postgres) LastResults(ctx context.Context, sessionID string, limit int) ([]game.LastResult, error) {
	if limit <= 0 || limit > 30 {
		limit = 5
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT to_char(result_date, 'YYYY-MM-DD'), open_result, close_result
		FROM results
		WHERE session_id=$1 AND status='published'
		ORDER BY result_date DESC LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.LastResult
	for rows.Next() {
		var lr game.LastResult
		var openRes, closeRes sql.NullInt64
		if err := rows.Scan(&lr.Date, &openRes, &closeRes); err != nil {
			return nil, err
		}
		if openRes.Valid {
			v := int(openRes.Int64)
			lr.OpenResult = &v
		}
		if closeRes.Valid {
			v := int(closeRes.Int64)
			lr.CloseResult = &v
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func (p *Postgres) scanOne(row rowScanner) (game.Session, error) {
	var s game.Session
	err := row.Scan(&s.ID, &s.Name, &s.OpenAt, &s.CloseAt, &s.ResultAt,
		&s.Status, &s.GameType, &s.RateSingle, &s.RateJodi, &s.Deleted, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return game.Session{}, game.ErrNotFound
	}
	return s, err
}
