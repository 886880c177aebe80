package repo

import (
	"errors"
	"time"
)

// Status de rodada do spinner.
const (
	RoundOpen      = "open"
	RoundCompleted = "completed"
)

// Status de jogada.
const (
	PlayPending = "pending"
	PlayWon     = "won"
	PlayLost    = "lost"
)

var (
	ErrRoundClosed     = errors.New("round is closed for plays")
	ErrAlreadyPlayed   = errors.New("user already played this round")
	ErrAlreadyDeclared = errors.New("round result already declared")
	ErrNoOpenRound     = errors.New("no open round")
)

// Round é uma rodada do jogo rápido: abre, aceita uma jogada por usuário e
// encerra na hora do resultado.
type Round struct {
	ID              string
	Name            string
	IntervalMinutes int
	ResultAt        time.Time
	ResultNumber    *int
	Multiplier      int64
	Status          string
	CreatedAt       time.Time
}

// Play é a jogada de um usuário em uma rodada.
type Play struct {
	ID                 string
	RoundID            string
	UserID             string
	Number             int
	AmountCents        int64
	Status             string
	WinningAmountCents int64
	ResultNumber       *int
	CreatedAt          time.Time
}

// PlayReceipt é o retorno de uma jogada aceita.
type PlayReceipt struct {
	PlayID          string
	RoundID         string
	NewBalanceCents int64
}

// CloseSummary resume a liquidação de uma rodada.
type CloseSummary struct {
	Round            Round
	NextRound        Round
	Plays            int
	Winners          int
	Skipped          int
	TotalPayoutCents int64
}
