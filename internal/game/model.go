package game

import (
	"errors"
	"time"
)

// Status de uma sessão de jogo.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusClosed   = "closed"
)

// Tipos de jogo.
const (
	TypeRegular = "regular"
	TypeHard    = "hard"
)

// Slots de uma sessão (metades open/close do dia).
const (
	SlotOpen  = "open"
	SlotClose = "close"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrNotOpenYet    = errors.New("betting not open yet")
	ErrBettingClosed = errors.New("betting closed for this session")
)

// Session é uma janela de apostas: abre em OpenAt, fecha em CloseAt e tem
// resultado previsto para ResultAt. Timestamps completos (timestamptz), não
// strings "HH:MM" — a comparação de janela é feita em time.Time normalizado,
// nunca comparando hora local com data UTC.
type Session struct {
	ID         string
	Name       string
	OpenAt     time.Time
	CloseAt    time.Time
	ResultAt   time.Time
	Status     string
	GameType   string
	RateSingle int64
	RateJodi   int64
	Deleted    bool
	CreatedAt  time.Time
}

// AcceptsBets valida a janela de apostas. Limites inclusivos:
// [OpenAt, CloseAt]. Sessão inativa, encerrada ou removida nunca aceita.
func (s Session) AcceptsBets(now time.Time) error {
	if s.Deleted || s.Status != StatusActive {
		return ErrBettingClosed
	}
	if now.Before(s.OpenAt) {
		return ErrNotOpenYet
	}
	if now.After(s.CloseAt) {
		return ErrBettingClosed
	}
	return nil
}

// ValidSlot diz se o slot informado existe.
func ValidSlot(slot string) bool {
	return slot == SlotOpen || slot == SlotClose
}

// LastResult é um resultado já declarado, exposto no histórico da sessão.
type LastResult struct {
	Date        string `json:"date"` // "2006-01-02"
	OpenResult  *int   `json:"open_result,omitempty"`
	CloseResult *int   `json:"close_result,omitempty"`
}
