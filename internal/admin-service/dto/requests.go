package dto

import "time"

type SessionRequest struct {
	Name       string    `json:"name"`
	OpenAt     time.Time `json:"open_at"`
	CloseAt    time.Time `json:"close_at"`
	ResultAt   time.Time `json:"result_at"`
	Status     string    `json:"status,omitempty"`
	GameType   string    `json:"game_type,omitempty"`
	RateSingle int64     `json:"rate_single,omitempty"`
	RateJodi   int64     `json:"rate_jodi,omitempty"`
}

type DeclareResultRequest struct {
	SessionID   string     `json:"sessionId"`
	Slot        string     `json:"session"` // "open" | "close"
	Number      int        `json:"number"`  // 0..9
	ResultDate  string     `json:"result_date,omitempty"`  // YYYY-MM-DD, default hoje
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"` // futuro = rascunho
}

type WithdrawalDecisionRequest struct {
	AdminNotes string `json:"admin_notes,omitempty"`
}

type AddPointsRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	Notes       string `json:"notes,omitempty"`
}
