package events

import "time"

// Emitido pelo spinner-service quando uma rodada é encerrada e liquidada.
type SpinnerRoundClosed struct {
	RoundID          string    `json:"round_id"`
	ResultNumber     int       `json:"result_number"`
	Plays            int       `json:"plays"`
	Winners          int       `json:"winners"`
	TotalPayoutCents int64     `json:"total_payout_cents"`
	NextRoundID      string    `json:"next_round_id,omitempty"`
	Ts               time.Time `json:"ts"`
}
