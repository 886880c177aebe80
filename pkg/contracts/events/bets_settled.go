package events

import "time"

// Resumo de uma liquidação, emitido pelo settlement-worker após
// percorrer todas as apostas pendentes de um slot.
type BetsSettled struct {
	SessionID        string    `json:"session_id"`
	Slot             string    `json:"slot"`
	ResultDate       string    `json:"result_date"`
	Settled          int       `json:"settled"`
	Winners          int       `json:"winners"`
	Losers           int       `json:"losers"`
	Skipped          int       `json:"skipped"` // registros com falha, pulados
	TotalPayoutCents int64     `json:"total_payout_cents"`
	Ts               time.Time `json:"ts"`
}
