package dto

import "time"

type PlaceBetResponse struct {
	BetID            string `json:"betId"`
	Number           int    `json:"number"`
	EntryAmountCents int64  `json:"entry_amount_cents"` // acumulado da entry
	BalanceCents     int64  `json:"balance_cents"`      // saldo restante
	Status           string `json:"status"`             // pending
}

type BetEntryItem struct {
	Number      int   `json:"number"`
	AmountCents int64 `json:"amount_cents"`
}

type SessionItem struct {
	SessionID  string    `json:"sessionId"`
	Name       string    `json:"name"`
	OpenAt     time.Time `json:"open_at"`
	CloseAt    time.Time `json:"close_at"`
	ResultAt   time.Time `json:"result_at"`
	GameType   string    `json:"game_type"`
	RateSingle int64     `json:"rate_single"`
	RateJodi   int64     `json:"rate_jodi"`
}

type LastResultItem struct {
	Date        string `json:"date"`
	OpenResult  *int   `json:"open_result,omitempty"`
	CloseResult *int   `json:"close_result,omitempty"`
}

type BetResponse struct {
	BetID              string         `json:"betId"`
	SessionID          string         `json:"sessionId"`
	Slot               string         `json:"session"`
	BetType            string         `json:"bet_type"`
	Status             string         `json:"status"`
	WinningAmountCents int64          `json:"winning_amount_cents"`
	ResultNumber       *int           `json:"result_number,omitempty"`
	Entries            []BetEntryItem `json:"entries"`
	TotalStakedCents   int64          `json:"total_staked_cents"`
	CreatedAt          time.Time      `json:"created_at"`
}
