package dto

import "time"

type RoundItem struct {
	RoundID      string    `json:"roundId"`
	Name         string    `json:"name"`
	ResultAt     time.Time `json:"result_at"`
	ResultNumber *int      `json:"result_number,omitempty"`
	Multiplier   int64     `json:"multiplier"`
	Status       string    `json:"status"`
}

// GameDataResponse alimenta a tela do spinner: últimos resultados e a rodada
// em andamento.
type GameDataResponse struct {
	LastResults  []RoundItem `json:"last_results"`
	CurrentRound *RoundItem  `json:"current_round,omitempty"`
	NextResultAt *time.Time  `json:"next_result_at,omitempty"`
}

type PlayResponse struct {
	PlayID       string `json:"playId"`
	RoundID      string `json:"roundId"`
	BalanceCents int64  `json:"balance_cents"`
	Status       string `json:"status"`
}

type DeclareResponse struct {
	RoundID          string    `json:"roundId"`
	ResultNumber     int       `json:"result_number"`
	Plays            int       `json:"plays"`
	Winners          int       `json:"winners"`
	TotalPayoutCents int64     `json:"total_payout_cents"`
	NextRoundID      string    `json:"next_roundId"`
	NextResultAt     time.Time `json:"next_result_at"`
}

type PlayHistoryItem struct {
	PlayID             string    `json:"playId"`
	RoundID            string    `json:"roundId"`
	Number             int       `json:"number"`
	AmountCents        int64     `json:"amount_cents"`
	Status             string    `json:"status"`
	WinningAmountCents int64     `json:"winning_amount_cents"`
	ResultNumber       *int      `json:"result_number,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
