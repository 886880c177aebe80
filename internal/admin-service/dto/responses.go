package dto

import "time"

type SessionResponse struct {
	SessionID  string    `json:"sessionId"`
	Name       string    `json:"name"`
	OpenAt     time.Time `json:"open_at"`
	CloseAt    time.Time `json:"close_at"`
	ResultAt   time.Time `json:"result_at"`
	Status     string    `json:"status"`
	GameType   string    `json:"game_type"`
	RateSingle int64     `json:"rate_single"`
	RateJodi   int64     `json:"rate_jodi"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
}

type DeclareResultResponse struct {
	ResultID    string `json:"resultId"`
	SessionID   string `json:"sessionId"`
	Slot        string `json:"session"`
	Number      int    `json:"number"`
	ResultDate  string `json:"result_date"`
	Status      string `json:"status"` // draft | published
	OpenResult  *int   `json:"open_result,omitempty"`
	CloseResult *int   `json:"close_result,omitempty"`
}

type WithdrawalItem struct {
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	AmountCents   int64     `json:"amount_cents"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Destination   string    `json:"destination"`
	AdminNotes    string    `json:"admin_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type AddPointsResponse struct {
	UserID       string `json:"userId"`
	BalanceCents int64  `json:"balance_cents"`
}

// EarningsResponse é o resumo financeiro da casa: total apostado desde o
// início e o saldo corrente da conta da casa (stakes menos prêmios pagos).
type EarningsResponse struct {
	TotalStakedCents  int64 `json:"total_staked_cents"`
	HouseBalanceCents int64 `json:"house_balance_cents"`
}

type LastResultItem struct {
	Date        string `json:"date"`
	OpenResult  *int   `json:"open_result,omitempty"`
	CloseResult *int   `json:"close_result,omitempty"`
}
