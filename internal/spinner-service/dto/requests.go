package dto

type CreateRoundRequest struct {
	Name            string `json:"name"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type PlayRequest struct {
	UserID      string `json:"userId"`
	RoundID     string `json:"roundId,omitempty"` // vazio = rodada aberta atual
	Number      int    `json:"number"`            // 0..9
	AmountCents int64  `json:"amount_cents"`
}

type DeclareRequest struct {
	RoundID string `json:"roundId"`
	Number  int    `json:"number"` // 0..9
}
