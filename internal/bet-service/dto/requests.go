package dto

type PlaceBetRequest struct {
	UserID      string `json:"userId"`
	SessionID   string `json:"sessionId"`
	Slot        string `json:"session"`  // "open" | "close"
	BetType     string `json:"bet_type"` // "single" | "jodi"
	Number      int    `json:"number"`
	AmountCents int64  `json:"amount_cents"`
}
