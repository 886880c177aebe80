package dto

import "time"

type WalletResponse struct {
	UserID             string `json:"userId"`
	WalletID           string `json:"walletId"`
	BalanceCents       int64  `json:"balance_cents"`
	TotalDepositsCents int64  `json:"total_deposits_cents"`
	TotalWinningsCents int64  `json:"total_winnings_cents"`
}

type DepositOrderResponse struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	KeyID         string `json:"key_id"` // chave pública do provedor, usada pelo front
}

type DepositVerifyResponse struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	BalanceCents  int64  `json:"balance_cents"`
	FirstDeposit  bool   `json:"first_deposit"`
}

type WithdrawResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"` // admin_pending
	AmountCents   int64  `json:"amount_cents"`
}

type TransactionItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
