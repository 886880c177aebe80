package dto

type DepositOrderRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
}

type DepositVerifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type WithdrawRequest struct {
	UserID        string `json:"userId"`
	AmountCents   int64  `json:"amount_cents"`
	PaymentMethod string `json:"payment_method"` // "paytm" | "googlepay" | "upi" | "bank_transfer"
	Destination   string `json:"destination"`    // celular / UPI / conta
}
