package repo

import (
	"database/sql"
	"time"
)

// HouseUserID é a conta reservada que acumula os ganhos do admin.
// Modelada como uma carteira comum para que toda mutação siga a mesma
// disciplina atômica das carteiras de usuário.
const HouseUserID = "house"

// Tipos de transação do ledger.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxBet        = "bet"
	TxWin        = "win"
	TxReferral   = "referral"
	TxCommission = "commission"
)

// Status de transação.
const (
	StatusPending      = "pending"
	StatusAdminPending = "admin_pending"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
	StatusCancelled    = "cancelled"
)

// Wallet é a carteira persistida no Postgres.
type Wallet struct {
	ID                 string
	UserID             string
	BalanceCents       int64
	TotalDepositsCents int64
	TotalWinningsCents int64
	ReferredBy         sql.NullString
	Version            int64
}

// Transaction é um lançamento imutável do ledger. Toda mutação de saldo
// gera exatamente um lançamento correspondente.
type Transaction struct {
	ID            string
	UserID        string
	Type          string
	AmountCents   int64
	Status        string
	PaymentMethod string
	Destination   string
	Description   string
	OrderID       sql.NullString
	AdminNotes    sql.NullString
	ProcessedAt   sql.NullTime
	CreatedAt     time.Time
}

// DepositReceipt resume um depósito confirmado pelo provedor.
type DepositReceipt struct {
	TransactionID string
	UserID        string
	AmountCents   int64
	NewBalance    int64
	FirstDeposit  bool
	ReferrerID    string // vazio quando não houve bônus de indicação
}
