package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Postgres implementa o ledger de carteiras em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyProcessed  = errors.New("already processed")
)

// GetOrCreateWallet retorna a carteira de um usuário, criando-a se não existir.
// referredBy só é gravado na criação; depois da primeira gravação é imutável.
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID, referredBy string) (Wallet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Wallet{}, err
	}
	defer tx.Rollback()

	w, err := getWalletTx(ctx, tx, userID, false)
	if err == sql.ErrNoRows {
		w = Wallet{ID: uuid.NewString(), UserID: userID, Version: 1}
		var ref any
		if referredBy != "" {
			ref = referredBy
			w.ReferredBy = sql.NullString{String: referredBy, Valid: true}
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, total_deposits_cents, total_winnings_cents, referred_by, version)
			 VALUES($1,$2,0,0,0,$3,1)`,
			w.ID, userID, ref); err != nil {
			return Wallet{}, err
		}
	} else if err != nil {
		return Wallet{}, err
	}

	if err = tx.Commit(); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// Debit subtrai saldo com checagem de piso na própria UPDATE: o saldo nunca
// fica negativo, mesmo com débitos concorrentes do mesmo usuário.
// Registra o lançamento correspondente na mesma transação.
func (p *Postgres) Debit(ctx context.Context, userID string, amount int64, txType, description string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err = DebitInTx(ctx, tx, userID, amount, txType, StatusCompleted, description)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Credit adiciona saldo e registra o lançamento. O tipo decide qual total
// acumulado acompanha o crédito (depósitos ou ganhos).
func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, txType, description string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err = CreditInTx(ctx, tx, userID, amount, txType, description)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// RequestWithdrawal segura os fundos do saque: debita o saldo já no pedido
// (com piso) e cria o lançamento em admin_pending. A aprovação não mexe mais
// no saldo; a rejeição estorna.
func (p *Postgres) RequestWithdrawal(ctx context.Context, userID string, amount int64, method, destination string) (txID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1
		 WHERE user_id=$2 AND balance_cents >= $1`, amount, userID)
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := getWalletTx(ctx, tx, userID, false); gerr == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", ErrInsufficientFunds
	}

	txID = uuid.NewString()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, type, amount_cents, status, payment_method, destination, description)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		txID, userID, TxWithdrawal, amount, StatusAdminPending, method, destination,
		fmt.Sprintf("Saque via %s", method)); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return txID, nil
}

// ApproveWithdrawal efetiva um saque pendente. Os fundos já foram retidos no
// pedido, então só o status muda. Idempotente via guarda de status na UPDATE.
func (p *Postgres) ApproveWithdrawal(ctx context.Context, txID, adminNotes string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE transactions SET status=$1, admin_notes=$2, processed_at=NOW()
		 WHERE id=$3 AND type=$4 AND status=$5`,
		StatusCompleted, adminNotes, txID, TxWithdrawal, StatusAdminPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RejectWithdrawal devolve o valor retido e marca o pedido como failed.
// Idempotente: um pedido já processado não é estornado de novo.
func (p *Postgres) RejectWithdrawal(ctx context.Context, txID, adminNotes string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID string
	var amount int64
	err = tx.QueryRowContext(ctx,
		`UPDATE transactions SET status=$1, admin_notes=$2, processed_at=NOW()
		 WHERE id=$3 AND type=$4 AND status=$5
		 RETURNING user_id, amount_cents`,
		StatusFailed, adminNotes, txID, TxWithdrawal, StatusAdminPending).Scan(&userID, &amount)
	if err == sql.ErrNoRows {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE user_id=$2`,
		amount, userID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, type, amount_cents, status, payment_method, description)
		 VALUES($1,$2,$3,$4,$5,'wallet',$6)`,
		uuid.NewString(), userID, TxWithdrawal, amount, StatusCancelled,
		"Estorno de saque rejeitado: "+txID); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateDepositOrder registra o depósito pendente amarrado ao orderId do
// provedor. O valor confirmado depois vem SEMPRE deste registro, nunca do
// cliente.
func (p *Postgres) CreateDepositOrder(ctx context.Context, userID string, amount int64, orderID string) (txID string, err error) {
	txID = uuid.NewString()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, type, amount_cents, status, payment_method, description, order_id)
		 VALUES($1,$2,$3,$4,$5,'razorpay',$6,$7)`,
		txID, userID, TxDeposit, amount, StatusPending, "Depósito via provedor de pagamento", orderID)
	if err != nil {
		return "", err
	}
	return txID, nil
}

// CompleteDeposit conclui um depósito verificado pelo provedor: reivindica o
// lançamento pendente (guarda de status impede processamento duplo), credita
// a carteira e, no primeiro depósito de um indicado, paga o bônus ao
// indicador — tudo em uma transação.
func (p *Postgres) CompleteDeposit(ctx context.Context, orderID string, referralBonus int64) (DepositReceipt, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return DepositReceipt{}, err
	}
	defer tx.Rollback()

	var rc DepositReceipt
	err = tx.QueryRowContext(ctx,
		`UPDATE transactions SET status=$1, processed_at=NOW()
		 WHERE order_id=$2 AND type=$3 AND status=$4
		 RETURNING id, user_id, amount_cents`,
		StatusCompleted, orderID, TxDeposit, StatusPending).Scan(&rc.TransactionID, &rc.UserID, &rc.AmountCents)
	if err == sql.ErrNoRows {
		// pode ser orderId desconhecido ou depósito já concluído
		var done int
		if qerr := tx.QueryRowContext(ctx,
			`SELECT 1 FROM transactions WHERE order_id=$1 AND type=$2`, orderID, TxDeposit).Scan(&done); qerr == sql.ErrNoRows {
			return DepositReceipt{}, ErrNotFound
		}
		return DepositReceipt{}, ErrAlreadyProcessed
	} else if err != nil {
		return DepositReceipt{}, err
	}

	w, err := getWalletTx(ctx, tx, rc.UserID, true)
	if err == sql.ErrNoRows {
		return DepositReceipt{}, ErrNotFound
	} else if err != nil {
		return DepositReceipt{}, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1,
		        total_deposits_cents = total_deposits_cents + $1,
		        version = version + 1
		 WHERE user_id=$2`, rc.AmountCents, rc.UserID); err != nil {
		return DepositReceipt{}, err
	}
	rc.NewBalance = w.BalanceCents + rc.AmountCents
	rc.FirstDeposit = w.TotalDepositsCents == 0

	// bônus de indicação só no primeiro depósito confirmado
	if rc.FirstDeposit && w.ReferredBy.Valid && referralBonus > 0 {
		if _, err = CreditInTx(ctx, tx, w.ReferredBy.String, referralBonus, TxReferral,
			"Bônus de indicação: primeiro depósito de "+rc.UserID); err != nil {
			return DepositReceipt{}, err
		}
		rc.ReferrerID = w.ReferredBy.String
	}

	if err = tx.Commit(); err != nil {
		return DepositReceipt{}, err
	}
	return rc, nil
}

// AdminCredit adiciona pontos manualmente (operação do admin), com o
// lançamento de depósito correspondente.
func (p *Postgres) AdminCredit(ctx context.Context, userID string, amount int64, notes string) (newBalance int64, err error) {
	desc := notes
	if desc == "" {
		desc = "Pontos adicionados pelo admin"
	}
	return p.Credit(ctx, userID, amount, TxDeposit, desc)
}

// HouseBalance retorna o saldo acumulado da conta house (ganhos do admin).
func (p *Postgres) HouseBalance(ctx context.Context) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE user_id=$1`, HouseUserID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return bal, err
}

// ListTransactions retorna o extrato de um usuário, mais recente primeiro.
func (p *Postgres) ListTransactions(ctx context.Context, userID, txType string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, type, amount_cents, status, payment_method, destination, description, order_id, admin_notes, processed_at, created_at
		 FROM transactions
		 WHERE user_id=$1 AND ($2='' OR type=$2)
		 ORDER BY created_at DESC LIMIT $3`, userID, txType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Status, &t.PaymentMethod,
			&t.Destination, &t.Description, &t.OrderID, &t.AdminNotes, &t.ProcessedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListWithdrawals lista pedidos de saque por status para a fila do admin.
func (p *Postgres) ListWithdrawals(ctx context.Context, status string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, type, amount_cents, status, payment_method, destination, description, order_id, admin_notes, processed_at, created_at
		 FROM transactions
		 WHERE type=$1 AND status=$2
		 ORDER BY created_at DESC LIMIT $3`, TxWithdrawal, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Status, &t.PaymentMethod,
			&t.Destination, &t.Description, &t.OrderID, &t.AdminNotes, &t.ProcessedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- primitivas compartilhadas (usadas também pelos repos de aposta e
// liquidação, dentro das transações deles) ---

// DebitInTx subtrai saldo dentro de uma transação já aberta. A guarda
// balance_cents >= amount na própria UPDATE torna o débito atômico: zero
// linhas afetadas significa saldo insuficiente.
func DebitInTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, txType, status, description string) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1
		 WHERE user_id=$2 AND balance_cents >= $1
		 RETURNING balance_cents`, amount, userID).Scan(&newBalance)
	if err == sql.ErrNoRows {
		if _, gerr := getWalletTx(ctx, tx, userID, false); gerr == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientFunds
	} else if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, type, amount_cents, status, payment_method, description)
		 VALUES($1,$2,$3,$4,$5,'wallet',$6)`,
		uuid.NewString(), userID, txType, amount, status, description); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// CreditInTx adiciona saldo dentro de uma transação já aberta, acumulando o
// total apropriado conforme o tipo do lançamento.
func CreditInTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, txType, description string) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	extra := ""
	switch txType {
	case TxWin:
		extra = ", total_winnings_cents = total_winnings_cents + $1"
	case TxDeposit:
		extra = ", total_deposits_cents = total_deposits_cents + $1"
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1`+extra+`
		 WHERE user_id=$2
		 RETURNING balance_cents`, amount, userID).Scan(&newBalance)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, type, amount_cents, status, payment_method, description)
		 VALUES($1,$2,$3,$4,$5,'wallet',$6)`,
		uuid.NewString(), userID, txType, amount, StatusCompleted, description); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// HouseAddInTx incrementa (delta > 0) ou decrementa (delta < 0) a conta
// house dentro de uma transação já aberta. Sem piso: numa rodada ruim os
// prêmios podem passar das apostas arrecadadas.
func HouseAddInTx(ctx context.Context, tx *sql.Tx, delta int64, description string) error {
	if delta == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallets(id, user_id, balance_cents, total_deposits_cents, total_winnings_cents, version)
		 VALUES($1,$2,$3,0,0,1)
		 ON CONFLICT (user_id) DO UPDATE
		 SET balance_cents = wallets.balance_cents + $3, version = wallets.version + 1`,
		uuid.NewString(), HouseUserID, delta); err != nil {
		return err
	}

	amount := delta
	if amount < 0 {
		amount = -amount
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, type, amount_cents, status, payment_method, description)
		 VALUES($1,$2,$3,$4,$5,'wallet',$6)`,
		uuid.NewString(), HouseUserID, TxCommission, amount, StatusCompleted, description)
	return err
}

// getWalletTx lê a carteira dentro da transação; forUpdate trava a linha.
func getWalletTx(ctx context.Context, tx *sql.Tx, userID string, forUpdate bool) (Wallet, error) {
	q := `SELECT id, user_id, balance_cents, total_deposits_cents, total_winnings_cents, referred_by, version
	      FROM wallets WHERE user_id=$1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var w Wallet
	err := tx.QueryRowContext(ctx, q, userID).Scan(
		&w.ID, &w.UserID, &w.BalanceCents, &w.TotalDepositsCents, &w.TotalWinningsCents, &w.ReferredBy, &w.Version)
	return w, err
}

// WalletOf retorna a carteira sem criar (usado por consultas).
func (p *Postgres) WalletOf(ctx context.Context, userID string) (Wallet, error) {
	var w Wallet
	err := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, balance_cents, total_deposits_cents, total_winnings_cents, referred_by, version
		 FROM wallets WHERE user_id=$1`, userID).Scan(
		&w.ID, &w.UserID, &w.BalanceCents, &w.TotalDepositsCents, &w.TotalWinningsCents, &w.ReferredBy, &w.Version)
	if err == sql.ErrNoRows {
		return Wallet{}, ErrNotFound
	}
	return w, err
}

// TotalStaked soma todas as apostas registradas no ledger (regular + spinner),
// usado no resumo de ganhos do admin.
func (p *Postgres) TotalStaked(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := p.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM transactions WHERE type=$1 AND status=$2`,
		TxBet, StatusCompleted).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
