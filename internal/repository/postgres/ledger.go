package postgres

import (
	"context"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type ledgerRepository struct {
	q Querier
}

func NewLedgerRepository(q Querier) repository.LedgerRepository {
	return &ledgerRepository{q: q}
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error {
	query := `INSERT INTO ledger_transactions (reference, from_account_id, to_account_id, amount_cents, type, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.q.QueryRowContext(ctx, query, tx.Reference, tx.FromAccountID, tx.ToAccountID, tx.AmountCents,
		tx.Type, tx.Status, time.Now()).Scan(&tx.ID)
}

func (r *ledgerRepository) CreateSettlementLinks(ctx context.Context, transactionID int32, bookingIDs []int32) error {
	query := `INSERT INTO booking_settlement_links (transaction_id, booking_id) VALUES ($1, $2)`
	for _, bookingID := range bookingIDs {
		if _, err := r.q.ExecContext(ctx, query, transactionID, bookingID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ledgerRepository) UpdateTransactionStatus(ctx context.Context, id int32, status domain.TransactionStatus) error {
	// The only mutation a settlement record ever sees: the pending flip.
	query := `UPDATE ledger_transactions SET status = $1 WHERE id = $2 AND status = $3`
	res, err := r.q.ExecContext(ctx, query, status, id, domain.TransactionStatusPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, accountID int32, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM ledger_transactions WHERE from_account_id = $1 OR to_account_id = $1`
	if err := r.q.QueryRowContext(ctx, countQuery, accountID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, reference, from_account_id, to_account_id, amount_cents, type, status, created_on
	          FROM ledger_transactions WHERE from_account_id = $1 OR to_account_id = $1
	          ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, accountID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.LedgerTransaction
	for rows.Next() {
		var tx domain.LedgerTransaction
		if err := rows.Scan(&tx.ID, &tx.Reference, &tx.FromAccountID, &tx.ToAccountID, &tx.AmountCents, &tx.Type, &tx.Status, &tx.CreatedOn); err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}

func (r *ledgerRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.LedgerTransaction, error) {
	query := `SELECT t.id, t.reference, t.from_account_id, t.to_account_id, t.amount_cents, t.type, t.status, t.created_on
	          FROM ledger_transactions t
	          JOIN booking_settlement_links l ON l.transaction_id = t.id
	          WHERE l.booking_id = $1
	          ORDER BY t.created_on`
	rows, err := r.q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.LedgerTransaction
	for rows.Next() {
		var tx domain.LedgerTransaction
		if err := rows.Scan(&tx.ID, &tx.Reference, &tx.FromAccountID, &tx.ToAccountID, &tx.AmountCents, &tx.Type, &tx.Status, &tx.CreatedOn); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *ledgerRepository) GetSummary(ctx context.Context, accountID int32) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{
		StatusCount: make(map[string]int32),
	}

	err := r.q.QueryRowContext(ctx, "SELECT coin_balance_cents FROM accounts WHERE id = $1", accountID).Scan(&summary.BalanceCents)
	if err != nil {
		return nil, err
	}

	err = r.q.QueryRowContext(ctx, "SELECT count(*) FROM bookings WHERE lessee_id = $1 AND status = 'IN_USE'", accountID).Scan(&summary.ActiveBookingsCount)
	if err != nil {
		return nil, err
	}

	err = r.q.QueryRowContext(ctx, "SELECT count(*) FROM bookings WHERE lessor_id = $1 AND status = 'IN_USE'", accountID).Scan(&summary.ActiveLendingsCount)
	if err != nil {
		return nil, err
	}

	err = r.q.QueryRowContext(ctx, "SELECT count(*) FROM bookings WHERE (lessee_id = $1 OR lessor_id = $1) AND status = 'PENDING_CONFIRM'", accountID).Scan(&summary.PendingRequestsCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT status, count(*)
		FROM bookings
		WHERE lessee_id = $1 OR lessor_id = $1
		GROUP BY status`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.StatusCount[status] = count
	}

	return summary, rows.Err()
}

// EscrowHeldCents computes the float the escrow wallet should be holding:
// everything settled into escrow for bookings that have not yet terminated,
// minus what escrow already paid back out for them.
func (r *ledgerRepository) EscrowHeldCents(ctx context.Context, escrowAccountID int32) (int32, error) {
	var held int32
	query := `
		SELECT COALESCE(SUM(CASE WHEN t.to_account_id = $1 THEN t.amount_cents ELSE -t.amount_cents END), 0)
		FROM ledger_transactions t
		JOIN booking_settlement_links l ON l.transaction_id = t.id
		JOIN bookings b ON b.id = l.booking_id
		WHERE t.status = 'SUCCESS'
		  AND (t.to_account_id = $1 OR t.from_account_id = $1)
		  AND b.status NOT IN ('PAID_REJECTED', 'FORFEITED', 'COMPLETED', 'COMPENSATION_COMPLETED')`
	err := r.q.QueryRowContext(ctx, query, escrowAccountID).Scan(&held)
	return held, err
}
