package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type accountRepository struct {
	q Querier
}

func NewAccountRepository(q Querier) repository.AccountRepository {
	return &accountRepository{q: q}
}

func (r *accountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	a := &domain.Account{}
	query := `SELECT id, name, email, coin_balance_cents, trust_score, status, role, is_escrow, created_on, updated_on
	          FROM accounts WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Email, &a.CoinBalanceCents, &a.TrustScore, &a.Status, &a.Role, &a.IsEscrow, &a.CreatedOn, &a.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DebitBalance uses a guarded update so two concurrent debits cannot drive
// the balance negative. Zero rows means the guard failed.
func (r *accountRepository) DebitBalance(ctx context.Context, id, amountCents int32) error {
	query := `UPDATE accounts SET coin_balance_cents = coin_balance_cents - $1, updated_on = $2
	          WHERE id = $3 AND coin_balance_cents >= $1`
	res, err := r.q.ExecContext(ctx, query, amountCents, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *accountRepository) CreditBalance(ctx context.Context, id, amountCents int32) error {
	query := `UPDATE accounts SET coin_balance_cents = coin_balance_cents + $1, updated_on = $2 WHERE id = $3`
	res, err := r.q.ExecContext(ctx, query, amountCents, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) UpdateTrust(ctx context.Context, id, trustScore int32) error {
	query := `UPDATE accounts SET trust_score = $1, updated_on = $2 WHERE id = $3`
	_, err := r.q.ExecContext(ctx, query, trustScore, time.Now(), id)
	return err
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id int32, status domain.AccountStatus) error {
	query := `UPDATE accounts SET status = $1, updated_on = $2 WHERE id = $3`
	_, err := r.q.ExecContext(ctx, query, status, time.Now(), id)
	return err
}
