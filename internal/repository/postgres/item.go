package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type itemRepository struct {
	q Querier
}

func NewItemRepository(q Querier) repository.ItemRepository {
	return &itemRepository{q: q}
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	query := `SELECT id, owner_id, name, description, quantity, price_per_day_cents, deposit_amount_cents, status, created_on, updated_on
	          FROM items WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Quantity, &it.PricePerDayCents, &it.DepositAmountCents, &it.Status, &it.CreatedOn, &it.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// DecrementQuantity is the checkout guard: racing checkouts against the same
// item serialize on this row and cannot over-allocate.
func (r *itemRepository) DecrementQuantity(ctx context.Context, id, qty int32) (int32, error) {
	var remaining int32
	query := `UPDATE items SET quantity = quantity - $1, updated_on = $2
	          WHERE id = $3 AND quantity >= $1
	          RETURNING quantity`
	err := r.q.QueryRowContext(ctx, query, qty, time.Now(), id).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrInvalidStateTransition
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *itemRepository) IncrementQuantity(ctx context.Context, id, qty int32) error {
	query := `UPDATE items SET quantity = quantity + $1, updated_on = $2 WHERE id = $3`
	_, err := r.q.ExecContext(ctx, query, qty, time.Now(), id)
	return err
}

func (r *itemRepository) UpdateStatus(ctx context.Context, id int32, status domain.ItemStatus) error {
	query := `UPDATE items SET status = $1, updated_on = $2 WHERE id = $3`
	res, err := r.q.ExecContext(ctx, query, status, time.Now(), id)
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
