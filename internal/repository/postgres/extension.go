package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type extensionRepository struct {
	q Querier
}

func NewExtensionRepository(q Querier) repository.ExtensionRepository {
	return &extensionRepository{q: q}
}

const extensionColumns = `id, booking_id, additional_days, additional_fee_cents, status, created_on, updated_on`

func scanExtension(row interface{ Scan(...any) error }, e *domain.ExtensionRequest) error {
	return row.Scan(&e.ID, &e.BookingID, &e.AdditionalDays, &e.AdditionalFeeCents, &e.Status, &e.CreatedOn, &e.UpdatedOn)
}

func (r *extensionRepository) Create(ctx context.Context, req *domain.ExtensionRequest) error {
	query := `INSERT INTO extension_requests (booking_id, additional_days, additional_fee_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, req.BookingID, req.AdditionalDays, req.AdditionalFeeCents, req.Status, now, now).Scan(&req.ID)
}

func (r *extensionRepository) GetByID(ctx context.Context, id int32) (*domain.ExtensionRequest, error) {
	e := &domain.ExtensionRequest{}
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE id = $1`
	err := scanExtension(r.q.QueryRowContext(ctx, query, id), e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *extensionRepository) GetPendingByBooking(ctx context.Context, bookingID int32) (*domain.ExtensionRequest, error) {
	e := &domain.ExtensionRequest{}
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE booking_id = $1 AND status = 'PENDING'`
	err := scanExtension(r.q.QueryRowContext(ctx, query, bookingID), e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *extensionRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ExtensionStatus) error {
	query := `UPDATE extension_requests SET status = $1, updated_on = $2 WHERE id = $3 AND status = $4`
	res, err := r.q.ExecContext(ctx, query, to, time.Now(), id, from)
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

func (r *extensionRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.ExtensionRequest, error) {
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE booking_id = $1 ORDER BY created_on DESC`
	return r.listAll(ctx, query, bookingID)
}

func (r *extensionRepository) ListPendingAgedBefore(ctx context.Context, createdBefore time.Time) ([]domain.ExtensionRequest, error) {
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE status = 'PENDING' AND created_on <= $1`
	return r.listAll(ctx, query, createdBefore)
}

func (r *extensionRepository) listAll(ctx context.Context, query string, args ...any) ([]domain.ExtensionRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ExtensionRequest
	for rows.Next() {
		var e domain.ExtensionRequest
		if err := scanExtension(rows, &e); err != nil {
			return nil, err
		}
		reqs = append(reqs, e)
	}
	return reqs, rows.Err()
}
