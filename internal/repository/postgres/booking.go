package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type bookingRepository struct {
	q Querier
}

func NewBookingRepository(q Querier) repository.BookingRepository {
	return &bookingRepository{q: q}
}

const bookingColumns = `id, lessee_id, lessor_id, item_id, quantity, price_per_day_cents, deposit_amount_cents,
	start_date, end_date, status, status_changed_on, created_on, updated_on`

func scanBooking(row interface{ Scan(...any) error }, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.LesseeID, &b.LessorID, &b.ItemID, &b.Quantity, &b.PricePerDayCents, &b.DepositAmountCents,
		&b.StartDate, &b.EndDate, &b.Status, &b.StatusChangedOn, &b.CreatedOn, &b.UpdatedOn)
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (lessee_id, lessor_id, item_id, quantity, price_per_day_cents, deposit_amount_cents,
	              start_date, end_date, status, status_changed_on, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, b.LesseeID, b.LessorID, b.ItemID, b.Quantity, b.PricePerDayCents,
		b.DepositAmountCents, b.StartDate, b.EndDate, b.Status, now, now, now).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	b := &domain.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	err := scanBooking(r.q.QueryRowContext(ctx, query, id), b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateStatus conditions the write on the expected current status, so a
// concurrent command or sweep that already advanced the booking makes this
// one fail instead of silently overwriting.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, status_changed_on = $2, updated_on = $2
	          WHERE id = $3 AND status = $4`
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

func (r *bookingRepository) UpdateEndDate(ctx context.Context, id int32, endDate time.Time) error {
	query := `UPDATE bookings SET end_date = $1, updated_on = $2 WHERE id = $3`
	res, err := r.q.ExecContext(ctx, query, endDate, time.Now(), id)
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

func (r *bookingRepository) ListByLessee(ctx context.Context, lesseeID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "lessee_id", lesseeID, status, page, pageSize)
}

func (r *bookingRepository) ListByLessor(ctx context.Context, lessorID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "lessor_id", lessorID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, column string, id int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`

	args := []interface{}{id}
	argIdx := 2
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.q.QueryRowContext(ctx, "SELECT count(*) FROM bookings WHERE status = $1", status).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, status, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListDue(ctx context.Context, status domain.BookingStatus, endBefore time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND end_date <= $2`
	return r.listAll(ctx, query, status, endBefore)
}

func (r *bookingRepository) ListStatusAgedBefore(ctx context.Context, status domain.BookingStatus, changedBefore time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND status_changed_on <= $2`
	return r.listAll(ctx, query, status, changedBefore)
}

func (r *bookingRepository) listAll(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
