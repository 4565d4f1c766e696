package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type returnRequestRepository struct {
	q Querier
}

func NewReturnRequestRepository(q Querier) repository.ReturnRequestRepository {
	return &returnRequestRepository{q: q}
}

const returnRequestColumns = `id, booking_id, reason, detail, evidence, packing_evidence, lessor_confirmed_on, refund_amount_cents, status, created_on, updated_on`

func marshalEvidence(ev []domain.Evidence) ([]byte, error) {
	if ev == nil {
		ev = []domain.Evidence{}
	}
	return json.Marshal(ev)
}

func scanReturnRequest(row interface{ Scan(...any) error }, req *domain.ReturnRequest) error {
	var evidence, packing []byte
	if err := row.Scan(&req.ID, &req.BookingID, &req.Reason, &req.Detail, &evidence, &packing,
		&req.LessorConfirmedOn, &req.RefundAmountCents, &req.Status, &req.CreatedOn, &req.UpdatedOn); err != nil {
		return err
	}
	if err := json.Unmarshal(evidence, &req.Evidence); err != nil {
		return err
	}
	return json.Unmarshal(packing, &req.PackingEvidence)
}

func (r *returnRequestRepository) Create(ctx context.Context, req *domain.ReturnRequest) error {
	evidence, err := marshalEvidence(req.Evidence)
	if err != nil {
		return err
	}
	packing, err := marshalEvidence(req.PackingEvidence)
	if err != nil {
		return err
	}
	query := `INSERT INTO return_requests (booking_id, reason, detail, evidence, packing_evidence, refund_amount_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, req.BookingID, req.Reason, req.Detail, evidence, packing,
		req.RefundAmountCents, req.Status, now, now).Scan(&req.ID)
}

func (r *returnRequestRepository) GetByID(ctx context.Context, id int32) (*domain.ReturnRequest, error) {
	req := &domain.ReturnRequest{}
	query := `SELECT ` + returnRequestColumns + ` FROM return_requests WHERE id = $1`
	err := scanReturnRequest(r.q.QueryRowContext(ctx, query, id), req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *returnRequestRepository) GetOpenByBooking(ctx context.Context, bookingID int32) (*domain.ReturnRequest, error) {
	req := &domain.ReturnRequest{}
	query := `SELECT ` + returnRequestColumns + ` FROM return_requests WHERE booking_id = $1 AND status = 'PROCESSING'`
	err := scanReturnRequest(r.q.QueryRowContext(ctx, query, bookingID), req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *returnRequestRepository) GetByBookingAndStatus(ctx context.Context, bookingID int32, status domain.ReturnRequestStatus) (*domain.ReturnRequest, error) {
	req := &domain.ReturnRequest{}
	query := `SELECT ` + returnRequestColumns + ` FROM return_requests WHERE booking_id = $1 AND status = $2 ORDER BY id DESC LIMIT 1`
	err := scanReturnRequest(r.q.QueryRowContext(ctx, query, bookingID, status), req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *returnRequestRepository) Update(ctx context.Context, req *domain.ReturnRequest) error {
	evidence, err := marshalEvidence(req.Evidence)
	if err != nil {
		return err
	}
	packing, err := marshalEvidence(req.PackingEvidence)
	if err != nil {
		return err
	}
	query := `UPDATE return_requests SET evidence = $1, packing_evidence = $2, lessor_confirmed_on = $3,
	              refund_amount_cents = $4, status = $5, updated_on = $6
	          WHERE id = $7`
	_, err = r.q.ExecContext(ctx, query, evidence, packing, req.LessorConfirmedOn,
		req.RefundAmountCents, req.Status, time.Now(), req.ID)
	return err
}

func (r *returnRequestRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ReturnRequestStatus) error {
	query := `UPDATE return_requests SET status = $1, updated_on = $2 WHERE id = $3 AND status = $4`
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

func (r *returnRequestRepository) ListProcessingAgedBefore(ctx context.Context, createdBefore time.Time) ([]domain.ReturnRequest, error) {
	query := `SELECT ` + returnRequestColumns + ` FROM return_requests WHERE status = 'PROCESSING' AND created_on <= $1`
	rows, err := r.q.QueryContext(ctx, query, createdBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ReturnRequest
	for rows.Next() {
		var req domain.ReturnRequest
		if err := scanReturnRequest(rows, &req); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
