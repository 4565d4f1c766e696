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

type disputeRepository struct {
	q Querier
}

func NewDisputeRepository(q Querier) repository.DisputeRepository {
	return &disputeRepository{q: q}
}

const disputeColumns = `id, booking_id, reporter_id, defender_id, damage_type_id, detail, evidence,
	compensation_amount_cents, status, admin_decision, resolved_on, created_on, updated_on`

func scanDispute(row interface{ Scan(...any) error }, d *domain.Dispute) error {
	var evidence []byte
	var decision sql.NullString
	if err := row.Scan(&d.ID, &d.BookingID, &d.ReporterID, &d.DefenderID, &d.DamageTypeID, &d.Detail, &evidence,
		&d.CompensationAmountCents, &d.Status, &decision, &d.ResolvedOn, &d.CreatedOn, &d.UpdatedOn); err != nil {
		return err
	}
	if decision.Valid {
		d.AdminDecision = domain.AdminDecision(decision.String)
	}
	return json.Unmarshal(evidence, &d.Evidence)
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	evidence, err := marshalEvidence(d.Evidence)
	if err != nil {
		return err
	}
	query := `INSERT INTO disputes (booking_id, reporter_id, defender_id, damage_type_id, detail, evidence,
	              compensation_amount_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, d.BookingID, d.ReporterID, d.DefenderID, d.DamageTypeID, d.Detail,
		evidence, d.CompensationAmountCents, d.Status, now, now).Scan(&d.ID)
}

func (r *disputeRepository) GetByID(ctx context.Context, id int32) (*domain.Dispute, error) {
	d := &domain.Dispute{}
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	err := scanDispute(r.q.QueryRowContext(ctx, query, id), d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *disputeRepository) Update(ctx context.Context, d *domain.Dispute) error {
	query := `UPDATE disputes SET compensation_amount_cents = $1, status = $2, admin_decision = $3,
	              resolved_on = $4, updated_on = $5
	          WHERE id = $6`
	var decision any
	if d.AdminDecision != "" {
		decision = string(d.AdminDecision)
	}
	_, err := r.q.ExecContext(ctx, query, d.CompensationAmountCents, d.Status, decision, d.ResolvedOn, time.Now(), d.ID)
	return err
}

func (r *disputeRepository) ListPending(ctx context.Context, page, pageSize int32) ([]domain.Dispute, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.q.QueryRowContext(ctx, "SELECT count(*) FROM disputes WHERE status = 'PENDING_REVIEW'").Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE status = 'PENDING_REVIEW' ORDER BY created_on LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var disputes []domain.Dispute
	for rows.Next() {
		var d domain.Dispute
		if err := scanDispute(rows, &d); err != nil {
			return nil, 0, err
		}
		disputes = append(disputes, d)
	}
	return disputes, count, rows.Err()
}

func (r *disputeRepository) GetDamageType(ctx context.Context, id int32) (*domain.DamageType, error) {
	dt := &domain.DamageType{}
	query := `SELECT id, name, compensation_rate_bps FROM damage_types WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&dt.ID, &dt.Name, &dt.CompensationRateBps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dt, nil
}
