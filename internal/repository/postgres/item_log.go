package postgres

import (
	"context"
	"encoding/json"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type itemLogRepository struct {
	q Querier
}

func NewItemLogRepository(q Querier) repository.ItemLogRepository {
	return &itemLogRepository{q: q}
}

func (r *itemLogRepository) Append(ctx context.Context, log *domain.ItemLog) error {
	evidence, err := marshalEvidence(log.Evidence)
	if err != nil {
		return err
	}
	query := `INSERT INTO item_logs (item_id, account_id, action, previous_status, current_status, note, evidence, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.q.QueryRowContext(ctx, query, log.ItemID, log.AccountID, log.Action, log.PreviousStatus,
		log.CurrentStatus, log.Note, evidence, time.Now()).Scan(&log.ID)
}

func (r *itemLogRepository) ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.ItemLog, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.q.QueryRowContext(ctx, "SELECT count(*) FROM item_logs WHERE item_id = $1", itemID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, item_id, account_id, action, previous_status, current_status, note, evidence, created_on
	          FROM item_logs WHERE item_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, itemID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []domain.ItemLog
	for rows.Next() {
		var log domain.ItemLog
		var evidence []byte
		if err := rows.Scan(&log.ID, &log.ItemID, &log.AccountID, &log.Action, &log.PreviousStatus,
			&log.CurrentStatus, &log.Note, &evidence, &log.CreatedOn); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(evidence, &log.Evidence); err != nil {
			return nil, 0, err
		}
		logs = append(logs, log)
	}
	return logs, count, rows.Err()
}
