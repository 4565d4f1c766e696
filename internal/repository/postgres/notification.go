package postgres

import (
	"context"
	"encoding/json"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type notificationRepository struct {
	q Querier
}

func NewNotificationRepository(q Querier) repository.NotificationRepository {
	return &notificationRepository{q: q}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	attrs, err := json.Marshal(note.Attributes)
	if err != nil {
		return err
	}
	query := `INSERT INTO notifications (account_id, type, title, content, reference_type, reference_id, is_read, attributes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8) RETURNING id`
	note.CreatedOn = time.Now()
	return r.q.QueryRowContext(ctx, query, note.AccountID, note.Type, note.Title, note.Content,
		note.ReferenceType, note.ReferenceID, attrs, note.CreatedOn).Scan(&note.ID)
}

func (r *notificationRepository) List(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	if err := r.q.QueryRowContext(ctx, "SELECT count(*) FROM notifications WHERE account_id = $1", accountID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, account_id, type, title, content, reference_type, reference_id, is_read, attributes, created_on
	          FROM notifications WHERE account_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var note domain.Notification
		var attrs []byte
		if err := rows.Scan(&note.ID, &note.AccountID, &note.Type, &note.Title, &note.Content,
			&note.ReferenceType, &note.ReferenceID, &note.IsRead, &attrs, &note.CreatedOn); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(attrs, &note.Attributes); err != nil {
			return nil, 0, err
		}
		notes = append(notes, note)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, accountID int32) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND account_id = $2`
	res, err := r.q.ExecContext(ctx, query, id, accountID)
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
