package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"peerrent-backend/internal/repository"

	_ "github.com/lib/pq"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same repository
// code serves pooled queries and transactional units of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db    *sql.DB
	repos *repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepositories(db),
	}
}

func newRepositories(q Querier) *repository.Repositories {
	return &repository.Repositories{
		Accounts:      NewAccountRepository(q),
		Items:         NewItemRepository(q),
		Bookings:      NewBookingRepository(q),
		Ledger:        NewLedgerRepository(q),
		Extensions:    NewExtensionRepository(q),
		Returns:       NewReturnRequestRepository(q),
		Disputes:      NewDisputeRepository(q),
		ItemLogs:      NewItemLogRepository(q),
		Notifications: NewNotificationRepository(q),
	}
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// RunInTx executes fn with repositories bound to a single database
// transaction. A partial apply (balance moved but no settlement record, or a
// status flip without its item-log entry) cannot be observed: either every
// write in fn commits or none does.
func (s *Store) RunInTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
