package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
)

// Querier abstracts pgxpool.Pool / pgx.Tx / pgxmock so repositories can run
// against any of them.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NotificationRepository is the local ledger of rental notifications: rows
// wait here as pending_api until transmitted to KABIS (or a human submits them
// manually), then track submitted/cancelled state.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.RentalNotification) (*domain.RentalNotification, error)
	GetByID(ctx context.Context, id string) (*domain.RentalNotification, error)
	UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus, providerRef *string, cancelReason *string) error
	ListByStatus(ctx context.Context, status domain.NotificationStatus, limit int) ([]*domain.RentalNotification, error)
}
