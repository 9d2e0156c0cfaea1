package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
	"github.com/fleetease/golang_services/internal/integration_service/repository"
)

var ErrNotificationNotFound = errors.New("rental notification not found")

type pgNotificationRepository struct {
	db     repository.Querier
	logger *slog.Logger
}

// NewPgNotificationRepository creates a new instance for PostgreSQL.
func NewPgNotificationRepository(db repository.Querier, logger *slog.Logger) repository.NotificationRepository {
	return &pgNotificationRepository{db: db, logger: logger.With("repository", "rental_notifications")}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.RentalNotification) (*domain.RentalNotification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Status == "" {
		n.Status = domain.StatusPendingAPI
	}

	query := `
		INSERT INTO rental_notifications (
			id, provider_ref, vehicle_plate, customer_id_no, customer_name, customer_phone,
			rental_start, rental_end, pickup_location, dropoff_location,
			status, cancel_reason, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.ProviderRef, n.VehiclePlate, n.CustomerIDNo, n.CustomerName, n.CustomerPhone,
		n.RentalStart, n.RentalEnd, n.PickupLocation, n.DropoffLocation,
		n.Status, n.CancelReason, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.RentalNotification, error) {
	n := &domain.RentalNotification{}
	query := `
		SELECT id, provider_ref, vehicle_plate, customer_id_no, customer_name, customer_phone,
		       rental_start, rental_end, pickup_location, dropoff_location,
		       status, cancel_reason, created_at, updated_at
		FROM rental_notifications WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.ProviderRef, &n.VehiclePlate, &n.CustomerIDNo, &n.CustomerName, &n.CustomerPhone,
		&n.RentalStart, &n.RentalEnd, &n.PickupLocation, &n.DropoffLocation,
		&n.Status, &n.CancelReason, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *pgNotificationRepository) UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus, providerRef *string, cancelReason *string) error {
	query := `
		UPDATE rental_notifications
		SET status = $2,
		    provider_ref = COALESCE($3, provider_ref),
		    cancel_reason = COALESCE($4, cancel_reason),
		    updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, status, providerRef, cancelReason, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *pgNotificationRepository) ListByStatus(ctx context.Context, status domain.NotificationStatus, limit int) ([]*domain.RentalNotification, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, provider_ref, vehicle_plate, customer_id_no, customer_name, customer_phone,
		       rental_start, rental_end, pickup_location, dropoff_location,
		       status, cancel_reason, created_at, updated_at
		FROM rental_notifications
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.RentalNotification
	for rows.Next() {
		n := &domain.RentalNotification{}
		if err := rows.Scan(
			&n.ID, &n.ProviderRef, &n.VehiclePlate, &n.CustomerIDNo, &n.CustomerName, &n.CustomerPhone,
			&n.RentalStart, &n.RentalEnd, &n.PickupLocation, &n.DropoffLocation,
			&n.Status, &n.CancelReason, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
