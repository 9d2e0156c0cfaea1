package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPgNotificationRepository_Create(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgNotificationRepository(mockPool, testLogger())

	mockPool.ExpectExec(`INSERT INTO rental_notifications`).
		WithArgs(pgxmock.AnyArg(), "", "34 ABC 123", "12345678901", "Ayse Kaya", "+905551112233",
			"2025-03-01T09:00:00Z", "2025-03-08T09:00:00Z", "IST Airport", "IST Airport",
			domain.StatusPendingAPI, "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := repo.Create(context.Background(), &domain.RentalNotification{
		VehiclePlate:    "34 ABC 123",
		CustomerIDNo:    "12345678901",
		CustomerName:    "Ayse Kaya",
		CustomerPhone:   "+905551112233",
		RentalStart:     "2025-03-01T09:00:00Z",
		RentalEnd:       "2025-03-08T09:00:00Z",
		PickupLocation:  "IST Airport",
		DropoffLocation: "IST Airport",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID, "an id is assigned when absent")
	assert.Equal(t, domain.StatusPendingAPI, n.Status, "status defaults to pending_api")
	assert.False(t, n.CreatedAt.IsZero())
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgNotificationRepository_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgNotificationRepository(mockPool, testLogger())
		now := time.Now().UTC()

		rows := mockPool.NewRows([]string{
			"id", "provider_ref", "vehicle_plate", "customer_id_no", "customer_name", "customer_phone",
			"rental_start", "rental_end", "pickup_location", "dropoff_location",
			"status", "cancel_reason", "created_at", "updated_at",
		}).AddRow(
			"n-1", "KBS-9", "34 ABC 123", "12345678901", "Ayse Kaya", "",
			"2025-03-01T09:00:00Z", "2025-03-08T09:00:00Z", "", "",
			domain.StatusSubmitted, "", now, now,
		)
		mockPool.ExpectQuery(`SELECT (.+) FROM rental_notifications WHERE id = \$1`).
			WithArgs("n-1").
			WillReturnRows(rows)

		n, err := repo.GetByID(context.Background(), "n-1")
		require.NoError(t, err)
		assert.Equal(t, "KBS-9", n.ProviderRef)
		assert.Equal(t, domain.StatusSubmitted, n.Status)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgNotificationRepository(mockPool, testLogger())
		mockPool.ExpectQuery(`SELECT (.+) FROM rental_notifications WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotificationNotFound)
	})
}

func TestPgNotificationRepository_UpdateStatus(t *testing.T) {
	t.Run("Updated", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgNotificationRepository(mockPool, testLogger())
		reason := "customer no-show"
		mockPool.ExpectExec(`UPDATE rental_notifications`).
			WithArgs("n-1", domain.StatusCancelled, (*string)(nil), &reason, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.UpdateStatus(context.Background(), "n-1", domain.StatusCancelled, nil, &reason)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgNotificationRepository(mockPool, testLogger())
		mockPool.ExpectExec(`UPDATE rental_notifications`).
			WithArgs("ghost", domain.StatusCancelled, (*string)(nil), (*string)(nil), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = repo.UpdateStatus(context.Background(), "ghost", domain.StatusCancelled, nil, nil)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
	})
}

func TestPgNotificationRepository_ListByStatus(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgNotificationRepository(mockPool, testLogger())
	now := time.Now().UTC()

	rows := mockPool.NewRows([]string{
		"id", "provider_ref", "vehicle_plate", "customer_id_no", "customer_name", "customer_phone",
		"rental_start", "rental_end", "pickup_location", "dropoff_location",
		"status", "cancel_reason", "created_at", "updated_at",
	}).
		AddRow("n-1", "", "34 ABC 123", "12345678901", "A", "", "s", "e", "", "", domain.StatusPendingAPI, "", now, now).
		AddRow("n-2", "", "34 DEF 456", "10987654321", "B", "", "s", "e", "", "", domain.StatusPendingAPI, "", now, now)

	mockPool.ExpectQuery(`SELECT (.+) FROM rental_notifications\s+WHERE status = \$1`).
		WithArgs(domain.StatusPendingAPI, 50).
		WillReturnRows(rows)

	list, err := repo.ListByStatus(context.Background(), domain.StatusPendingAPI, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n-1", list[0].ID)
	assert.Equal(t, "n-2", list[1].ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
