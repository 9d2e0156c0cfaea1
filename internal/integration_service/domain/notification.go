package domain

import "time"

// NotificationStatus tracks a rental notification through its lifecycle:
// validated -> {pending_api | submitted | rejected}, then cancelled. No
// transition bypasses validation and none retries automatically.
type NotificationStatus string

const (
	// StatusPendingAPI marks a notification accepted locally but not yet
	// transmitted to KABIS (unconfigured instance; manual submission needed).
	StatusPendingAPI     NotificationStatus = "pending_api"
	StatusSubmitted      NotificationStatus = "submitted"
	StatusRejected       NotificationStatus = "rejected"
	StatusCancelled      NotificationStatus = "cancelled"
	StatusCancelledLocal NotificationStatus = "cancelled_local"
)

// RentalNotification is a mandatory rental disclosure recorded for the
// government reporting system.
type RentalNotification struct {
	ID              string
	ProviderRef     string // KABIS-assigned notification number, when submitted
	VehiclePlate    string
	CustomerIDNo    string // national identity number, 11 digits
	CustomerName    string
	CustomerPhone   string
	RentalStart     string
	RentalEnd       string
	PickupLocation  string
	DropoffLocation string
	Status          NotificationStatus
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateNationalID reports whether id is exactly 11 numeric digits.
func ValidateNationalID(id string) bool {
	if len(id) != 11 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
