package models

import "time"

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// ValidReservationStatus reports whether s is one of the three reservation states.
func ValidReservationStatus(s string) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is a table booking. Customers are matched to their bookings by email.
type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerName    string    `gorm:"size:255;not null" json:"customer_name"`
	Email           string    `gorm:"size:255;not null;index" json:"email"`
	Phone           string    `gorm:"size:20;not null" json:"phone"`
	Date            time.Time `gorm:"type:date;not null" json:"date"`
	Time            string    `gorm:"type:time;not null" json:"time"`
	Guests          int       `gorm:"not null" json:"guests"`
	SpecialRequests *string   `gorm:"type:text" json:"special_requests"`
	Status          string    `gorm:"type:enum('pending','confirmed','cancelled');default:pending" json:"status"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
