package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ServiceBooking is a booking of a professional's service, paid for by one payment.
type ServiceBooking struct {
	ID            string
	UserID        string
	Status        BookingStatus
	PaymentStatus BillingStatus
	UpdatedAt     time.Time
}

func BookingStateFor(s PaymentStatus) (BookingStatus, BillingStatus) {
	if s.Succeeded() {
		return BookingStatusConfirmed, BillingStatusPaid
	}
	return BookingStatusCancelled, BillingStatusFailed
}
