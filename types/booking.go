package types

import (
	"time"

	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/validator"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking carries the subset of booking state the completion protocol
// needs. Status reaches COMPLETED only once both counterparties have
// attested: the provider via ProviderMarkedComplete, the customer via
// CustomerVerified. Neither flag can be unset.
type Booking struct {
	ID                     string        `json:"id"`
	CustomerID             string        `json:"customerId" db:"customer_id"`
	ProviderID             string        `json:"providerId" db:"provider_id"`
	Status                 BookingStatus `json:"status"`
	ProviderMarkedComplete bool          `json:"providerMarkedComplete" db:"provider_marked_complete"`
	CustomerVerified       bool          `json:"customerVerified" db:"customer_verified"`
	CreatedAt              time.Time     `json:"createdAt" db:"created_at"`
}

type CreateBooking struct {
	CustomerID string
	ProviderID string
	Status     BookingStatus
}

// CompleteBooking is the input for both completion attestations:
// the provider marking work done and the customer verifying it.
type CompleteBooking struct {
	BookingID string

	requesterID string
}

func (in *CompleteBooking) SetRequesterID(userID string) {
	in.requesterID = userID
}

func (in CompleteBooking) RequesterID() string {
	return in.requesterID
}

func (in *CompleteBooking) Validate() error {
	v := validator.New()

	if in.BookingID == "" {
		v.AddError("BookingID", "Booking ID is required")
	} else if !id.Valid(in.BookingID) {
		v.AddError("BookingID", "Booking ID is invalid")
	}

	return v.AsError()
}
