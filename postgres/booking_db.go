package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"
	"github.com/nicolasparada/go-db"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/types"
)

const bookingColumnsStr = `
	bookings.id,
	bookings.customer_id,
	bookings.provider_id,
	bookings.status,
	bookings.provider_marked_complete,
	bookings.customer_verified,
	bookings.created_at
`

// CreateBooking exists for the booking-acceptance flow and for tests;
// the engine only advances existing bookings to COMPLETED.
func (p *Postgres) CreateBooking(ctx context.Context, in types.CreateBooking) (types.Booking, error) {
	var out types.Booking

	status := in.Status
	if status == "" {
		status = types.BookingStatusPending
	}

	query := `
		INSERT INTO bookings (id, customer_id, provider_id, status)
		VALUES (@booking_id, @customer_id, @provider_id, @status)
		RETURNING ` + bookingColumnsStr

	rows, err := p.db.Query(ctx, query, pgx.StrictNamedArgs{
		"booking_id":  id.Generate(),
		"customer_id": in.CustomerID,
		"provider_id": in.ProviderID,
		"status":      status,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert booking: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Booking])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted booking: %w", err)
	}

	return out, nil
}

func (p *Postgres) Booking(ctx context.Context, bookingID string) (types.Booking, error) {
	query := `
		SELECT ` + bookingColumnsStr + `
		FROM bookings
		WHERE bookings.id = @booking_id
	`
	args := pgx.StrictNamedArgs{
		"booking_id": bookingID,
	}

	booking, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.Booking])
	if db.IsNotFoundError(err) {
		return booking, errs.NewNotFoundError("booking not found")
	}

	if err != nil {
		return booking, fmt.Errorf("sql select booking: %w", err)
	}

	return booking, nil
}

type bookingParty struct {
	column    string
	flag      string
	otherFlag string
	message   string
}

var (
	bookingProvider = bookingParty{
		column:    "provider_id",
		flag:      "provider_marked_complete",
		otherFlag: "customer_verified",
		message:   "only the booking provider can mark it complete",
	}
	bookingCustomer = bookingParty{
		column:    "customer_id",
		flag:      "customer_verified",
		otherFlag: "provider_marked_complete",
		message:   "only the booking customer can verify completion",
	}
)

// MarkBookingComplete sets the provider's completion attestation.
func (p *Postgres) MarkBookingComplete(ctx context.Context, in types.CompleteBooking) (types.Booking, error) {
	return p.confirmBookingCompletion(ctx, in, bookingProvider)
}

// VerifyBookingCompletion sets the customer's completion attestation.
func (p *Postgres) VerifyBookingCompletion(ctx context.Context, in types.CompleteBooking) (types.Booking, error) {
	return p.confirmBookingCompletion(ctx, in, bookingCustomer)
}

// confirmBookingCompletion is the shared half of the dual-confirmation
// protocol. The row is locked for the whole read-check-write so two
// parties confirming concurrently cannot both read stale flags and
// miss the COMPLETED transition. Re-confirming is idempotent and flags
// are never unset.
func (p *Postgres) confirmBookingCompletion(ctx context.Context, in types.CompleteBooking, party bookingParty) (types.Booking, error) {
	var out types.Booking
	return out, p.db.RunTx(ctx, func(ctx context.Context) error {
		query := `
			SELECT ` + party.column + ` FROM bookings
			WHERE id = @booking_id
			FOR UPDATE
		`
		args := pgx.StrictNamedArgs{
			"booking_id": in.BookingID,
		}

		partyID, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowTo[string])
		if db.IsNotFoundError(err) {
			return errs.NewNotFoundError("booking not found")
		}

		if err != nil {
			return fmt.Errorf("sql select booking for completion: %w", err)
		}

		if partyID != in.RequesterID() {
			return errs.NewPermissionDeniedError(party.message)
		}

		// SET expressions see the pre-update row, so the terminal
		// transition checks the counterparty's flag only.
		query = `
			UPDATE bookings
			SET ` + party.flag + ` = true,
				status = CASE WHEN ` + party.otherFlag + ` THEN @completed ELSE status END,
				updated_at = now()
			WHERE id = @booking_id
			RETURNING ` + bookingColumnsStr

		rows, err := p.db.Query(ctx, query, pgx.StrictNamedArgs{
			"booking_id": in.BookingID,
			"completed":  types.BookingStatusCompleted,
		})
		if err != nil {
			return fmt.Errorf("sql update booking completion: %w", err)
		}

		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Booking])
		if err != nil {
			return fmt.Errorf("sql collect updated booking: %w", err)
		}

		return nil
	})
}
