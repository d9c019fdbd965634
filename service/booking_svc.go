package service

import (
	"context"
	"fmt"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/types"
)

// MarkBookingComplete records the provider's side of the completion
// handshake. Calling it again once recorded changes nothing.
func (svc *Service) MarkBookingComplete(ctx context.Context, in types.CompleteBooking) (types.Booking, error) {
	var out types.Booking

	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetRequesterID(usr.ID)

	if err := in.Validate(); err != nil {
		return out, err
	}

	out, err := svc.Postgres.MarkBookingComplete(ctx, in)
	if err != nil {
		return out, fmt.Errorf("mark booking complete: %w", err)
	}

	return out, nil
}

// VerifyBookingCompletion records the customer's side of the completion
// handshake. Whichever side confirms last moves the booking to
// COMPLETED.
func (svc *Service) VerifyBookingCompletion(ctx context.Context, in types.CompleteBooking) (types.Booking, error) {
	var out types.Booking

	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetRequesterID(usr.ID)

	if err := in.Validate(); err != nil {
		return out, err
	}

	out, err := svc.Postgres.VerifyBookingCompletion(ctx, in)
	if err != nil {
		return out, fmt.Errorf("verify booking completion: %w", err)
	}

	return out, nil
}

// Booking fetches one booking. Only its two parties may see it.
func (svc *Service) Booking(ctx context.Context, bookingID string) (types.Booking, error) {
	var out types.Booking

	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	out, err := svc.Postgres.Booking(ctx, bookingID)
	if err != nil {
		return out, fmt.Errorf("booking: %w", err)
	}

	if out.CustomerID != usr.ID && out.ProviderID != usr.ID {
		return types.Booking{}, errs.NewPermissionDeniedError("booking does not belong to you")
	}

	return out, nil
}
