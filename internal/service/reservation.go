package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

// Reserve appends the user to the book's waitlist. A queue entry never
// touches the ledger; the unit arrives later via promotion.
func (s *Service) Reserve(ctx context.Context, userID, bookID string) (model.Reservation, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return model.Reservation{}, errors.Wrap(err, "user")
	}

	if _, err := s.repo.GetOpenBorrow(ctx, userID, bookID); err == nil {
		return model.Reservation{}, errs.ErrAlreadyBorrowed
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.Reservation{}, err
	}

	// a held copy is already committed to this user; queueing on top of it
	// would double-claim
	if _, err := s.repo.GetActiveHold(ctx, userID, bookID); err == nil {
		return model.Reservation{}, errs.ErrAlreadyOnHold
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.Reservation{}, err
	}

	rsv, err := s.repo.CreateReservation(ctx, userID, bookID, time.Now().UTC())
	if err != nil {
		return model.Reservation{}, err
	}

	s.log.Info("reservation created",
		zap.String("user_id", userID), zap.String("book_id", bookID),
		zap.Int("position", rsv.Position))
	return rsv, nil
}

// CancelReservation withdraws the entry; a READY cancellation passes the
// earmarked unit onward exactly like a ready-expiry would.
func (s *Service) CancelReservation(ctx context.Context, reservationID string) error {
	promoted, err := s.repo.CancelReservation(ctx, reservationID, time.Now().UTC(), s.policy.ReadyTTL)
	if err != nil {
		return err
	}

	s.log.Info("reservation cancelled",
		zap.String("reservation_id", reservationID), zap.Bool("promoted_next", promoted != nil))

	if promoted != nil {
		s.notifyReady(ctx, *promoted)
	}
	return nil
}

// QueuePosition reports the reservation and how many WAITING entries sit
// ahead of it (zero-based).
func (s *Service) QueuePosition(ctx context.Context, userID, bookID string) (model.QueuePositionResponse, error) {
	rsv, ahead, err := s.repo.QueuePosition(ctx, userID, bookID)
	if err != nil {
		return model.QueuePositionResponse{}, err
	}
	return model.QueuePositionResponse{
		Reservation:   rsv,
		QueuePosition: ahead,
	}, nil
}
