package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

// Borrow runs the full gate-then-allocate flow. Allocation precedence: an
// ACTIVE hold, then a READY reservation, then a unit straight off the shelf.
// The first two consume a copy that was already committed, so the ledger is
// untouched for them.
func (s *Service) Borrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.BorrowRecord{}, errors.Wrap(err, "user")
	}
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return model.BorrowRecord{}, errors.Wrap(err, "book")
	}

	hasOpenLoan := true
	if _, err := s.repo.GetOpenBorrow(ctx, userID, bookID); err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return model.BorrowRecord{}, err
		}
		hasOpenLoan = false
	}

	var hold *model.Hold
	if h, err := s.repo.GetActiveHold(ctx, userID, bookID); err == nil {
		hold = &h
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.BorrowRecord{}, err
	}

	var ready *model.Reservation
	if rsv, err := s.repo.GetReadyReservation(ctx, userID, bookID); err == nil {
		ready = &rsv
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.BorrowRecord{}, err
	}

	now := time.Now().UTC()
	if err := canBorrow(borrowEligibility{
		user:          user,
		book:          book,
		hasOpenLoan:   hasOpenLoan,
		hasActiveHold: hold != nil,
		hasReadyResv:  ready != nil,
		now:           now,
	}, s.policy.PriorityWindow); err != nil {
		return model.BorrowRecord{}, err
	}

	due := now.Add(s.policy.LoanPeriod)

	var rec model.BorrowRecord
	switch {
	case hold != nil:
		rec, err = s.repo.BorrowFromHold(ctx, hold.ID, userID, bookID, now, due)
	case ready != nil:
		rec, err = s.repo.BorrowFromReservation(ctx, ready.ID, userID, bookID, now, due)
	default:
		rec, err = s.repo.BorrowWithUnit(ctx, userID, bookID, now, due)
	}
	if err != nil {
		return model.BorrowRecord{}, err
	}

	s.log.Info("borrow",
		zap.String("user_id", userID), zap.String("book_id", bookID),
		zap.String("record_id", rec.ID), zap.Time("due", due))
	return rec, nil
}

// Return closes the loan and hands the freed unit to the reservation queue
// before it goes back on the shelf. A return on an unknown or already closed
// record fails with ErrRecordNotBorrowed and changes nothing.
func (s *Service) Return(ctx context.Context, recordID, bookID string) error {
	now := time.Now().UTC()
	promoted, err := s.repo.ReturnAndHandOff(ctx, recordID, bookID, now, s.policy.ReadyTTL)
	if err != nil {
		return err
	}

	s.log.Info("return",
		zap.String("record_id", recordID), zap.String("book_id", bookID),
		zap.Bool("promoted", promoted != nil))

	if promoted != nil {
		s.notifyReady(ctx, *promoted)
	}
	return nil
}
