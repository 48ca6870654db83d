package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

// fineAmount computes daysLate (floored to whole days) and the fine.
func fineAmount(dueDate, now time.Time, dailyRate int64) (int64, int64) {
	daysLate := int64(now.Sub(dueDate).Hours() / 24)
	if daysLate < 0 {
		daysLate = 0
	}
	return daysLate, daysLate * dailyRate
}

func fineReason(daysLate int64) string {
	return fmt.Sprintf("Late by %d day(s)", daysLate)
}

// SweepOverdue issues or grows fines for open loans past due. Idempotent:
// re-running with no time passed inserts nothing and leaves amounts alone,
// because a pending fine already covers the record and amounts only move up.
func (s *Service) SweepOverdue(ctx context.Context) (model.SweepSummary, error) {
	now := time.Now().UTC()
	overdue, err := s.repo.ListOverdue(ctx, now)
	if err != nil {
		return model.SweepSummary{}, err
	}

	processed := 0
	for _, o := range overdue {
		daysLate, amount := fineAmount(o.Record.DueDate, now, s.policy.DailyFineRate)
		if daysLate == 0 {
			// past due but less than a whole day; nothing accrued yet
			continue
		}

		if o.FineID == nil {
			if _, err := s.repo.InsertFine(ctx, model.Fine{
				UserID:         o.Record.UserID,
				BorrowRecordID: o.Record.ID,
				Amount:         amount,
				Reason:         fineReason(daysLate),
				IssuedAt:       now,
				IssuedBy:       model.IssuedBySystem,
			}); err != nil {
				if errors.Is(err, errs.ErrFineExists) {
					continue
				}
				return model.SweepSummary{}, err
			}
			if err := s.repo.SetUserStatus(ctx, o.Record.UserID, model.UserRejected); err != nil {
				return model.SweepSummary{}, err
			}
			processed++
			continue
		}

		if amount > *o.FineAmount {
			if err := s.repo.RaiseFine(ctx, *o.FineID, amount, fineReason(daysLate)); err != nil {
				return model.SweepSummary{}, err
			}
			processed++
		}
	}

	s.log.Info("overdue sweep",
		zap.Int("overdue", len(overdue)), zap.Int("processed", processed))
	return model.SweepSummary{Processed: processed}, nil
}

// SweepReadyExpiry expires READY reservations past their pickup window and
// cascades each earmarked unit to the next waiter.
func (s *Service) SweepReadyExpiry(ctx context.Context) (model.SweepSummary, error) {
	promotions, expired, err := s.repo.ExpireReadyReservations(ctx, time.Now().UTC(), s.policy.ReadyTTL)
	if err != nil {
		return model.SweepSummary{}, err
	}
	for _, rsv := range promotions {
		s.notifyReady(ctx, rsv)
	}
	return model.SweepSummary{Processed: expired}, nil
}

// SweepHoldExpiry releases timed-out holds back to general availability.
// Hold expiry deliberately does not feed the reservation queue.
func (s *Service) SweepHoldExpiry(ctx context.Context) (model.SweepSummary, error) {
	released, err := s.repo.ExpireHolds(ctx, time.Now().UTC())
	if err != nil {
		return model.SweepSummary{}, err
	}
	return model.SweepSummary{Processed: released}, nil
}
