package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

// PayFine settles a pending fine. The book must be back on the shelf first:
// paying while still holding the copy is not allowed.
func (s *Service) PayFine(ctx context.Context, fineID string) (model.Fine, error) {
	fine, borrowStatus, err := s.repo.GetFineWithBorrowStatus(ctx, fineID)
	if err != nil {
		return model.Fine{}, err
	}
	if fine.Status != model.FinePending {
		return model.Fine{}, errs.ErrNoPendingFine
	}
	if borrowStatus != model.BorrowReturned {
		return model.Fine{}, errs.ErrFineNotPayable
	}

	paid, err := s.repo.PayFine(ctx, fineID, time.Now().UTC())
	if err != nil {
		return model.Fine{}, err
	}

	if err := s.restoreUserIfClear(ctx, paid.UserID); err != nil {
		return model.Fine{}, err
	}

	s.log.Info("fine paid",
		zap.String("fine_id", fineID), zap.String("user_id", paid.UserID),
		zap.Int64("amount", paid.Amount))
	return paid, nil
}

// WaiveFine is the admin escape hatch for a pending fine.
func (s *Service) WaiveFine(ctx context.Context, borrowRecordID string) error {
	userID, err := s.repo.WaivePendingFine(ctx, borrowRecordID)
	if err != nil {
		return err
	}
	if err := s.restoreUserIfClear(ctx, userID); err != nil {
		return err
	}

	s.log.Info("fine waived",
		zap.String("borrow_record_id", borrowRecordID), zap.String("user_id", userID))
	return nil
}

// AddManualFine attaches an admin-issued fine to a borrow record and
// suspends the account until it is settled.
func (s *Service) AddManualFine(ctx context.Context, borrowRecordID string, amount int64, reason string) (model.Fine, error) {
	rec, err := s.repo.GetBorrowRecord(ctx, borrowRecordID)
	if err != nil {
		return model.Fine{}, errors.Wrap(err, "borrow record")
	}

	fine, err := s.repo.InsertFine(ctx, model.Fine{
		UserID:         rec.UserID,
		BorrowRecordID: borrowRecordID,
		Amount:         amount,
		Reason:         reason,
		IssuedAt:       time.Now().UTC(),
		IssuedBy:       model.IssuedByAdmin,
	})
	if err != nil {
		return model.Fine{}, err
	}

	if err := s.repo.SetUserStatus(ctx, rec.UserID, model.UserRejected); err != nil {
		return model.Fine{}, err
	}

	s.log.Info("manual fine added",
		zap.String("borrow_record_id", borrowRecordID), zap.String("user_id", rec.UserID),
		zap.Int64("amount", amount))
	return fine, nil
}

func (s *Service) restoreUserIfClear(ctx context.Context, userID string) error {
	pending, err := s.repo.CountPendingFines(ctx, userID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}
	return s.repo.SetUserStatus(ctx, userID, model.UserApproved)
}
