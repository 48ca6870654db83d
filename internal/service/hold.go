package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

// PlaceHold commits an available copy to the user for the hold window. A user
// with a live queue entry may not also hold: the two claims together would
// tie up two units for one reader.
func (s *Service) PlaceHold(ctx context.Context, userID, bookID string) (model.Hold, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.Hold{}, errors.Wrap(err, "user")
	}
	if user.Status != model.UserApproved {
		return model.Hold{}, errs.ErrAccountNotApproved
	}

	claimed, err := s.repo.HasQueueClaim(ctx, userID, bookID)
	if err != nil {
		return model.Hold{}, err
	}
	if claimed {
		return model.Hold{}, errs.ErrAlreadyReserved
	}

	now := time.Now().UTC()
	h, err := s.repo.PlaceHold(ctx, userID, bookID, now.Add(s.policy.HoldTTL))
	if err != nil {
		return model.Hold{}, err
	}

	s.log.Info("hold placed",
		zap.String("user_id", userID), zap.String("book_id", bookID),
		zap.Time("expires_at", h.ExpiresAt))
	return h, nil
}
