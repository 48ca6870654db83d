package service

import (
	"math"
	"time"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

// borrowEligibility is everything the gate needs, resolved up front so the
// rule evaluation itself stays pure.
type borrowEligibility struct {
	user          model.User
	book          model.Book
	hasOpenLoan   bool
	hasActiveHold bool
	hasReadyResv  bool
	now           time.Time
}

// canBorrow evaluates the borrow policy in order; the first failing rule wins.
//
// The priority window is checked before copy availability on purpose: for the
// first 48 hours after acquisition faculty priority is a hard gate even when
// copies sit on the shelf, and the rejection must say so rather than claim
// the book is unavailable.
func canBorrow(in borrowEligibility, priorityWindow time.Duration) error {
	if in.user.Status != model.UserApproved {
		return errs.ErrAccountNotApproved
	}

	if in.hasOpenLoan {
		return errs.ErrAlreadyBorrowed
	}

	cutoff := in.book.CreatedAt.Add(priorityWindow)
	if in.now.Before(cutoff) && in.user.Role != model.RoleFaculty {
		return &errs.PriorityWindowError{
			HoursLeft: int(math.Ceil(cutoff.Sub(in.now).Hours())),
		}
	}

	if in.book.AvailableCopies <= 0 && !in.hasActiveHold && !in.hasReadyResv {
		return errs.ErrNoCopyAvailable
	}

	return nil
}
