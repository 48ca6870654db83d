package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

func TestCanBorrow(t *testing.T) {
	t.Parallel()

	const priorityWindow = 48 * time.Hour
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	newBook := func(available int, createdAt time.Time) model.Book {
		return model.Book{
			ID:              "b1",
			Title:           "Distributed Systems",
			TotalCopies:     3,
			AvailableCopies: available,
			CreatedAt:       createdAt,
		}
	}
	oldRelease := now.Add(-72 * time.Hour)
	newRelease := now.Add(-2 * time.Hour)

	var tests = []struct {
		name    string
		in      borrowEligibility
		wantErr error
	}{
		{
			name: "ok",
			in: borrowEligibility{
				user: model.User{Status: model.UserApproved, Role: model.RoleUser},
				book: newBook(1, oldRelease),
				now:  now,
			},
		},
		{
			name: "not approved",
			in: borrowEligibility{
				user: model.User{Status: model.UserPending, Role: model.RoleUser},
				book: newBook(1, oldRelease),
				now:  now,
			},
			wantErr: errs.ErrAccountNotApproved,
		},
		{
			name: "rejected account blocked even for faculty",
			in: borrowEligibility{
				user: model.User{Status: model.UserRejected, Role: model.RoleFaculty},
				book: newBook(1, oldRelease),
				now:  now,
			},
			wantErr: errs.ErrAccountNotApproved,
		},
		{
			name: "open loan exists",
			in: borrowEligibility{
				user:        model.User{Status: model.UserApproved, Role: model.RoleUser},
				book:        newBook(1, oldRelease),
				hasOpenLoan: true,
				now:         now,
			},
			wantErr: errs.ErrAlreadyBorrowed,
		},
		{
			name: "faculty passes priority window",
			in: borrowEligibility{
				user: model.User{Status: model.UserApproved, Role: model.RoleFaculty},
				book: newBook(1, newRelease),
				now:  now,
			},
		},
		{
			name: "no copies but active hold",
			in: borrowEligibility{
				user:          model.User{Status: model.UserApproved, Role: model.RoleUser},
				book:          newBook(0, oldRelease),
				hasActiveHold: true,
				now:           now,
			},
		},
		{
			name: "no copies but ready reservation",
			in: borrowEligibility{
				user:         model.User{Status: model.UserApproved, Role: model.RoleUser},
				book:         newBook(0, oldRelease),
				hasReadyResv: true,
				now:          now,
			},
		},
		{
			name: "no copies no claim",
			in: borrowEligibility{
				user: model.User{Status: model.UserApproved, Role: model.RoleUser},
				book: newBook(0, oldRelease),
				now:  now,
			},
			wantErr: errs.ErrNoCopyAvailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := canBorrow(tt.in, priorityWindow)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCanBorrow_PriorityWindow(t *testing.T) {
	t.Parallel()

	const priorityWindow = 48 * time.Hour
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// window is a hard gate: reported before copy availability even when
	// copies exist, and even when none do
	for _, available := range []int{1, 0} {
		in := borrowEligibility{
			user: model.User{Status: model.UserApproved, Role: model.RoleUser},
			book: model.Book{
				AvailableCopies: available,
				TotalCopies:     1,
				CreatedAt:       now.Add(-30*time.Hour - 30*time.Minute),
			},
			now: now,
		}
		err := canBorrow(in, priorityWindow)

		var pw *errs.PriorityWindowError
		require.True(t, errors.As(err, &pw))
		// 17.5h remaining rounds up to 18
		require.Equal(t, 18, pw.HoursLeft)
		require.NotErrorIs(t, err, errs.ErrNoCopyAvailable)
	}
}
