package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
	"github.com/univlib/circulation-service/internal/notifier"
	"github.com/univlib/circulation-service/internal/repository"
)

// fakeRepo implements repository.Repository through optional function fields;
// anything not stubbed answers ErrNotFound.
type fakeRepo struct {
	getUser               func(ctx context.Context, userID string) (model.User, error)
	setUserStatus         func(ctx context.Context, userID string, status model.UserStatus) error
	getBook               func(ctx context.Context, bookID string) (model.Book, error)
	getOpenBorrow         func(ctx context.Context, userID, bookID string) (model.BorrowRecord, error)
	getActiveHold         func(ctx context.Context, userID, bookID string) (model.Hold, error)
	getReadyReservation   func(ctx context.Context, userID, bookID string) (model.Reservation, error)
	borrowWithUnit        func(ctx context.Context, userID, bookID string, now, due time.Time) (model.BorrowRecord, error)
	borrowFromHold        func(ctx context.Context, holdID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error)
	borrowFromReservation func(ctx context.Context, reservationID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error)
	listOverdue           func(ctx context.Context, now time.Time) ([]repository.OverdueLoan, error)
	insertFine            func(ctx context.Context, f model.Fine) (model.Fine, error)
	raiseFine             func(ctx context.Context, fineID string, amount int64, reason string) error
	getFineWithStatus     func(ctx context.Context, fineID string) (model.Fine, model.BorrowStatus, error)
	payFine               func(ctx context.Context, fineID string, now time.Time) (model.Fine, error)
	countPendingFines     func(ctx context.Context, userID string) (int, error)
}

func (f *fakeRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	if f.getUser != nil {
		return f.getUser(ctx, userID)
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeRepo) SetUserStatus(ctx context.Context, userID string, status model.UserStatus) error {
	if f.setUserStatus != nil {
		return f.setUserStatus(ctx, userID, status)
	}
	return nil
}

func (f *fakeRepo) GetBook(ctx context.Context, bookID string) (model.Book, error) {
	if f.getBook != nil {
		return f.getBook(ctx, bookID)
	}
	return model.Book{}, errs.ErrNotFound
}

func (f *fakeRepo) ReserveUnit(context.Context, string) error { return nil }
func (f *fakeRepo) ReleaseUnit(context.Context, string) error { return nil }

func (f *fakeRepo) GetOpenBorrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error) {
	if f.getOpenBorrow != nil {
		return f.getOpenBorrow(ctx, userID, bookID)
	}
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (f *fakeRepo) GetBorrowRecord(context.Context, string) (model.BorrowRecord, error) {
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (f *fakeRepo) BorrowWithUnit(ctx context.Context, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	if f.borrowWithUnit != nil {
		return f.borrowWithUnit(ctx, userID, bookID, now, due)
	}
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (f *fakeRepo) BorrowFromHold(ctx context.Context, holdID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	if f.borrowFromHold != nil {
		return f.borrowFromHold(ctx, holdID, userID, bookID, now, due)
	}
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (f *fakeRepo) BorrowFromReservation(ctx context.Context, reservationID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	if f.borrowFromReservation != nil {
		return f.borrowFromReservation(ctx, reservationID, userID, bookID, now, due)
	}
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (f *fakeRepo) ReturnAndHandOff(context.Context, string, string, time.Time, time.Duration) (*model.Reservation, error) {
	return nil, errs.ErrNotFound
}

func (f *fakeRepo) ListOverdue(ctx context.Context, now time.Time) ([]repository.OverdueLoan, error) {
	if f.listOverdue != nil {
		return f.listOverdue(ctx, now)
	}
	return nil, nil
}

func (f *fakeRepo) GetActiveHold(ctx context.Context, userID, bookID string) (model.Hold, error) {
	if f.getActiveHold != nil {
		return f.getActiveHold(ctx, userID, bookID)
	}
	return model.Hold{}, errs.ErrNotFound
}

func (f *fakeRepo) PlaceHold(context.Context, string, string, time.Time) (model.Hold, error) {
	return model.Hold{}, errs.ErrNotFound
}

func (f *fakeRepo) ExpireHolds(context.Context, time.Time) (int, error) { return 0, nil }

func (f *fakeRepo) CreateReservation(context.Context, string, string, time.Time) (model.Reservation, error) {
	return model.Reservation{}, errs.ErrNotFound
}

func (f *fakeRepo) GetReadyReservation(ctx context.Context, userID, bookID string) (model.Reservation, error) {
	if f.getReadyReservation != nil {
		return f.getReadyReservation(ctx, userID, bookID)
	}
	return model.Reservation{}, errs.ErrNotFound
}

func (f *fakeRepo) HasQueueClaim(context.Context, string, string) (bool, error) { return false, nil }

func (f *fakeRepo) QueuePosition(context.Context, string, string) (model.Reservation, int, error) {
	return model.Reservation{}, 0, errs.ErrNotFound
}

func (f *fakeRepo) CancelReservation(context.Context, string, time.Time, time.Duration) (*model.Reservation, error) {
	return nil, errs.ErrNotFound
}

func (f *fakeRepo) ExpireReadyReservations(context.Context, time.Time, time.Duration) ([]model.Reservation, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) GetFineWithBorrowStatus(ctx context.Context, fineID string) (model.Fine, model.BorrowStatus, error) {
	if f.getFineWithStatus != nil {
		return f.getFineWithStatus(ctx, fineID)
	}
	return model.Fine{}, "", errs.ErrNotFound
}

func (f *fakeRepo) InsertFine(ctx context.Context, fine model.Fine) (model.Fine, error) {
	if f.insertFine != nil {
		return f.insertFine(ctx, fine)
	}
	return model.Fine{}, errs.ErrNotFound
}

func (f *fakeRepo) RaiseFine(ctx context.Context, fineID string, amount int64, reason string) error {
	if f.raiseFine != nil {
		return f.raiseFine(ctx, fineID, amount, reason)
	}
	return nil
}

func (f *fakeRepo) PayFine(ctx context.Context, fineID string, now time.Time) (model.Fine, error) {
	if f.payFine != nil {
		return f.payFine(ctx, fineID, now)
	}
	return model.Fine{}, errs.ErrNoPendingFine
}

func (f *fakeRepo) WaivePendingFine(context.Context, string) (string, error) {
	return "", errs.ErrNoPendingFine
}

func (f *fakeRepo) CountPendingFines(ctx context.Context, userID string) (int, error) {
	if f.countPendingFines != nil {
		return f.countPendingFines(ctx, userID)
	}
	return 0, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

func newTestService(repo repository.Repository) *Service {
	return NewService(repo, notifier.Noop{}, DefaultPolicy(), zap.NewNop())
}

func approvedUserAndBook(f *fakeRepo, available int) {
	f.getUser = func(context.Context, string) (model.User, error) {
		return model.User{ID: "u1", Role: model.RoleUser, Status: model.UserApproved}, nil
	}
	f.getBook = func(context.Context, string) (model.Book, error) {
		return model.Book{
			ID:              "b1",
			Title:           "Compilers",
			TotalCopies:     2,
			AvailableCopies: available,
			CreatedAt:       time.Now().UTC().Add(-96 * time.Hour),
		}, nil
	}
}

func TestBorrow_AllocationPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("active hold wins over ready reservation", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		approvedUserAndBook(f, 1)
		f.getActiveHold = func(context.Context, string, string) (model.Hold, error) {
			return model.Hold{ID: "h1", Status: model.HoldActive}, nil
		}
		f.getReadyReservation = func(context.Context, string, string) (model.Reservation, error) {
			return model.Reservation{ID: "r1", Status: model.ReservationReady}, nil
		}

		var fromHold bool
		f.borrowFromHold = func(_ context.Context, holdID, userID, bookID string, _, _ time.Time) (model.BorrowRecord, error) {
			fromHold = true
			require.Equal(t, "h1", holdID)
			return model.BorrowRecord{ID: "rec1", Status: model.BorrowBorrowed}, nil
		}

		_, err := newTestService(f).Borrow(context.Background(), "u1", "b1")
		require.NoError(t, err)
		require.True(t, fromHold)
	})

	t.Run("ready reservation wins over shelf unit", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		approvedUserAndBook(f, 1)
		f.getReadyReservation = func(context.Context, string, string) (model.Reservation, error) {
			return model.Reservation{ID: "r1", Status: model.ReservationReady}, nil
		}

		var fromResv bool
		f.borrowFromReservation = func(_ context.Context, reservationID, _, _ string, _, _ time.Time) (model.BorrowRecord, error) {
			fromResv = true
			require.Equal(t, "r1", reservationID)
			return model.BorrowRecord{ID: "rec1", Status: model.BorrowBorrowed}, nil
		}

		_, err := newTestService(f).Borrow(context.Background(), "u1", "b1")
		require.NoError(t, err)
		require.True(t, fromResv)
	})

	t.Run("falls back to the shelf", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		approvedUserAndBook(f, 1)

		var fromShelf bool
		f.borrowWithUnit = func(_ context.Context, _, _ string, now, due time.Time) (model.BorrowRecord, error) {
			fromShelf = true
			require.Equal(t, 7*24*time.Hour, due.Sub(now))
			return model.BorrowRecord{ID: "rec1", Status: model.BorrowBorrowed}, nil
		}

		_, err := newTestService(f).Borrow(context.Background(), "u1", "b1")
		require.NoError(t, err)
		require.True(t, fromShelf)
	})

	t.Run("gate failure allocates nothing", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		approvedUserAndBook(f, 1)
		f.getUser = func(context.Context, string) (model.User, error) {
			return model.User{ID: "u1", Role: model.RoleUser, Status: model.UserRejected}, nil
		}
		f.borrowWithUnit = func(context.Context, string, string, time.Time, time.Time) (model.BorrowRecord, error) {
			t.Fatal("ledger must not be touched on gate failure")
			return model.BorrowRecord{}, nil
		}

		_, err := newTestService(f).Borrow(context.Background(), "u1", "b1")
		require.ErrorIs(t, err, errs.ErrAccountNotApproved)
	})
}

func TestSweepOverdue(t *testing.T) {
	t.Parallel()

	threeDaysLate := func(now time.Time) model.BorrowRecord {
		return model.BorrowRecord{
			ID:      "rec1",
			UserID:  "u1",
			BookID:  "b1",
			DueDate: now.Add(-3 * 24 * time.Hour),
			Status:  model.BorrowBorrowed,
		}
	}

	t.Run("creates fine and suspends user", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		f.listOverdue = func(_ context.Context, now time.Time) ([]repository.OverdueLoan, error) {
			return []repository.OverdueLoan{{Record: threeDaysLate(now)}}, nil
		}

		var inserted model.Fine
		f.insertFine = func(_ context.Context, fine model.Fine) (model.Fine, error) {
			inserted = fine
			fine.ID = "f1"
			return fine, nil
		}
		var rejectedUser string
		f.setUserStatus = func(_ context.Context, userID string, status model.UserStatus) error {
			require.Equal(t, model.UserRejected, status)
			rejectedUser = userID
			return nil
		}

		summary, err := newTestService(f).SweepOverdue(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, summary.Processed)
		require.Equal(t, int64(300), inserted.Amount)
		require.Equal(t, "Late by 3 day(s)", inserted.Reason)
		require.Equal(t, model.IssuedBySystem, inserted.IssuedBy)
		require.Equal(t, "u1", rejectedUser)
	})

	t.Run("second run with no time passed is a no-op", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		fineID := "f1"
		amount := int64(300)
		f.listOverdue = func(_ context.Context, now time.Time) ([]repository.OverdueLoan, error) {
			return []repository.OverdueLoan{{Record: threeDaysLate(now), FineID: &fineID, FineAmount: &amount}}, nil
		}
		f.insertFine = func(context.Context, model.Fine) (model.Fine, error) {
			t.Fatal("must not insert a duplicate fine")
			return model.Fine{}, nil
		}
		f.raiseFine = func(context.Context, string, int64, string) error {
			t.Fatal("must not touch an up-to-date amount")
			return nil
		}

		summary, err := newTestService(f).SweepOverdue(context.Background())
		require.NoError(t, err)
		require.Equal(t, 0, summary.Processed)
	})

	t.Run("raises a stale pending fine", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		fineID := "f1"
		staleAmount := int64(100)
		f.listOverdue = func(_ context.Context, now time.Time) ([]repository.OverdueLoan, error) {
			return []repository.OverdueLoan{{Record: threeDaysLate(now), FineID: &fineID, FineAmount: &staleAmount}}, nil
		}

		var raisedTo int64
		f.raiseFine = func(_ context.Context, id string, amount int64, reason string) error {
			require.Equal(t, "f1", id)
			require.Equal(t, "Late by 3 day(s)", reason)
			raisedTo = amount
			return nil
		}

		summary, err := newTestService(f).SweepOverdue(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, summary.Processed)
		require.Equal(t, int64(300), raisedTo)
	})
}

func TestPayFine(t *testing.T) {
	t.Parallel()

	t.Run("requires the book back first", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		f.getFineWithStatus = func(context.Context, string) (model.Fine, model.BorrowStatus, error) {
			return model.Fine{ID: "f1", UserID: "u1", Status: model.FinePending}, model.BorrowBorrowed, nil
		}

		_, err := newTestService(f).PayFine(context.Background(), "f1")
		require.ErrorIs(t, err, errs.ErrFineNotPayable)
	})

	t.Run("restores the account when the last fine clears", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		f.getFineWithStatus = func(context.Context, string) (model.Fine, model.BorrowStatus, error) {
			return model.Fine{ID: "f1", UserID: "u1", Status: model.FinePending}, model.BorrowReturned, nil
		}
		f.payFine = func(_ context.Context, fineID string, now time.Time) (model.Fine, error) {
			return model.Fine{ID: fineID, UserID: "u1", Status: model.FinePaid, PaidAt: &now}, nil
		}
		f.countPendingFines = func(context.Context, string) (int, error) { return 0, nil }

		var restored bool
		f.setUserStatus = func(_ context.Context, userID string, status model.UserStatus) error {
			require.Equal(t, "u1", userID)
			require.Equal(t, model.UserApproved, status)
			restored = true
			return nil
		}

		paid, err := newTestService(f).PayFine(context.Background(), "f1")
		require.NoError(t, err)
		require.Equal(t, model.FinePaid, paid.Status)
		require.True(t, restored)
	})

	t.Run("keeps suspension while other fines pend", func(t *testing.T) {
		t.Parallel()
		f := &fakeRepo{}
		f.getFineWithStatus = func(context.Context, string) (model.Fine, model.BorrowStatus, error) {
			return model.Fine{ID: "f1", UserID: "u1", Status: model.FinePending}, model.BorrowReturned, nil
		}
		f.payFine = func(_ context.Context, fineID string, now time.Time) (model.Fine, error) {
			return model.Fine{ID: fineID, UserID: "u1", Status: model.FinePaid}, nil
		}
		f.countPendingFines = func(context.Context, string) (int, error) { return 2, nil }
		f.setUserStatus = func(context.Context, string, model.UserStatus) error {
			t.Fatal("must not restore with fines outstanding")
			return nil
		}

		_, err := newTestService(f).PayFine(context.Background(), "f1")
		require.NoError(t, err)
	})
}
