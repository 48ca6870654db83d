package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

var reservationColumns = []string{"id", "user_id", "book_id", "position", "status", "reservation_date", "expiry_date"}

const reservationReturning = `id, user_id, book_id, position, status, reservation_date, expiry_date`

// CreateReservation appends the user to the book's FIFO queue. Position
// assignment runs under the book lock so it is strictly increasing per book;
// gaps left by cancellations are harmless.
func (r *repository) CreateReservation(ctx context.Context, userID, bookID string, now time.Time) (model.Reservation, error) {
	var rsv model.Reservation
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}

		q := `
insert into reservations (user_id, book_id, position, status, reservation_date)
select $1, $2, coalesce(max(position), 0) + 1, 'WAITING', $3
from reservations
where book_id = $2 and status = 'WAITING'
returning ` + reservationReturning

		if err := tx.GetContext(ctx, &rsv, q, userID, bookID, now); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyReserved
			}
			return err
		}
		return nil
	})
	return rsv, err
}

func (r *repository) GetReadyReservation(ctx context.Context, userID, bookID string) (model.Reservation, error) {
	q, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID, "status": model.ReservationReady}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}

	var rsv model.Reservation
	if err := r.db.GetContext(ctx, &rsv, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return rsv, nil
}

// HasQueueClaim reports whether the user has a live queue entry (WAITING or
// READY) for the book. Used to keep holds and reservations mutually
// exclusive, otherwise one user could double-commit a unit.
func (r *repository) HasQueueClaim(ctx context.Context, userID, bookID string) (bool, error) {
	q := `
select count(*) from reservations
where user_id = $1 and book_id = $2 and status in ('WAITING', 'READY')`
	var count int
	if err := r.db.QueryRowxContext(ctx, q, userID, bookID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) QueuePosition(ctx context.Context, userID, bookID string) (model.Reservation, int, error) {
	q, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID}).
		Where(sq.Eq{"status": []model.ReservationStatus{model.ReservationWaiting, model.ReservationReady}}).
		OrderBy("reservation_date desc").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, 0, err
	}

	var rsv model.Reservation
	if err := r.db.GetContext(ctx, &rsv, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, 0, errs.ErrNotFound
		}
		return model.Reservation{}, 0, err
	}

	var ahead int
	if err := r.db.QueryRowxContext(ctx, `
select count(*) from reservations
where book_id = $1 and status = 'WAITING' and position < $2`,
		bookID, rsv.Position).Scan(&ahead); err != nil {
		return model.Reservation{}, 0, err
	}
	return rsv, ahead, nil
}

// promoteNext moves the lowest-position WAITING reservation to READY and
// earmarks the freed unit for it. Returns nil when the queue is empty, in
// which case the caller decides what happens to the unit.
func promoteNext(ctx context.Context, tx *sqlx.Tx, bookID string, expiry time.Time) (*model.Reservation, error) {
	q := `
update reservations set status = 'READY', expiry_date = $2
where id = (
    select id from reservations
    where book_id = $1 and status = 'WAITING'
    order by position
    limit 1
    for update
)
returning ` + reservationReturning

	var rsv model.Reservation
	if err := tx.GetContext(ctx, &rsv, q, bookID, expiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rsv, nil
}

// CancelReservation withdraws a WAITING or READY reservation. Cancelling a
// READY one releases its earmarked unit onward: next waiter, or back to the
// shelf when the queue is empty.
func (r *repository) CancelReservation(ctx context.Context, reservationID string, now time.Time, readyTTL time.Duration) (*model.Reservation, error) {
	var promoted *model.Reservation
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var rsv model.Reservation
		q := `
select ` + reservationReturning + `
from reservations
where id = $1
for update`
		if err := tx.GetContext(ctx, &rsv, q, reservationID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if rsv.Status != model.ReservationWaiting && rsv.Status != model.ReservationReady {
			return errs.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`update reservations set status = 'CANCELLED' where id = $1`, reservationID); err != nil {
			return err
		}

		if rsv.Status != model.ReservationReady {
			return nil
		}

		// same cascade as ready-expiry
		if err := lockBook(ctx, tx, rsv.BookID); err != nil {
			return err
		}
		var err error
		promoted, err = promoteNext(ctx, tx, rsv.BookID, now.Add(readyTTL))
		if err != nil {
			return err
		}
		if promoted != nil {
			return nil
		}
		return releaseUnit(ctx, tx, rsv.BookID)
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// ExpireReadyReservations sweeps READY reservations past their pickup window.
// Each expiry hands the earmarked unit to the next waiter or releases it.
// Re-running the sweep is a no-op: expired rows no longer match.
func (r *repository) ExpireReadyReservations(ctx context.Context, now time.Time, readyTTL time.Duration) ([]model.Reservation, int, error) {
	var (
		promotions []model.Reservation
		expired    int
	)

	for {
		var (
			done     bool
			promoted *model.Reservation
		)
		err := r.withTx(ctx, func(tx *sqlx.Tx) error {
			promoted = nil
			var rsv model.Reservation
			q := `
select ` + reservationReturning + `
from reservations
where status = 'READY' and expiry_date < $1
order by expiry_date
limit 1
for update skip locked`
			if err := tx.GetContext(ctx, &rsv, q, now); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					done = true
					return nil
				}
				return err
			}

			if err := lockBook(ctx, tx, rsv.BookID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`update reservations set status = 'EXPIRED' where id = $1`, rsv.ID); err != nil {
				return err
			}

			var err error
			promoted, err = promoteNext(ctx, tx, rsv.BookID, now.Add(readyTTL))
			if err != nil {
				return err
			}
			if promoted != nil {
				return nil
			}
			return releaseUnit(ctx, tx, rsv.BookID)
		})
		if err != nil {
			return promotions, expired, err
		}
		if done {
			break
		}
		expired++
		if promoted != nil {
			promotions = append(promotions, *promoted)
		}
	}

	if expired > 0 {
		r.log.Info("ready reservations expired",
			zap.Int("expired", expired), zap.Int("promoted", len(promotions)))
	}
	return promotions, expired, nil
}
