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

var borrowColumns = []string{"id", "user_id", "book_id", "borrow_date", "due_date", "return_date", "status"}

func (r *repository) GetOpenBorrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowColumns...).
		From(borrowTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID, "status": model.BorrowBorrowed}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}

	var rec model.BorrowRecord
	if err := r.db.GetContext(ctx, &rec, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) GetBorrowRecord(ctx context.Context, recordID string) (model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowColumns...).
		From(borrowTableName).
		Where(sq.Eq{"id": recordID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}

	var rec model.BorrowRecord
	if err := r.db.GetContext(ctx, &rec, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func insertBorrow(ctx context.Context, tx *sqlx.Tx, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	q, args, err := qb.Insert(borrowTableName).
		Columns("user_id", "book_id", "borrow_date", "due_date", "status").
		Values(userID, bookID, now, due, model.BorrowBorrowed).
		Suffix("returning " + "id, user_id, book_id, borrow_date, due_date, return_date, status").
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	var rec model.BorrowRecord
	if err := tx.GetContext(ctx, &rec, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.BorrowRecord{}, errs.ErrAlreadyBorrowed
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

// BorrowWithUnit takes a copy off the shelf and opens the loan in one
// transaction. Losing the last-copy race surfaces as ErrNoCopyAvailable.
func (r *repository) BorrowWithUnit(ctx context.Context, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := reserveUnit(ctx, tx, bookID); err != nil {
			if errors.Is(err, errs.ErrOutOfStock) {
				return errs.ErrNoCopyAvailable
			}
			return err
		}
		var err error
		rec, err = insertBorrow(ctx, tx, userID, bookID, now, due)
		return err
	})
	return rec, err
}

// BorrowFromHold converts an ACTIVE hold into a loan. The unit was committed
// when the hold was placed, so the ledger is not touched.
func (r *repository) BorrowFromHold(ctx context.Context, holdID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
update holds set status = 'EXPIRED'
where id = $1 and status = 'ACTIVE'`, holdID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			// hold was consumed or swept concurrently
			return errs.ErrNoCopyAvailable
		}
		rec, err = insertBorrow(ctx, tx, userID, bookID, now, due)
		return err
	})
	return rec, err
}

// BorrowFromReservation claims a READY reservation's earmarked unit. No
// ledger movement: the unit was withheld from the counter at promotion.
func (r *repository) BorrowFromReservation(ctx context.Context, reservationID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
update reservations set status = 'BORROWED'
where id = $1 and status = 'READY'`, reservationID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return errs.ErrNoCopyAvailable
		}
		rec, err = insertBorrow(ctx, tx, userID, bookID, now, due)
		return err
	})
	return rec, err
}

// ReturnAndHandOff closes the loan and offers the freed unit to the
// reservation queue before it becomes generally available. Return plus
// promotion is one atomic handoff: when a waiter is promoted the counter is
// never incremented, other readers see no intermediate state.
func (r *repository) ReturnAndHandOff(ctx context.Context, recordID, bookID string, now time.Time, readyTTL time.Duration) (*model.Reservation, error) {
	var promoted *model.Reservation
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}

		// book_id is part of the guard: a return request carrying the wrong
		// book must not close this loan and hand the unit to another queue
		res, err := tx.ExecContext(ctx, `
update borrow_records
    set status = 'RETURNED', return_date = $2
where id = $1 and status = 'BORROWED' and book_id = $3`, recordID, now, bookID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return errs.ErrRecordNotBorrowed
		}

		promoted, err = promoteNext(ctx, tx, bookID, now.Add(readyTTL))
		if err != nil {
			return err
		}
		if promoted != nil {
			// freed unit is earmarked by the READY claim
			return nil
		}
		return releaseUnit(ctx, tx, bookID)
	})
	if err != nil {
		return nil, err
	}
	if promoted != nil {
		r.log.Debug("reservation promoted on return",
			zap.String("book_id", bookID), zap.String("reservation_id", promoted.ID))
	}
	return promoted, nil
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time) ([]OverdueLoan, error) {
	q := `
select br.id, br.user_id, br.book_id, br.borrow_date, br.due_date, br.return_date, br.status,
       f.id as fine_id, f.amount as fine_amount
from borrow_records br
left join fines f on f.borrow_record_id = br.id and f.status = 'PENDING'
where br.status = 'BORROWED' and br.due_date < $1
order by br.due_date`

	rows, err := r.db.QueryxContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OverdueLoan
	for rows.Next() {
		var o OverdueLoan
		if err := rows.Scan(
			&o.Record.ID, &o.Record.UserID, &o.Record.BookID,
			&o.Record.BorrowDate, &o.Record.DueDate, &o.Record.ReturnDate, &o.Record.Status,
			&o.FineID, &o.FineAmount,
		); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
