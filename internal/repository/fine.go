package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

func (r *repository) GetFineWithBorrowStatus(ctx context.Context, fineID string) (model.Fine, model.BorrowStatus, error) {
	q := `
select f.id, f.user_id, f.borrow_record_id, f.amount, f.reason, f.status, f.issued_at, f.paid_at, f.issued_by,
       br.status as borrow_status
from fines f
join borrow_records br on br.id = f.borrow_record_id
where f.id = $1`

	var row struct {
		model.Fine
		BorrowStatus model.BorrowStatus `db:"borrow_status"`
	}
	if err := r.db.GetContext(ctx, &row, q, fineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Fine{}, "", errs.ErrNotFound
		}
		return model.Fine{}, "", err
	}
	return row.Fine, row.BorrowStatus, nil
}

func (r *repository) InsertFine(ctx context.Context, f model.Fine) (model.Fine, error) {
	q := `
insert into fines (user_id, borrow_record_id, amount, reason, status, issued_at, issued_by)
values ($1, $2, $3, $4, 'PENDING', $5, $6)
returning id, user_id, borrow_record_id, amount, reason, status, issued_at, paid_at, issued_by`

	var out model.Fine
	if err := r.db.GetContext(ctx, &out, q,
		f.UserID, f.BorrowRecordID, f.Amount, f.Reason, f.IssuedAt, f.IssuedBy); err != nil {
		if isUniqueViolation(err) {
			// a concurrent sweep got there first
			return model.Fine{}, errs.ErrFineExists
		}
		return model.Fine{}, err
	}
	return out, nil
}

// RaiseFine grows a pending fine. The amount guard keeps it monotonic: a
// stale sweep recomputing a smaller amount changes nothing.
func (r *repository) RaiseFine(ctx context.Context, fineID string, amount int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `
update fines set amount = $2, reason = $3
where id = $1 and status = 'PENDING' and amount < $2`, fineID, amount, reason)
	return err
}

func (r *repository) PayFine(ctx context.Context, fineID string, now time.Time) (model.Fine, error) {
	q := `
update fines set status = 'PAID', paid_at = $2
where id = $1 and status = 'PENDING'
returning id, user_id, borrow_record_id, amount, reason, status, issued_at, paid_at, issued_by`

	var f model.Fine
	if err := r.db.GetContext(ctx, &f, q, fineID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Fine{}, errs.ErrNoPendingFine
		}
		return model.Fine{}, err
	}
	return f, nil
}

func (r *repository) WaivePendingFine(ctx context.Context, borrowRecordID string) (string, error) {
	q := `
update fines set status = 'WAIVED'
where borrow_record_id = $1 and status = 'PENDING'
returning user_id`

	var userID string
	if err := r.db.QueryRowxContext(ctx, q, borrowRecordID).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errs.ErrNoPendingFine
		}
		return "", err
	}
	return userID, nil
}

func (r *repository) CountPendingFines(ctx context.Context, userID string) (int, error) {
	q := `
select count(*) from fines
where user_id = $1 and status = 'PENDING'`
	var count int
	if err := r.db.QueryRowxContext(ctx, q, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
