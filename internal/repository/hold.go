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

var holdColumns = []string{"id", "user_id", "book_id", "status", "expires_at"}

func (r *repository) GetActiveHold(ctx context.Context, userID, bookID string) (model.Hold, error) {
	q, args, err := qb.Select(holdColumns...).
		From(holdsTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID, "status": model.HoldActive}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Hold{}, err
	}

	var h model.Hold
	if err := r.db.GetContext(ctx, &h, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Hold{}, errs.ErrNotFound
		}
		return model.Hold{}, err
	}
	return h, nil
}

// PlaceHold commits a unit immediately: conditional decrement plus insert in
// one transaction. A hold is not a queue entry, it is a claimed copy.
func (r *repository) PlaceHold(ctx context.Context, userID, bookID string, expiresAt time.Time) (model.Hold, error) {
	var h model.Hold
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := reserveUnit(ctx, tx, bookID); err != nil {
			if errors.Is(err, errs.ErrOutOfStock) {
				return errs.ErrNoCopyAvailable
			}
			return err
		}

		q := `
insert into holds (user_id, book_id, status, expires_at)
values ($1, $2, 'ACTIVE', $3)
returning id, user_id, book_id, status, expires_at`
		if err := tx.GetContext(ctx, &h, q, userID, bookID, expiresAt); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyOnHold
			}
			return err
		}
		return nil
	})
	return h, err
}

// ExpireHolds releases timed-out holds back to general availability. Holds do
// not cascade into the reservation queue (see DESIGN.md).
func (r *repository) ExpireHolds(ctx context.Context, now time.Time) (int, error) {
	released := 0

	for {
		var done bool
		err := r.withTx(ctx, func(tx *sqlx.Tx) error {
			var h model.Hold
			q := `
select id, user_id, book_id, status, expires_at
from holds
where status = 'ACTIVE' and expires_at < $1
order by expires_at
limit 1
for update skip locked`
			if err := tx.GetContext(ctx, &h, q, now); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					done = true
					return nil
				}
				return err
			}

			if _, err := tx.ExecContext(ctx,
				`update holds set status = 'EXPIRED' where id = $1`, h.ID); err != nil {
				return err
			}
			return releaseUnit(ctx, tx, h.BookID)
		})
		if err != nil {
			return released, err
		}
		if done {
			break
		}
		released++
	}

	if released > 0 {
		r.log.Info("expired holds released", zap.Int("released", released))
	}
	return released, nil
}
