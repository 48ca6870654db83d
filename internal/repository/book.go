package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
)

func (r *repository) GetBook(ctx context.Context, bookID string) (model.Book, error) {
	q, args, err := qb.Select("id", "title", "total_copies", "available_copies", "created_at").
		From(booksTableName).
		Where(sq.Eq{"id": bookID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

// ReserveUnit is the only decrement path for available_copies. The conditional
// update makes the last-copy race lose cleanly instead of going negative.
func (r *repository) ReserveUnit(ctx context.Context, bookID string) error {
	return reserveUnit(ctx, r.db, bookID)
}

// ReleaseUnit is the only increment path. The capacity guard should never
// fire under correct callers; when it does, that is a serialization bug.
func (r *repository) ReleaseUnit(ctx context.Context, bookID string) error {
	if err := releaseUnit(ctx, r.db, bookID); err != nil {
		if errors.Is(err, errs.ErrOverCapacity) {
			r.log.Error("ledger over capacity", zap.String("book_id", bookID))
		}
		return err
	}
	return nil
}

func reserveUnit(ctx context.Context, q sqlx.ExecerContext, bookID string) error {
	res, err := q.ExecContext(ctx, `
update books
    set available_copies = available_copies - 1
where id = $1 and available_copies > 0`, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrOutOfStock
	}
	return nil
}

func releaseUnit(ctx context.Context, q sqlx.ExecerContext, bookID string) error {
	res, err := q.ExecContext(ctx, `
update books
    set available_copies = available_copies + 1
where id = $1 and available_copies < total_copies`, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrOverCapacity
	}
	return nil
}
