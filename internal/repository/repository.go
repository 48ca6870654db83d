package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/model"
)

// OverdueLoan is a BORROWED record past due, joined with its pending fine if
// one exists.
type OverdueLoan struct {
	Record     model.BorrowRecord
	FineID     *string
	FineAmount *int64
}

type Repository interface {
	// users
	GetUser(ctx context.Context, userID string) (model.User, error)
	SetUserStatus(ctx context.Context, userID string, status model.UserStatus) error

	// inventory ledger
	GetBook(ctx context.Context, bookID string) (model.Book, error)
	ReserveUnit(ctx context.Context, bookID string) error
	ReleaseUnit(ctx context.Context, bookID string) error

	// borrow state machine
	GetOpenBorrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error)
	GetBorrowRecord(ctx context.Context, recordID string) (model.BorrowRecord, error)
	BorrowWithUnit(ctx context.Context, userID, bookID string, now, due time.Time) (model.BorrowRecord, error)
	BorrowFromHold(ctx context.Context, holdID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error)
	BorrowFromReservation(ctx context.Context, reservationID, userID, bookID string, now, due time.Time) (model.BorrowRecord, error)
	ReturnAndHandOff(ctx context.Context, recordID, bookID string, now time.Time, readyTTL time.Duration) (*model.Reservation, error)
	ListOverdue(ctx context.Context, now time.Time) ([]OverdueLoan, error)

	// hold manager
	GetActiveHold(ctx context.Context, userID, bookID string) (model.Hold, error)
	PlaceHold(ctx context.Context, userID, bookID string, expiresAt time.Time) (model.Hold, error)
	ExpireHolds(ctx context.Context, now time.Time) (int, error)

	// reservation queue
	CreateReservation(ctx context.Context, userID, bookID string, now time.Time) (model.Reservation, error)
	GetReadyReservation(ctx context.Context, userID, bookID string) (model.Reservation, error)
	HasQueueClaim(ctx context.Context, userID, bookID string) (bool, error)
	QueuePosition(ctx context.Context, userID, bookID string) (model.Reservation, int, error)
	CancelReservation(ctx context.Context, reservationID string, now time.Time, readyTTL time.Duration) (*model.Reservation, error)
	ExpireReadyReservations(ctx context.Context, now time.Time, readyTTL time.Duration) ([]model.Reservation, int, error)

	// fine engine
	GetFineWithBorrowStatus(ctx context.Context, fineID string) (model.Fine, model.BorrowStatus, error)
	InsertFine(ctx context.Context, f model.Fine) (model.Fine, error)
	RaiseFine(ctx context.Context, fineID string, amount int64, reason string) error
	PayFine(ctx context.Context, fineID string, now time.Time) (model.Fine, error)
	WaivePendingFine(ctx context.Context, borrowRecordID string) (string, error)
	CountPendingFines(ctx context.Context, userID string) (int, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	booksTableName        = `books`
	borrowTableName       = `borrow_records`
	holdsTableName        = `holds`
	reservationsTableName = `reservations`
	finesTableName        = `fines`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// lockBook serializes every multi-step mutation touching one book's pool.
func lockBook(ctx context.Context, tx *sqlx.Tx, bookID string) error {
	var id string
	if err := tx.QueryRowxContext(ctx,
		`select id from books where id = $1 for update`, bookID).Scan(&id); err != nil {
		return err
	}
	return nil
}
