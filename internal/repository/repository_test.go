package repository

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
	"github.com/univlib/circulation-service/migrations"
)

// Integration tests against a real Postgres; set TEST_DB_DSN to run them.

func newTestRepo(t *testing.T) *repository {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	goose.SetBaseFS(migrations.MigrationFiles)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db.DB, "."))

	r, err := NewRepository(db, zap.NewNop())
	require.NoError(t, err)
	return r
}

func seedUser(t *testing.T, db *sqlx.DB, name string) string {
	t.Helper()
	var id string
	require.NoError(t, db.Get(&id,
		`insert into users (name, role, status) values ($1, 'USER', 'APPROVED') returning id`, name))
	return id
}

func seedBook(t *testing.T, db *sqlx.DB, title string, total, available int) string {
	t.Helper()
	var id string
	require.NoError(t, db.Get(&id, `
insert into books (title, total_copies, available_copies, created_at)
values ($1, $2, $3, now() - interval '30 days')
returning id`, title, total, available))
	return id
}

func availableCopies(t *testing.T, db *sqlx.DB, bookID string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `select available_copies from books where id = $1`, bookID))
	return n
}

func TestReturnAndHandOff_BookMismatch(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	userID := seedUser(t, r.db, "mismatch reader")
	bookA := seedBook(t, r.db, "Operating Systems", 1, 1)
	bookB := seedBook(t, r.db, "Linear Algebra", 1, 1)

	now := time.Now().UTC()
	rec, err := r.BorrowWithUnit(ctx, userID, bookA, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 0, availableCopies(t, r.db, bookA))

	// returning A's record against B must not close the loan nor move B's unit
	promoted, err := r.ReturnAndHandOff(ctx, rec.ID, bookB, now, 48*time.Hour)
	require.ErrorIs(t, err, errs.ErrRecordNotBorrowed)
	require.Nil(t, promoted)

	got, err := r.GetBorrowRecord(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, model.BorrowBorrowed, got.Status)
	require.Equal(t, 0, availableCopies(t, r.db, bookA))
	require.Equal(t, 1, availableCopies(t, r.db, bookB))

	// the honest return still works
	promoted, err = r.ReturnAndHandOff(ctx, rec.ID, bookA, now, 48*time.Hour)
	require.NoError(t, err)
	require.Nil(t, promoted)
	require.Equal(t, 1, availableCopies(t, r.db, bookA))
}

func TestReservationQueue_PromotionOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	borrower := seedUser(t, r.db, "borrower")
	first := seedUser(t, r.db, "first in line")
	second := seedUser(t, r.db, "second in line")
	bookID := seedBook(t, r.db, "Compilers", 1, 1)

	now := time.Now().UTC()
	rec, err := r.BorrowWithUnit(ctx, borrower, bookID, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)

	rsvFirst, err := r.CreateReservation(ctx, first, bookID, now)
	require.NoError(t, err)
	rsvSecond, err := r.CreateReservation(ctx, second, bookID, now.Add(time.Second))
	require.NoError(t, err)
	require.Less(t, rsvFirst.Position, rsvSecond.Position)

	// return hands the unit to the earliest waiter, not the counter
	promoted, err := r.ReturnAndHandOff(ctx, rec.ID, bookID, now, 48*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, promoted)
	require.Equal(t, first, promoted.UserID)
	require.Equal(t, model.ReservationReady, promoted.Status)
	require.Equal(t, 0, availableCopies(t, r.db, bookID))

	// an expired pickup window cascades to the next waiter in order
	_, err = r.db.ExecContext(ctx,
		`update reservations set expiry_date = $2 where id = $1`,
		promoted.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	promotions, expired, err := r.ExpireReadyReservations(ctx, now, 48*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, expired)
	require.Len(t, promotions, 1)
	require.Equal(t, second, promotions[0].UserID)
	require.Equal(t, 0, availableCopies(t, r.db, bookID))

	// cancelling the last READY claim releases the unit to the shelf
	promoted, err = r.CancelReservation(ctx, promotions[0].ID, now, 48*time.Hour)
	require.NoError(t, err)
	require.Nil(t, promoted)
	require.Equal(t, 1, availableCopies(t, r.db, bookID))
}
