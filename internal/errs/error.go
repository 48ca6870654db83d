package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	ErrAccountNotApproved = errors.New("only approved users can borrow books")
	ErrAlreadyBorrowed    = errors.New("user already has this book on loan")
	ErrNoCopyAvailable    = errors.New("book is not available for borrowing")
	ErrRecordNotBorrowed  = errors.New("borrow record is not open")
	ErrAlreadyReserved    = errors.New("user already has a claim on this book")
	ErrAlreadyOnHold      = errors.New("user already has a hold on this book")
	ErrNoPendingFine      = errors.New("no pending fine found for this record")
	ErrFineExists         = errors.New("pending fine already exists for this record")
	ErrFineNotPayable     = errors.New("book must be returned before the fine can be paid")

	// Ledger invariant violations. These indicate a bug in the per-book
	// serialization, not a user error.
	ErrOutOfStock   = errors.New("no available copies")
	ErrOverCapacity = errors.New("available copies would exceed total copies")
)

// PriorityWindowError rejects non-faculty borrowers during the first 48 hours
// after a book is acquired. HoursLeft is rounded up so the message can say
// when the book opens up.
type PriorityWindowError struct {
	HoursLeft int
}

func (e *PriorityWindowError) Error() string {
	return fmt.Sprintf("only faculty may borrow this book in the first 48 hours, available in ~%d hour(s)", e.HoursLeft)
}
