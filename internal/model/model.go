package model

import (
	"time"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleFaculty Role = "FACULTY"
	RoleAdmin   Role = "ADMIN"
)

type UserStatus string

const (
	UserPending  UserStatus = "PENDING"
	UserApproved UserStatus = "APPROVED"
	UserRejected UserStatus = "REJECTED"
)

// User is owned by the identity service; the circulation core reads role and
// status, and flips status on fine transitions.
type User struct {
	ID     string     `json:"id" db:"id"`
	Name   string     `json:"name" db:"name"`
	Role   Role       `json:"role" db:"role"`
	Status UserStatus `json:"status" db:"status"`
}

type Book struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

type BorrowStatus string

const (
	BorrowBorrowed BorrowStatus = "BORROWED"
	BorrowReturned BorrowStatus = "RETURNED"
)

type BorrowRecord struct {
	ID         string       `json:"id" db:"id"`
	UserID     string       `json:"userId" db:"user_id"`
	BookID     string       `json:"bookId" db:"book_id"`
	BorrowDate time.Time    `json:"borrowDate" db:"borrow_date"`
	DueDate    time.Time    `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time   `json:"returnDate,omitempty" db:"return_date"`
	Status     BorrowStatus `json:"status" db:"status"`
}

type HoldStatus string

const (
	HoldActive  HoldStatus = "ACTIVE"
	HoldExpired HoldStatus = "EXPIRED"
)

// Hold is an immediate commitment of one copy; it decrements the ledger the
// moment it is placed, unlike a reservation.
type Hold struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	BookID    string     `json:"bookId" db:"book_id"`
	Status    HoldStatus `json:"status" db:"status"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
}

type ReservationStatus string

const (
	ReservationWaiting   ReservationStatus = "WAITING"
	ReservationReady     ReservationStatus = "READY"
	ReservationBorrowed  ReservationStatus = "BORROWED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a FIFO queue entry for a fully checked-out book. A READY
// reservation carries an implicit claim on one copy; that copy is not counted
// in Book.AvailableCopies while the claim lives.
type Reservation struct {
	ID              string            `json:"id" db:"id"`
	UserID          string            `json:"userId" db:"user_id"`
	BookID          string            `json:"bookId" db:"book_id"`
	Position        int               `json:"position" db:"position"`
	Status          ReservationStatus `json:"status" db:"status"`
	ReservationDate time.Time         `json:"reservationDate" db:"reservation_date"`
	ExpiryDate      *time.Time        `json:"expiryDate,omitempty" db:"expiry_date"`
}

type FineStatus string

const (
	FinePending FineStatus = "PENDING"
	FinePaid    FineStatus = "PAID"
	FineWaived  FineStatus = "WAIVED"
)

type FineIssuer string

const (
	IssuedBySystem FineIssuer = "SYSTEM"
	IssuedByAdmin  FineIssuer = "ADMIN"
)

// Fine amounts are minor currency units. While PENDING the amount only grows
// across overdue sweeps, never shrinks.
type Fine struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"userId" db:"user_id"`
	BorrowRecordID string     `json:"borrowRecordId" db:"borrow_record_id"`
	Amount         int64      `json:"amount" db:"amount"`
	Reason         string     `json:"reason" db:"reason"`
	Status         FineStatus `json:"status" db:"status"`
	IssuedAt       time.Time  `json:"issuedAt" db:"issued_at"`
	PaidAt         *time.Time `json:"paidAt,omitempty" db:"paid_at"`
	IssuedBy       FineIssuer `json:"issuedBy" db:"issued_by"`
}

type BorrowRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	BookID string `json:"bookId" validate:"required,uuid"`
}

type ReturnRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
}

type HoldRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	BookID string `json:"bookId" validate:"required,uuid"`
}

type ReserveRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	BookID string `json:"bookId" validate:"required,uuid"`
}

type ManualFineRequest struct {
	BorrowRecordID string `json:"borrowRecordId" validate:"required,uuid"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	Reason         string `json:"reason" validate:"required"`
}

type WaiveFineRequest struct {
	BorrowRecordID string `json:"borrowRecordId" validate:"required,uuid"`
}

// QueuePositionResponse reports a zero-based "you are Nth in line" count of
// WAITING entries ahead of the reservation.
type QueuePositionResponse struct {
	Reservation   Reservation `json:"reservation"`
	QueuePosition int         `json:"queuePosition"`
}

type SweepSummary struct {
	Processed int `json:"processed"`
}
