package handler

import (
	"context"

	"github.com/univlib/circulation-service/internal/model"
	"github.com/univlib/circulation-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CirculationService interface {
	Borrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error)
	Return(ctx context.Context, recordID, bookID string) error
	PlaceHold(ctx context.Context, userID, bookID string) (model.Hold, error)
	Reserve(ctx context.Context, userID, bookID string) (model.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) error
	QueuePosition(ctx context.Context, userID, bookID string) (model.QueuePositionResponse, error)
	PayFine(ctx context.Context, fineID string) (model.Fine, error)
	WaiveFine(ctx context.Context, borrowRecordID string) error
	AddManualFine(ctx context.Context, borrowRecordID string, amount int64, reason string) (model.Fine, error)
	SweepOverdue(ctx context.Context) (model.SweepSummary, error)
	SweepReadyExpiry(ctx context.Context) (model.SweepSummary, error)
	SweepHoldExpiry(ctx context.Context) (model.SweepSummary, error)
}

var _ CirculationService = (*service.Service)(nil)
