package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/model"
	"github.com/univlib/circulation-service/internal/repository"
)

// Notifier delivers availability events to whatever transport the deployment
// wires in; circulation never fails on notification errors.
type Notifier interface {
	BookAvailable(ctx context.Context, userID, bookTitle string) error
}

// Policy holds the circulation knobs. Durations come from config; defaults
// mirror the standing library rules.
type Policy struct {
	LoanPeriod     time.Duration
	HoldTTL        time.Duration
	ReadyTTL       time.Duration
	PriorityWindow time.Duration
	DailyFineRate  int64
}

func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:     7 * 24 * time.Hour,
		HoldTTL:        48 * time.Hour,
		ReadyTTL:       48 * time.Hour,
		PriorityWindow: 48 * time.Hour,
		DailyFineRate:  100,
	}
}

type Service struct {
	log      *zap.Logger
	repo     repository.Repository
	notifier Notifier
	policy   Policy
}

func NewService(repo repository.Repository, notifier Notifier, policy Policy, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		notifier: notifier,
		policy:   policy,
	}
}

func (s *Service) notifyReady(ctx context.Context, rsv model.Reservation) {
	book, err := s.repo.GetBook(ctx, rsv.BookID)
	if err != nil {
		s.log.Error("notifyReady: get book", zap.String("book_id", rsv.BookID), zap.Error(err))
		return
	}
	if err := s.notifier.BookAvailable(ctx, rsv.UserID, book.Title); err != nil {
		s.log.Error("notifyReady: publish",
			zap.String("user_id", rsv.UserID), zap.String("book_id", rsv.BookID), zap.Error(err))
	}
}
