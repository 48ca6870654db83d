package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/univlib/circulation-service/config"
	"github.com/univlib/circulation-service/internal/handler"
	"github.com/univlib/circulation-service/internal/notifier"
	"github.com/univlib/circulation-service/internal/repository"
	"github.com/univlib/circulation-service/internal/scheduler"
	"github.com/univlib/circulation-service/internal/server"
	"github.com/univlib/circulation-service/internal/service"
	"github.com/univlib/circulation-service/migrations"
	"github.com/univlib/circulation-service/pkg/kafka"
	"github.com/univlib/circulation-service/pkg/logger"
	"github.com/univlib/circulation-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "circulation")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %v", err)
	}

	var notify service.Notifier = notifier.Noop{}
	if cfg.Circulation.KafkaEnabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer %v", err)
		}
		defer producer.Close()
		notify = notifier.New(producer, cfg.Kafka.Topic, log)
	}

	svc := service.NewService(repo, notify, service.Policy{
		LoanPeriod:     cfg.Circulation.LoanPeriod,
		HoldTTL:        cfg.Circulation.HoldTTL,
		ReadyTTL:       cfg.Circulation.ReadyTTL,
		PriorityWindow: cfg.Circulation.PriorityWindow,
		DailyFineRate:  cfg.Circulation.DailyFineRate,
	}, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	runCtx, cancel := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		return scheduler.New(svc, cfg.Circulation.SweepInterval, log).Run(gCtx)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	if err = g.Wait(); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
