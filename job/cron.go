package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/XyloTech/GOVERN.AI/service"
	"github.com/robfig/cron/v3"
)

// LifecycleSweeper runs the nightly contract lifecycle sweep: active
// contracts past their expiration date become expired, and active
// contracts past their renewal date become pending_renewal.
type LifecycleSweeper struct {
	repo *service.ContractRepo
	cron *cron.Cron
}

func NewLifecycleSweeper(repo *service.ContractRepo) *LifecycleSweeper {
	return &LifecycleSweeper{
		repo: repo,
		cron: cron.New(),
	}
}

// Start schedules the sweep at 02:00 every day and runs one sweep
// immediately so a restarted service catches up without waiting.
func (s *LifecycleSweeper) Start() error {
	if _, err := s.cron.AddFunc("0 2 * * *", s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.Sweep()
	return nil
}

func (s *LifecycleSweeper) Stop() {
	s.cron.Stop()
}

// Sweep applies both lifecycle transitions once. Expiration runs first
// so a contract past both dates ends up expired, not pending renewal.
func (s *LifecycleSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	expired, err := s.repo.ExpireContracts(ctx, now)
	if err != nil {
		slog.Error("lifecycle sweep: expire pass failed", "error", err)
		return
	}
	renewals, err := s.repo.MarkPendingRenewal(ctx, now)
	if err != nil {
		slog.Error("lifecycle sweep: renewal pass failed", "error", err)
		return
	}

	if expired > 0 || renewals > 0 {
		slog.Info("lifecycle sweep completed", "expired", expired, "pending_renewal", renewals)
	}
}
