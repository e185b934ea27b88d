/*
scheduler.go - Background recalculation scheduler

PURPOSE:
  Keeps the prior month's commission records current while late-arriving
  orders and config corrections come in. On an interval, re-runs the
  monthly calculation for the previous calendar month when a rate
  snapshot exists for it. Runs are keyed upserts, so each pass replaces
  records in place.

BEHAVIOR:
  - Checks immediately on start, then on every tick
  - A month with no snapshot is skipped quietly
  - RunNow() triggers one check synchronously (used by tests)

SEE ALSO:
  - engine/engine.go: The run orchestration this scheduler triggers
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/store"
)

// RecalcScheduler periodically re-runs the prior month's calculation.
type RecalcScheduler struct {
	Store  store.Store
	Engine *engine.Engine

	// CheckInterval is how often to recalculate (default: 1 hour)
	CheckInterval time.Duration

	// Enabled controls whether the scheduler runs
	Enabled bool

	log     *zap.Logger
	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewRecalcScheduler creates a scheduler with default settings.
func NewRecalcScheduler(st store.Store, eng *engine.Engine, log *zap.Logger) *RecalcScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecalcScheduler{
		Store:         st,
		Engine:        eng,
		CheckInterval: time.Hour,
		Enabled:       true,
		log:           log,
		stop:          make(chan bool),
	}
}

// Start begins the background loop. No-op if already running or disabled.
func (s *RecalcScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || !s.Enabled {
		return
	}
	s.running = true
	s.wg.Add(1)
	go s.run()
	s.log.Info("recalc scheduler started", zap.Duration("interval", s.CheckInterval))
}

// Stop halts the background loop and waits for it to finish.
func (s *RecalcScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	s.log.Info("recalc scheduler stopped")
}

func (s *RecalcScheduler) run() {
	defer s.wg.Done()

	// Check immediately on startup
	s.checkAndProcess()

	ticker := time.NewTicker(s.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkAndProcess()
		case <-s.stop:
			return
		}
	}
}

// RunNow triggers one recalculation pass synchronously.
func (s *RecalcScheduler) RunNow() {
	s.checkAndProcess()
}

func (s *RecalcScheduler) checkAndProcess() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	month := comp.MonthOf(time.Now().UTC()).Prev()

	// No snapshot means the month is not configured yet; nothing to do.
	if _, err := s.Store.GetMonthlySnapshot(ctx, month); err != nil {
		if !errors.Is(err, comp.ErrConfigNotFound) {
			s.log.Warn("recalc check failed", zap.String("month", month.String()), zap.Error(err))
		}
		return
	}

	res, err := s.Engine.RunMonthly(ctx, month)
	if err != nil {
		s.log.Error("scheduled recalc failed", zap.String("month", month.String()), zap.Error(err))
		return
	}
	s.log.Info("scheduled recalc completed",
		zap.String("month", month.String()),
		zap.Int("records", res.Run.RecordsWritten),
		zap.String("total_commission", res.Run.TotalPaid.String()))
}
