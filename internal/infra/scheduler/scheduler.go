package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kavita_notification_bot/internal/app"
	"kavita_notification_bot/internal/domain/notified"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// State of the cycle scheduler.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// defaultStartupDelay gives the bot time to finish its own startup before the
// first cycle runs.
const defaultStartupDelay = 10 * time.Second

// CycleScheduler owns the timer that drives detection cycles: one initial
// cycle shortly after Start, then a repeating cycle at the configured
// interval, plus ad-hoc manual triggers via CheckNow. It also owns the
// in-memory notified set, loaded from the durable store on every Start.
//
// Cycles are serialized with a busy flag: while one is in flight, any further
// trigger is a no-op rather than queued. That keeps the notified set free of
// concurrent mutation, which is the one invariant the pipeline depends on.
type CycleScheduler struct {
	notifService app.NotificationService
	store        notified.Store
	logger       *logrus.Logger
	interval     time.Duration
	startupDelay time.Duration

	cronEngine   *cron.Cron
	initialTimer *time.Timer

	mu    sync.Mutex
	state State
	set   *notified.Set
	busy  bool
}

func NewCycleScheduler(
	notifService app.NotificationService,
	store notified.Store,
	logger *logrus.Logger,
	interval time.Duration,
) *CycleScheduler {
	return &CycleScheduler{
		notifService: notifService,
		store:        store,
		logger:       logger,
		interval:     interval,
		startupDelay: defaultStartupDelay,
		state:        StateIdle,
	}
}

func (s *CycleScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start moves the scheduler to running: it validates the interval, loads the
// notified set, schedules the initial cycle after the startup delay and arms
// the repeating timer. An invalid interval is a setup error and nothing is
// scheduled. Calling Start after Stop reloads the set from the durable store;
// stale in-memory state is never reused.
func (s *CycleScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if s.interval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", s.interval)
	}

	s.set = s.store.Load(ctx)
	s.logger.Infof("Cycle scheduler starting: %d notified id(s) loaded, interval %s", s.set.Len(), s.interval)

	s.initialTimer = time.AfterFunc(s.startupDelay, func() {
		s.runCycle(app.CycleInitial)
	})

	s.cronEngine = cron.New()
	if _, err := s.cronEngine.AddFunc("@every "+s.interval.String(), func() {
		s.runCycle(app.CycleScheduled)
	}); err != nil {
		s.initialTimer.Stop()
		return fmt.Errorf("could not schedule recurring cycle: %w", err)
	}
	s.cronEngine.Start()

	s.state = StateRunning
	s.logger.Infof("Cycle scheduler running; initial cycle in %s", s.startupDelay)
	return nil
}

// CheckNow runs a manual cycle in the calling goroutine without disturbing
// the repeating timer. A no-op unless the scheduler is running; a no-op too
// when a cycle is already in flight.
func (s *CycleScheduler) CheckNow() {
	if s.State() != StateRunning {
		s.logger.Warn("Manual check requested but scheduler is not running")
		return
	}
	s.runCycle(app.CycleManual)
}

// Stop clears the timers. No further cycles start; an in-flight cycle runs to
// completion. Terminal until the next Start.
func (s *CycleScheduler) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	initialTimer := s.initialTimer
	cronEngine := s.cronEngine
	s.mu.Unlock()

	s.logger.Info("Stopping cycle scheduler...")
	if initialTimer != nil {
		initialTimer.Stop()
	}
	if cronEngine != nil {
		stopCtx := cronEngine.Stop() // Waits for running cron jobs
		<-stopCtx.Done()
	}
	s.logger.Info("Cycle scheduler stopped.")
}

// runCycle executes one cycle unless another is already in flight.
func (s *CycleScheduler) runCycle(kind app.CycleKind) {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	if s.busy {
		s.mu.Unlock()
		s.logger.Infof("A cycle is already in flight; skipping %s trigger", kind)
		return
	}
	s.busy = true
	set := s.set
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	s.notifService.RunCycle(context.Background(), kind, set)
}
