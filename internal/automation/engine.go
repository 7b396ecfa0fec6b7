package automation

import (
	"context"
	"sync"
	"time"

	"github.com/flowboardhq/flowboard/internal/conf"
	"github.com/flowboardhq/flowboard/internal/datastore/repository"
	"github.com/flowboardhq/flowboard/internal/logger"
)

const (
	// dispatchTimeout bounds rule processing for one event delivered
	// through the bus.
	dispatchTimeout = 30 * time.Second
	// cleanupTimeout is the context deadline for the periodic run deletion.
	cleanupTimeout = 5 * time.Second
	// cleanupInterval is how often the run cleanup goroutine wakes.
	cleanupInterval = 1 * time.Hour
)

// Engine wires the automation components together: the event bus feeding
// the dispatcher, the time-based scheduler, and the run-history cleanup.
// Construct with NewEngine, then Start; Stop shuts everything down and
// waits for in-flight work.
type Engine struct {
	settings   conf.Settings
	rules      repository.RuleRepository
	bus        *EventBus
	dispatcher *Dispatcher
	scheduler  *Scheduler
	log        logger.Logger

	cleanupStop chan struct{}
	cleanupMu   sync.Mutex
}

// NewEngine creates an automation engine over the given stores. The
// relocator handles MOVE_CARD actions; everything else goes through the
// card repository.
func NewEngine(settings conf.Settings, rules repository.RuleRepository, cards repository.CardRepository, relocator CardRelocator, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	exec := NewExecutor(cards, relocator, log.With(logger.String("component", "executor")))
	return &Engine{
		settings:   settings,
		rules:      rules,
		bus:        NewEventBus(),
		dispatcher: NewDispatcher(rules, exec, log.With(logger.String("component", "dispatcher"))),
		scheduler: NewScheduler(rules, cards, exec,
			settings.Scheduler.Interval.Std(), settings.Scheduler.MaxCardsPerRule,
			log.With(logger.String("component", "scheduler"))),
		log: log,
	}
}

// Start subscribes the dispatcher to the bus and launches the scheduler
// and the run cleanup goroutine.
func (e *Engine) Start() {
	e.bus.Subscribe(func(event *BoardEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		e.dispatcher.HandleEvent(ctx, event)
	})
	e.scheduler.Start()
	e.startRunCleanup(e.settings.Runs.RetentionDays)
	e.log.Info("automation engine started",
		logger.Duration("scan_interval", e.settings.Scheduler.Interval.Std()),
		logger.Int("max_cards_per_rule", e.settings.Scheduler.MaxCardsPerRule))
}

// Stop shuts down the scheduler, drains and stops the bus, and stops the
// cleanup goroutine. Blocks until in-flight work has finished.
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.bus.Stop()
	e.stopCleanup()
	e.log.Info("automation engine stopped")
}

// Publish enqueues a board event for asynchronous dispatch. Never blocks.
func (e *Engine) Publish(event *BoardEvent) {
	e.bus.Publish(event)
}

// HandleEvent dispatches an event synchronously, for callers that need
// rule effects applied before they return.
func (e *Engine) HandleEvent(ctx context.Context, event *BoardEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.dispatcher.HandleEvent(ctx, event)
}

// startRunCleanup starts a background goroutine that periodically deletes
// run records older than retentionDays. A value of 0 disables cleanup.
func (e *Engine) startRunCleanup(retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	e.stopCleanup()
	e.cleanupMu.Lock()
	e.cleanupStop = make(chan struct{})
	stopCh := e.cleanupStop
	e.cleanupMu.Unlock()
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retentionDays)
				cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
				deleted, err := e.rules.DeleteRunsBefore(cleanupCtx, cutoff)
				cancel()
				if err != nil {
					e.log.Error("automation run cleanup failed", logger.Error(err))
				} else if deleted > 0 {
					e.log.Info("automation run cleanup completed",
						logger.Int64("deleted", deleted),
						logger.Int("retention_days", retentionDays))
				}
			case <-stopCh:
				return
			}
		}
	}()
}

// stopCleanup signals the cleanup goroutine to exit. The mutex makes the
// nil-check-then-close atomic, preventing double-close panics when Stop
// and startRunCleanup race.
func (e *Engine) stopCleanup() {
	e.cleanupMu.Lock()
	ch := e.cleanupStop
	e.cleanupStop = nil
	e.cleanupMu.Unlock()
	if ch != nil {
		close(ch)
	}
}
