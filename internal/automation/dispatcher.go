package automation

import (
	"context"
	"strings"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/flowboardhq/flowboard/internal/datastore/repository"
	"github.com/flowboardhq/flowboard/internal/logger"
	"github.com/google/uuid"
)

// saveRunTimeout is the context deadline for persisting a run record.
const saveRunTimeout = 3 * time.Second

// Dispatcher evaluates board events against the active rules of the
// event's board. Rules are read fresh from the repository on every event;
// nothing is cached between events, so a rule edit takes effect on the
// very next dispatch.
type Dispatcher struct {
	rules repository.RuleRepository
	exec  *Executor
	log   logger.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(rules repository.RuleRepository, exec *Executor, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{rules: rules, exec: exec, log: log}
}

// HandleEvent runs every matching rule for the event. Errors are logged
// and recorded as failed runs but never propagated: a broken rule must not
// disturb the board mutation that triggered it, nor the other rules.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *BoardEvent) {
	dispatchID := uuid.NewString()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	rules, err := d.rules.FindActiveByBoardAndTrigger(ctx, event.BoardID, event.Trigger)
	if err != nil {
		d.log.Error("failed to load rules for event",
			logger.String("dispatch_id", dispatchID),
			logger.Uint64("board_id", uint64(event.BoardID)),
			logger.String("trigger", event.Trigger),
			logger.Error(err))
		return
	}

	for i := range rules {
		d.runRule(ctx, &rules[i], event, dispatchID)
	}
}

func (d *Dispatcher) runRule(ctx context.Context, rule *entities.AutomationRule, event *BoardEvent, dispatchID string) {
	if !ConditionMatches(rule.Condition, event.Properties, event.Timestamp) {
		return
	}

	if event.CardID == 0 {
		// Nothing to act on; recorded so the rule's activity view shows
		// why the firing produced no effect.
		d.recordRun(rule, event.CardID, entities.RunStatusSkipped, "event carries no card")
		return
	}

	err := d.exec.Execute(ctx, rule, event.CardID)
	if err != nil {
		d.recordRun(rule, event.CardID, entities.RunStatusFailed, err.Error())
		d.log.Error("automation rule failed",
			logger.String("dispatch_id", dispatchID),
			logger.Uint64("rule_id", uint64(rule.ID)),
			logger.Uint64("card_id", uint64(event.CardID)),
			logger.Error(err))
		return
	}

	d.recordRun(rule, event.CardID, entities.RunStatusSuccess, actionSummary(rule))
	d.log.Info("automation rule fired",
		logger.String("dispatch_id", dispatchID),
		logger.Uint64("rule_id", uint64(rule.ID)),
		logger.Uint64("card_id", uint64(event.CardID)),
		logger.String("trigger", event.Trigger))
}

// recordRun persists a run record with its own timeout so a slow write
// cannot stall dispatch indefinitely.
func (d *Dispatcher) recordRun(rule *entities.AutomationRule, cardID uint, status, message string) {
	saveCtx, cancel := context.WithTimeout(context.Background(), saveRunTimeout)
	defer cancel()

	run := &entities.AutomationRun{
		RuleID:  rule.ID,
		BoardID: rule.BoardID,
		CardID:  cardID,
		Status:  status,
		Message: message,
		FiredAt: time.Now(),
	}
	if err := d.rules.SaveRun(saveCtx, run); err != nil {
		d.log.Error("failed to save automation run",
			logger.Uint64("rule_id", uint64(rule.ID)),
			logger.Error(err))
	}
}

func actionSummary(rule *entities.AutomationRule) string {
	types := make([]string, 0, len(rule.Actions))
	for _, a := range rule.Actions {
		types = append(types, a.Type)
	}
	return strings.Join(types, ",")
}
