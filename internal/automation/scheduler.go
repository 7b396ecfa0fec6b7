package automation

import (
	"context"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/flowboardhq/flowboard/internal/datastore/repository"
	"github.com/flowboardhq/flowboard/internal/logger"
	"github.com/google/uuid"
)

// scanTimeout bounds one full scheduler pass across all time-based rules.
const scanTimeout = 5 * time.Minute

// Scheduler periodically evaluates time-based rules against the cards of
// their boards. Rules and cards are read fresh on every pass; the only
// state carried between ticks is what is in the database. Cron expressions
// on rules are validated and stored but advisory: the scheduler wakes on a
// fixed cadence and evaluates every active time-based rule each pass.
type Scheduler struct {
	rules    repository.RuleRepository
	cards    repository.CardRepository
	exec     *Executor
	interval time.Duration
	maxCards int
	log      logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler creates a new Scheduler. maxCards caps how many cards a
// single rule may act on per pass.
func NewScheduler(rules repository.RuleRepository, cards repository.CardRepository, exec *Executor, interval time.Duration, maxCards int, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		rules:    rules,
		cards:    cards,
		exec:     exec,
		interval: interval,
		maxCards: maxCards,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the scan loop. The first scan happens one interval after
// Start, not immediately, so process startup is not dominated by rule work.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop signals the loop to exit and waits for any in-flight scan to
// complete. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.scanOnce()
		case <-s.stopCh:
			return
		}
	}
}

// scanOnce evaluates every active time-based rule. Each rule is isolated:
// a failing rule is logged and the pass moves on.
func (s *Scheduler) scanOnce() {
	passID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	rules, err := s.rules.FindActiveTimeBased(ctx)
	if err != nil {
		s.log.Error("scheduler failed to load time-based rules",
			logger.String("pass_id", passID),
			logger.Error(err))
		return
	}
	if len(rules) == 0 {
		return
	}

	now := time.Now()
	for i := range rules {
		rule := &rules[i]
		s.scanRule(ctx, rule, now, passID)
		if err := s.rules.TouchLastRun(ctx, rule.ID, now); err != nil {
			s.log.Error("failed to record rule last run",
				logger.String("pass_id", passID),
				logger.Uint64("rule_id", uint64(rule.ID)),
				logger.Error(err))
		}
	}
}

func (s *Scheduler) scanRule(ctx context.Context, rule *entities.AutomationRule, now time.Time, passID string) {
	cards, err := s.matchingCards(ctx, rule, now)
	if err != nil {
		s.log.Error("scheduler rule scan failed",
			logger.String("pass_id", passID),
			logger.Uint64("rule_id", uint64(rule.ID)),
			logger.Error(err))
		return
	}
	if len(cards) == 0 {
		return
	}

	s.log.Info("time-based rule matched cards",
		logger.String("pass_id", passID),
		logger.Uint64("rule_id", uint64(rule.ID)),
		logger.Int("cards", len(cards)))

	for i := range cards {
		card := &cards[i]
		if err := s.exec.Execute(ctx, rule, card.ID); err != nil {
			s.saveRun(rule, card.ID, entities.RunStatusFailed, err.Error())
			continue
		}
		s.saveRun(rule, card.ID, entities.RunStatusSuccess, actionSummary(rule))
	}
}

// matchingCards resolves the rule's condition into a card query. Temporal
// conditions push the cutoff into the query; field conditions are filtered
// in memory over the board's active cards. Both paths are capped.
func (s *Scheduler) matchingCards(ctx context.Context, rule *entities.AutomationRule, now time.Time) ([]entities.Card, error) {
	filter := repository.CardFilter{
		BoardID: rule.BoardID,
		Limit:   s.maxCards,
	}

	switch rule.Condition.Kind {
	case entities.ConditionOlderThan:
		cutoff := now.AddDate(0, 0, -rule.Condition.Days)
		switch rule.Condition.TimeField {
		case PropertyUpdatedAt:
			filter.UpdatedBefore = &cutoff
		case PropertyCreatedAt:
			filter.CreatedBefore = &cutoff
		default:
			s.log.Warn("time-based rule references unknown time field",
				logger.Uint64("rule_id", uint64(rule.ID)),
				logger.String("time_field", rule.Condition.TimeField))
			return nil, nil
		}
		return s.cards.FindCards(ctx, filter)

	case entities.ConditionAlways:
		return s.cards.FindCards(ctx, filter)

	case entities.ConditionField:
		cards, err := s.cards.FindCards(ctx, filter)
		if err != nil {
			return nil, err
		}
		matched := cards[:0]
		for i := range cards {
			if ConditionMatches(rule.Condition, cardProperties(&cards[i]), now) {
				matched = append(matched, cards[i])
			}
		}
		return matched, nil

	default:
		// Unknown condition shapes never match.
		return nil, nil
	}
}

func (s *Scheduler) saveRun(rule *entities.AutomationRule, cardID uint, status, message string) {
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
	if err := s.rules.SaveRun(saveCtx, run); err != nil {
		s.log.Error("failed to save automation run",
			logger.Uint64("rule_id", uint64(rule.ID)),
			logger.Error(err))
	}
}
