// Package conf holds the automation engine settings and the Duration type
// used for human-readable intervals in settings files.
package conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SchedulerSettings controls the time-based rule scanner.
type SchedulerSettings struct {
	// Interval between scan passes. Rules' cron expressions are advisory;
	// the scanner wakes on this fixed cadence.
	Interval Duration `yaml:"interval" json:"interval"`
	// MaxCardsPerRule caps the number of cards a single rule may match in
	// one pass, bounding pathological queries.
	MaxCardsPerRule int `yaml:"max_cards_per_rule" json:"max_cards_per_rule"`
}

// RunSettings controls the automation run audit trail.
type RunSettings struct {
	// RetentionDays is how long run records are kept. Zero disables cleanup.
	RetentionDays int `yaml:"retention_days" json:"retention_days"`
}

// Settings is the engine configuration root.
type Settings struct {
	Scheduler SchedulerSettings `yaml:"scheduler" json:"scheduler"`
	Runs      RunSettings       `yaml:"runs" json:"runs"`
}

// Default returns the settings used when no file is provided.
func Default() Settings {
	return Settings{
		Scheduler: SchedulerSettings{
			Interval:        Duration(time.Minute),
			MaxCardsPerRule: 500,
		},
		Runs: RunSettings{
			RetentionDays: 30,
		},
	}
}

// Load reads settings from a YAML file, filling unset values from Default.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s.normalized(), nil
}

// normalized clamps nonsensical values back to defaults.
func (s Settings) normalized() Settings {
	def := Default()
	if s.Scheduler.Interval.Std() <= 0 {
		s.Scheduler.Interval = def.Scheduler.Interval
	}
	if s.Scheduler.MaxCardsPerRule <= 0 {
		s.Scheduler.MaxCardsPerRule = def.Scheduler.MaxCardsPerRule
	}
	if s.Runs.RetentionDays < 0 {
		s.Runs.RetentionDays = 0
	}
	return s
}
