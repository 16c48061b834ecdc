package config

import (
	"github.com/cbsthiago-dev/progbunker-application/core/priority"
)

// PlannerConfig selects the request ordering rules by name. An empty
// list falls back to the built-in default order.
type PlannerConfig struct {
	Rules []string `json:"rules"`
}

// Validate checks that every rule name resolves.
func (c PlannerConfig) Validate() error {
	_, err := priority.Parse(c.Rules)
	return err
}

// RuleSet resolves the configured names. Valid only after Validate.
func (c PlannerConfig) RuleSet() priority.RuleSet {
	if len(c.Rules) == 0 {
		return priority.Default()
	}
	rs, err := priority.Parse(c.Rules)
	if err != nil {
		return priority.Default()
	}
	return rs
}
