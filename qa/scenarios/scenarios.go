// Package scenarios runs YAML-defined planning scenarios end to end:
// snapshot in, finalized schedule out, outcome checked against the
// scenario's expectations.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cbsthiago-dev/progbunker-application/config"
	"github.com/cbsthiago-dev/progbunker-application/core/dispatch"
	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/priority"
	"github.com/cbsthiago-dev/progbunker-application/core/schedule"
)

type Expected struct {
	Deliveries  int      `yaml:"deliveries"`
	Recharges   int      `yaml:"recharges"`
	Unscheduled []string `yaml:"unscheduled,omitempty"`
}

type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Rules       []string        `yaml:"rules,omitempty"`
	Snapshot    config.Snapshot `yaml:",inline"`
	Expected    Expected        `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Run plans the scenario's snapshot and checks the outcome.
func Run(sc *Scenario) error {
	rules, err := priority.Parse(sc.Rules)
	if err != nil {
		return err
	}
	in := sc.Snapshot.ToInput(rules)

	engine := dispatch.NewEngine(nil)
	res, err := engine.Plan(in)
	if err != nil {
		return err
	}
	events, err := schedule.NewEmitter(nil).Finalize(res, in)
	if err != nil {
		return err
	}

	deliveries, recharges := 0, 0
	for _, ev := range events {
		switch ev.Kind {
		case model.EventDelivery:
			deliveries++
		case model.EventRecharge:
			recharges++
		}
	}
	if deliveries != sc.Expected.Deliveries {
		return fmt.Errorf("%s: expected %d deliveries, got %d", sc.Name, sc.Expected.Deliveries, deliveries)
	}
	if recharges != sc.Expected.Recharges {
		return fmt.Errorf("%s: expected %d recharges, got %d", sc.Name, sc.Expected.Recharges, recharges)
	}
	if len(res.Unscheduled) != len(sc.Expected.Unscheduled) {
		return fmt.Errorf("%s: expected unscheduled %v, got %v", sc.Name, sc.Expected.Unscheduled, res.Unscheduled)
	}
	for i, ship := range sc.Expected.Unscheduled {
		if res.Unscheduled[i] != ship {
			return fmt.Errorf("%s: expected unscheduled %v, got %v", sc.Name, sc.Expected.Unscheduled, res.Unscheduled)
		}
	}
	return nil
}
