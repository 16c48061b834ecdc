// Package priority orders pending refueling requests. A rule set is an
// ordered list of named comparators applied lexicographically; later
// rules only break ties left by earlier ones, and an implicit final rule
// preserves the original request order.
package priority

import (
	"fmt"
	"sort"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// Rule compares two requests; a negative result ranks a before b.
type Rule func(a, b model.RefuelingRequest) int

// Named rules selectable from configuration.
const (
	RuleContractDate  = "contract_date"  // earlier contractual date first
	RuleWindowEnd     = "window_end"     // earlier window end first
	RuleWindowStart   = "window_start"   // earlier window start first
	RuleTotalQuantity = "total_quantity" // larger total quantity first
)

// RuleSet is an ordered list of comparator rules.
type RuleSet []Rule

// Parse resolves rule names into a RuleSet, preserving list order.
func Parse(names []string) (RuleSet, error) {
	rs := make(RuleSet, 0, len(names))
	for _, name := range names {
		switch name {
		case RuleContractDate:
			rs = append(rs, byContractDate)
		case RuleWindowEnd:
			rs = append(rs, byWindowEnd)
		case RuleWindowStart:
			rs = append(rs, byWindowStart)
		case RuleTotalQuantity:
			rs = append(rs, byTotalQuantity)
		default:
			return nil, fmt.Errorf("unknown priority rule %q", name)
		}
	}
	return rs, nil
}

// Default returns the rule set used when none is configured.
func Default() RuleSet {
	return RuleSet{byContractDate, byWindowEnd, byTotalQuantity}
}

// Rank returns the indices of requests ordered by the rule set. The sort
// is stable, so requests left tied by every rule keep their input order.
func (rs RuleSet) Rank(requests []model.RefuelingRequest) []int {
	idx := make([]int, len(requests))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := requests[idx[i]], requests[idx[j]]
		for _, rule := range rs {
			if c := rule(a, b); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return idx
}

func byContractDate(a, b model.RefuelingRequest) int {
	return a.ContractDate.Compare(b.ContractDate)
}

func byWindowEnd(a, b model.RefuelingRequest) int {
	return a.WindowEnd.Compare(b.WindowEnd)
}

func byWindowStart(a, b model.RefuelingRequest) int {
	return a.WindowStart.Compare(b.WindowStart)
}

func byTotalQuantity(a, b model.RefuelingRequest) int {
	qa, qb := a.TotalQuantity(), b.TotalQuantity()
	switch {
	case qa > qb:
		return -1
	case qa < qb:
		return 1
	default:
		return 0
	}
}
