// Package report derives fleet KPIs from a finalized schedule.
package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// BargeUsage summarizes one barge's share of a schedule.
type BargeUsage struct {
	BargeID     string  `json:"barge_id"`
	Deliveries  int     `json:"deliveries"`
	Recharges   int     `json:"recharges"`
	BusyHours   float64 `json:"busy_hours"`
	Utilization float64 `json:"utilization"` // busy hours over the schedule horizon
}

// Summary aggregates a planning run for operators.
type Summary struct {
	Horizon         time.Duration `json:"horizon"`
	Deliveries      int           `json:"deliveries"`
	Recharges       int           `json:"recharges"`
	DeliveredTons   float64       `json:"delivered_tons"`
	Unscheduled     int           `json:"unscheduled"`
	Barges          []BargeUsage  `json:"barges"`
	MeanBusyHours   float64       `json:"mean_busy_hours"`
	StdDevBusyHours float64       `json:"stddev_busy_hours"`
}

// Build computes the summary of a finalized schedule. Unscheduled is the
// list of ships the engine could not serve.
func Build(events []model.ScheduleEvent, unscheduled []string) Summary {
	s := Summary{Unscheduled: len(unscheduled)}
	if len(events) == 0 {
		return s
	}

	first, last := events[0].Start, events[0].End()
	usage := make(map[string]*BargeUsage)
	for _, ev := range events {
		if ev.Start.Before(first) {
			first = ev.Start
		}
		if ev.End().After(last) {
			last = ev.End()
		}
		u := usage[ev.BargeID]
		if u == nil {
			u = &BargeUsage{BargeID: ev.BargeID}
			usage[ev.BargeID] = u
		}
		u.BusyHours += ev.Duration.Hours()
		switch ev.Kind {
		case model.EventDelivery:
			u.Deliveries++
			s.Deliveries++
			s.DeliveredTons += ev.Quantity
		case model.EventRecharge:
			u.Recharges++
			s.Recharges++
		}
	}
	s.Horizon = last.Sub(first)

	horizonHours := s.Horizon.Hours()
	busy := make([]float64, 0, len(usage))
	for _, u := range usage {
		if horizonHours > 0 {
			u.Utilization = u.BusyHours / horizonHours
		}
		s.Barges = append(s.Barges, *u)
		busy = append(busy, u.BusyHours)
	}
	sort.Slice(s.Barges, func(i, j int) bool { return s.Barges[i].BargeID < s.Barges[j].BargeID })

	s.MeanBusyHours = stat.Mean(busy, nil)
	if len(busy) > 1 {
		s.StdDevBusyHours = stat.StdDev(busy, nil)
	}
	return s
}
