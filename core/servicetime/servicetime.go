// Package servicetime models the duration of bunkering operations.
// Every ship-side or terminal operation is bracketed by a fixed initial
// buffer before pumping and a fixed final buffer after it; the middle
// phase scales with the pumped quantity.
package servicetime

import (
	"time"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

const (
	// InitialBuffer is the fixed mooring and hookup time before pumping.
	InitialBuffer = 90 * time.Minute
	// FinalBuffer is the fixed disconnect and paperwork time after pumping.
	FinalBuffer = 2 * time.Hour
	// PumpRate is the ship-side delivery throughput in tons per hour.
	PumpRate = 300.0
	// LoadRate is the terminal loading throughput in tons per hour.
	LoadRate = 400.0
)

// DeliveryDuration returns the total busy time for delivering the given
// quantity: initial buffer, pumping at PumpRate, final buffer.
func DeliveryDuration(quantity float64) time.Duration {
	return InitialBuffer + hours(quantity/PumpRate) + FinalBuffer
}

// RechargeDuration returns the total busy time for topping one tank from
// the current volume to capacity at the terminal.
func RechargeDuration(capacity, volume float64) time.Duration {
	missing := capacity - volume
	if missing < 0 {
		missing = 0
	}
	return InitialBuffer + hours(missing/LoadRate) + FinalBuffer
}

// InitialRelease returns the instant a barge may first depart. A barge
// starting at the terminal is already mid-loading: it occupies the pier
// for the longest remaining top-up across its tanks plus the final
// buffer, with no initial buffer. Barges starting anywhere else are free
// at the simulation start.
func InitialRelease(b model.Barge, st model.BargeState, start time.Time) time.Time {
	if st.LocationID != model.TerminalID {
		return start
	}
	var longest float64
	for _, t := range b.Tanks {
		missing := t.Capacity - st.Volumes[t.Product]
		if missing < 0 {
			missing = 0
		}
		if h := missing / LoadRate; h > longest {
			longest = h
		}
	}
	return start.Add(hours(longest) + FinalBuffer)
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
