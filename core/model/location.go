package model

import "fmt"

// TerminalID is the reserved identifier of the loading pier. Every planning
// snapshot must contain a location with this id; recharge visits always
// happen there.
const TerminalID = "TERMINAL"

// Location is a named geographic point barges sail between.
type Location struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// IsTerminal reports whether the location is the loading pier.
func (l Location) IsTerminal() bool { return l.ID == TerminalID }

// Validate checks that the location has an id and plausible coordinates.
// Bad coordinates are a configuration error, never a scheduling outcome.
func (l Location) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("location id is required")
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("location %s: latitude %.4f out of range", l.ID, l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("location %s: longitude %.4f out of range", l.ID, l.Lon)
	}
	return nil
}
