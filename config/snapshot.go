package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cbsthiago-dev/progbunker-application/core/dispatch"
	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/priority"
)

// Snapshot is the YAML planning input: the port layout, the fleet with
// its current state and the day's refueling requests.
type Snapshot struct {
	Start     time.Time     `yaml:"start"`
	Products  []string      `yaml:"products,omitempty"`
	Locations []LocationDef `yaml:"locations"`
	Barges    []BargeDef    `yaml:"barges"`
	Requests  []RequestDef  `yaml:"requests"`
}

type LocationDef struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name,omitempty"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

func (l LocationDef) ToModel() model.Location {
	return model.Location{ID: l.ID, Name: l.Name, Lat: l.Lat, Lon: l.Lon}
}

type TankDef struct {
	Product  string  `yaml:"product"`
	Capacity float64 `yaml:"capacity"`
}

type BargeDef struct {
	ID         string             `yaml:"id"`
	Name       string             `yaml:"name,omitempty"`
	SpeedKnots float64            `yaml:"speed_knots"`
	Tanks      []TankDef          `yaml:"tanks"`
	LocationID string             `yaml:"location_id"`
	Volumes    map[string]float64 `yaml:"volumes"`
}

func (b BargeDef) ToModel() (model.Barge, model.BargeState) {
	barge := model.Barge{ID: b.ID, Name: b.Name, SpeedKnots: b.SpeedKnots}
	for _, t := range b.Tanks {
		barge.Tanks = append(barge.Tanks, model.Tank{Product: t.Product, Capacity: t.Capacity})
	}
	volumes := make(map[string]float64, len(b.Volumes))
	for p, v := range b.Volumes {
		volumes[p] = v
	}
	state := model.BargeState{BargeID: b.ID, LocationID: b.LocationID, Volumes: volumes}
	return barge, state
}

type DemandDef struct {
	Product  string  `yaml:"product"`
	Quantity float64 `yaml:"quantity"`
}

type RequestDef struct {
	Ship         string      `yaml:"ship"`
	LocationID   string      `yaml:"location_id"`
	Demands      []DemandDef `yaml:"demands"`
	WindowStart  time.Time   `yaml:"window_start"`
	WindowEnd    time.Time   `yaml:"window_end"`
	ContractDate time.Time   `yaml:"contract_date"`
	Confirmed    bool        `yaml:"confirmed"`
}

func (r RequestDef) ToModel() model.RefuelingRequest {
	req := model.RefuelingRequest{
		Ship:         r.Ship,
		LocationID:   r.LocationID,
		WindowStart:  r.WindowStart,
		WindowEnd:    r.WindowEnd,
		ContractDate: r.ContractDate,
		Confirmed:    r.Confirmed,
	}
	for _, d := range r.Demands {
		req.Demands = append(req.Demands, model.ProductDemand{Product: d.Product, Quantity: d.Quantity})
	}
	return req
}

// LoadSnapshot reads a planning input file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// ToInput converts the snapshot into a planning input with the given
// ordering rules.
func (s Snapshot) ToInput(rules priority.RuleSet) dispatch.Input {
	in := dispatch.Input{
		Start:    s.Start,
		Products: s.Products,
		Rules:    rules,
	}
	for _, l := range s.Locations {
		in.Locations = append(in.Locations, l.ToModel())
	}
	for _, b := range s.Barges {
		barge, state := b.ToModel()
		in.Fleet = append(in.Fleet, barge)
		in.States = append(in.States, state)
	}
	for _, r := range s.Requests {
		in.Requests = append(in.Requests, r.ToModel())
	}
	return in
}
