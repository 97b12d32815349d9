// Package scenario reads and writes YAML descriptions of a lattice session:
// the axis limit, the voter's buy, the entity position and the relaxation
// flag.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// MaxAxisLimit bounds the lattice a scenario may describe.
const MaxAxisLimit = 1000

// Point is a YAML coordinate pair.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (p Point) Coord() lattice.Coord { return lattice.Coord{X: p.X, Y: p.Y} }

// Scenario is the on-disk form of a session's inputs.
type Scenario struct {
	AxisLimit                int   `yaml:"axis_limit" json:"axis_limit"`
	AllowUnilateralIncrement bool  `yaml:"allow_unilateral_increment" json:"allow_unilateral_increment"`
	Voter                    Voter `yaml:"voter" json:"voter"`
	Entity                   Point `yaml:"entity" json:"entity"`
}

// Voter is the voter's acquisition move.
type Voter struct {
	From Point `yaml:"from" json:"from"`
	To   Point `yaml:"to" json:"to"`
}

// Default returns the reference setup: a 60 lattice, voter buying
// (18,24) → (44,33), entity at (52,39).
func Default() Scenario {
	return Scenario{
		AxisLimit: 60,
		Voter: Voter{
			From: Point{X: 18, Y: 24},
			To:   Point{X: 44, Y: 33},
		},
		Entity: Point{X: 52, Y: 39},
	}
}

// Parse decodes YAML over the defaults, so omitted fields keep their
// reference values.
func Parse(data []byte) (Scenario, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Save writes the scenario as YAML.
func Save(path string, s Scenario) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	return nil
}

// Validate requires an axis limit within 1..MaxAxisLimit and strictly
// positive coordinates.
func (s Scenario) Validate() error {
	if s.AxisLimit < 1 || s.AxisLimit > MaxAxisLimit {
		return fmt.Errorf("%w: axis_limit must be within 1..%d, got %d", ErrInvalidScenario, MaxAxisLimit, s.AxisLimit)
	}
	for name, p := range map[string]Point{
		"voter.from": s.Voter.From,
		"voter.to":   s.Voter.To,
		"entity":     s.Entity,
	} {
		if p.X < 1 || p.Y < 1 {
			return fmt.Errorf("%w: %s must have positive coordinates, got (%d,%d)", ErrInvalidScenario, name, p.X, p.Y)
		}
	}
	return nil
}

// Move computes the voter move described by the scenario.
func (s Scenario) Move() lattice.VoterMove {
	return lattice.ComputeMove(s.Voter.From.Coord(), s.Voter.To.Coord())
}

// Marshal encodes the scenario as YAML.
func Marshal(s Scenario) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}
	return data, nil
}
