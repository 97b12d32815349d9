// Package lattice implements the stake-based reputation lattice: generation
// of integer right-triangle points within an axis bound and the rules that
// decide whether an entity may sell down to another point.
package lattice

import (
	"fmt"
	"math"
)

// Coord is a bare integer lattice position.
type Coord struct {
	X int `json:"x"` // distrust votes
	Y int `json:"y"` // trust votes
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Point is a lattice position with its derived cost and reputation.
// Construct with NewPoint; the derived fields are pure functions of X and Y.
type Point struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Cost       float64 `json:"cost"`       // sqrt(x² + y²)
	Reputation float64 `json:"reputation"` // y² / (x² + y²)
}

// CostAndReputation returns sqrt(x²+y²) and y²/(x²+y²).
func CostAndReputation(x, y int) (cost, reputation float64) {
	sq := float64(x*x + y*y)
	cost = math.Sqrt(sq)
	reputation = float64(y*y) / sq
	return cost, reputation
}

// NewPoint builds the Point at (x, y).
func NewPoint(x, y int) Point {
	cost, rep := CostAndReputation(x, y)
	return Point{X: x, Y: y, Cost: cost, Reputation: rep}
}

// Coord returns the point's position without derived attributes.
func (p Point) Coord() Coord {
	return Coord{X: p.X, Y: p.Y}
}

// Point returns the full lattice point at c.
func (c Coord) Point() Point {
	return NewPoint(c.X, c.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d) C=%.4f Rep=%.4f", p.X, p.Y, p.Cost, p.Reputation)
}

// IsIntegerTriple reports whether sqrt(x²+y²) is a whole number.
func IsIntegerTriple(x, y int) bool {
	sq := x*x + y*y
	c := int(math.Round(math.Sqrt(float64(sq))))
	return c*c == sq
}
