package lattice

import (
	"fmt"
	"math"
)

// ShapeTolerance is the absolute slack allowed between a target's cost and
// sqrt(x²+y²) before the target is considered malformed.
const ShapeTolerance = 1e-10

// Clause identifies a rule of the sell-move decision procedure.
type Clause int

const (
	ClauseBounds    Clause = iota // target inside [1, axisLimit] on both axes
	ClauseShape                   // cost matches the coordinates
	ClauseHoldings                // voter covers every released coordinate
	ClauseProfit                  // entity ends on a strictly cheaper point
	ClauseDirection               // coordinate increase policy
)

func (c Clause) String() string {
	switch c {
	case ClauseBounds:
		return "bounds"
	case ClauseShape:
		return "shape"
	case ClauseHoldings:
		return "holdings"
	case ClauseProfit:
		return "profit"
	case ClauseDirection:
		return "direction"
	default:
		return "unknown"
	}
}

// SellMoveError describes the first rule a sell target fails.
type SellMoveError struct {
	Target  Point
	Clause  Clause
	Message string
}

func (e *SellMoveError) Error() string {
	return fmt.Sprintf("invalid sell target (%d,%d): %s: %s", e.Target.X, e.Target.Y, e.Clause, e.Message)
}

// CheckSellMove runs the sell-move rules for moving entity to target and
// returns nil when every rule passes, or a *SellMoveError naming the first
// failure.
func CheckSellMove(target Point, entity Coord, voter Holdings, allowUnilateralIncrement bool, axisLimit int) error {
	if target.X < 1 || target.X > axisLimit || target.Y < 1 || target.Y > axisLimit {
		return &SellMoveError{target, ClauseBounds, fmt.Sprintf("outside 1..%d", axisLimit)}
	}

	expected := math.Sqrt(float64(target.X*target.X + target.Y*target.Y))
	if math.IsNaN(target.Cost) || math.Abs(target.Cost-expected) > ShapeTolerance {
		return &SellMoveError{target, ClauseShape, fmt.Sprintf("cost %g, expected %g", target.Cost, expected)}
	}

	releasedX := entity.X - target.X
	releasedY := entity.Y - target.Y
	if releasedX > 0 && voter.DeltaX < releasedX {
		return &SellMoveError{target, ClauseHoldings, fmt.Sprintf("releases %d X, voter holds %d", releasedX, voter.DeltaX)}
	}
	if releasedY > 0 && voter.DeltaY < releasedY {
		return &SellMoveError{target, ClauseHoldings, fmt.Sprintf("releases %d Y, voter holds %d", releasedY, voter.DeltaY)}
	}

	entityCost, _ := CostAndReputation(entity.X, entity.Y)
	if entityCost-target.Cost <= 0 {
		return &SellMoveError{target, ClauseProfit, fmt.Sprintf("cost %g not below entity cost %g", target.Cost, entityCost)}
	}

	xInc := target.X > entity.X
	yInc := target.Y > entity.Y
	if !allowUnilateralIncrement {
		if xInc || yInc {
			return &SellMoveError{target, ClauseDirection, "coordinate increase not allowed"}
		}
		return nil
	}
	if (xInc || yInc) && xInc == yInc {
		return &SellMoveError{target, ClauseDirection, "at most one coordinate may increase"}
	}
	return nil
}

// IsValidSellMove reports whether the entity may move to target.
func IsValidSellMove(target Point, entity Coord, voter Holdings, allowUnilateralIncrement bool, axisLimit int) bool {
	return CheckSellMove(target, entity, voter, allowUnilateralIncrement, axisLimit) == nil
}
