package lattice

import "math/rand"

// maxRandomAttempts bounds the rejection sampling in RandomVoterMove.
const maxRandomAttempts = 100

var (
	fallbackFrom = Coord{X: 3, Y: 4}
	fallbackTo   = Coord{X: 5, Y: 12}
)

func intn(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.Intn(n)
	}
	return rand.Intn(n)
}

// RandomVoterMove picks two distinct generated points with non-decreasing
// coordinates. When entity is non-nil the move's deltas must not exceed the
// entity's coordinates. If none is found it returns (3,4) → (5,12).
// A nil rng uses the global source.
func RandomVoterMove(rng *rand.Rand, axisLimit int, entity *Coord) (from, to Coord) {
	points := Generate(axisLimit)
	if len(points) < 2 {
		return fallbackFrom, fallbackTo
	}

	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		fi := intn(rng, len(points))
		ti := intn(rng, len(points))
		if ti == fi {
			ti = (ti + 1) % len(points)
		}
		f, t := points[fi], points[ti]
		if t.X < f.X || t.Y < f.Y {
			continue
		}
		if entity != nil && (entity.X < t.X-f.X || entity.Y < t.Y-f.Y) {
			continue
		}
		return f.Coord(), t.Coord()
	}
	return fallbackFrom, fallbackTo
}

// RandomEntityPosition picks a generated point with x ≥ minDelta.X and
// y ≥ minDelta.Y. Without a candidate it returns the smallest positive
// position satisfying minDelta.
func RandomEntityPosition(rng *rand.Rand, axisLimit int, minDelta Coord) Coord {
	var candidates []Point
	for _, p := range Generate(axisLimit) {
		if p.X >= minDelta.X && p.Y >= minDelta.Y {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return Coord{X: max(1, minDelta.X), Y: max(1, minDelta.Y)}
	}
	return candidates[intn(rng, len(candidates))].Coord()
}
