package lattice

import (
	"math/rand"
	"testing"
)

func TestRandomVoterMove(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	idx := Index(Generate(scenarioLimit))
	for i := 0; i < 200; i++ {
		from, to := RandomVoterMove(rng, scenarioLimit, nil)
		if from == fallbackFrom && to == fallbackTo {
			continue
		}
		if _, ok := idx[from]; !ok {
			t.Fatalf("from %v not in lattice", from)
		}
		if _, ok := idx[to]; !ok {
			t.Fatalf("to %v not in lattice", to)
		}
		if from == to {
			t.Fatalf("expected distinct points, got %v", from)
		}
		if to.X < from.X || to.Y < from.Y {
			t.Fatalf("move %v → %v decreases a coordinate", from, to)
		}
	}
}

func TestRandomVoterMoveRespectsEntity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	entity := Coord{X: 30, Y: 30}
	for i := 0; i < 200; i++ {
		from, to := RandomVoterMove(rng, scenarioLimit, &entity)
		if to.X-from.X > entity.X || to.Y-from.Y > entity.Y {
			t.Fatalf("move %v → %v exceeds entity %v", from, to, entity)
		}
	}
}

func TestRandomVoterMoveFallback(t *testing.T) {
	from, to := RandomVoterMove(nil, 3, nil)
	if from != (Coord{3, 4}) || to != (Coord{5, 12}) {
		t.Errorf("expected fallback move, got %v → %v", from, to)
	}
}

func TestRandomVoterMoveDeterministic(t *testing.T) {
	f1, t1 := RandomVoterMove(rand.New(rand.NewSource(99)), scenarioLimit, nil)
	f2, t2 := RandomVoterMove(rand.New(rand.NewSource(99)), scenarioLimit, nil)
	if f1 != f2 || t1 != t2 {
		t.Error("same seed should give the same move")
	}
}

func TestRandomEntityPosition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	idx := Index(Generate(scenarioLimit))
	minDelta := Coord{X: 26, Y: 9}
	for i := 0; i < 200; i++ {
		c := RandomEntityPosition(rng, scenarioLimit, minDelta)
		if _, ok := idx[c]; !ok {
			t.Fatalf("%v not in lattice", c)
		}
		if c.X < minDelta.X || c.Y < minDelta.Y {
			t.Fatalf("%v below minimum %v", c, minDelta)
		}
	}
}

func TestRandomEntityPositionFallback(t *testing.T) {
	if c := RandomEntityPosition(nil, scenarioLimit, Coord{X: 70, Y: 0}); c != (Coord{70, 1}) {
		t.Errorf("expected (70,1), got %v", c)
	}
	if c := RandomEntityPosition(nil, 2, Coord{}); c != (Coord{1, 1}) {
		t.Errorf("expected (1,1), got %v", c)
	}
}
