package lattice

import "sort"

// Generate enumerates every point with 1 ≤ x, y ≤ axisLimit whose legs come
// from Euclid's parametrization a = m²-n², b = 2mn (m > n > 0) scaled by
// k ≥ 1, in both orientations. The hypotenuse may exceed axisLimit.
//
// The result is ordered by ascending cost, then x, then y. A non-positive
// axisLimit yields an empty slice.
func Generate(axisLimit int) []Point {
	points := []Point{}
	if axisLimit < 1 {
		return points
	}

	seen := make(map[int]bool)
	key := func(x, y int) int { return x*(axisLimit+1) + y }
	add := func(x, y int) {
		if x < 1 || x > axisLimit || y < 1 || y > axisLimit {
			return
		}
		k := key(x, y)
		if seen[k] {
			return
		}
		seen[k] = true
		points = append(points, NewPoint(x, y))
	}

	for m := 2; m <= axisLimit; m++ {
		for n := 1; n < m; n++ {
			a := m*m - n*n
			b := 2 * m * n
			// Bounded by the shorter leg; add rejects scales where the
			// longer leg no longer fits.
			maxK := max(axisLimit/a, axisLimit/b)
			for k := 1; k <= maxK; k++ {
				add(k*a, k*b)
				add(k*b, k*a)
			}
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Cost != points[j].Cost {
			return points[i].Cost < points[j].Cost
		}
		if points[i].X != points[j].X {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})
	return points
}

// Index maps each point's coordinates to its position in points.
func Index(points []Point) map[Coord]int {
	idx := make(map[Coord]int, len(points))
	for i, p := range points {
		idx[p.Coord()] = i
	}
	return idx
}
