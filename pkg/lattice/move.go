package lattice

// Holdings is the voter's per-axis token balance.
type Holdings struct {
	DeltaX int `json:"delta_x"`
	DeltaY int `json:"delta_y"`
}

// VoterMove is the voter's acquisition step from one point to another.
type VoterMove struct {
	From        Point   `json:"from"`
	To          Point   `json:"to"`
	DeltaX      int     `json:"delta_x"`
	DeltaY      int     `json:"delta_y"`
	DeltaCost   float64 `json:"delta_cost"`
	TokenEarned float64 `json:"token_earned"` // negative when the voter pays
}

// ComputeMove derives the voter move between two positions. No bounds are
// checked.
func ComputeMove(from, to Coord) VoterMove {
	f := from.Point()
	t := to.Point()
	deltaCost := t.Cost - f.Cost
	return VoterMove{
		From:        f,
		To:          t,
		DeltaX:      to.X - from.X,
		DeltaY:      to.Y - from.Y,
		DeltaCost:   deltaCost,
		TokenEarned: -deltaCost,
	}
}

// Holdings returns the tokens the voter accumulated on each axis.
func (m VoterMove) Holdings() Holdings {
	return Holdings{DeltaX: m.DeltaX, DeltaY: m.DeltaY}
}
