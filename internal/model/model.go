package model

import "github.com/freeeve/stake-lattice/api/pkg/lattice"

// VoterBuy is a voter acquisition with the derived attributes of both ends.
type VoterBuy struct {
	From lattice.Point `json:"from"`
	To   lattice.Point `json:"to"`
}

// Session is the client-facing view of a lattice session.
type Session struct {
	ID                       string        `json:"id"`
	AxisLimit                int           `json:"axis_limit"`
	AllowUnilateralIncrement bool          `json:"allow_unilateral_increment"`
	Initialized              bool          `json:"initialized"`
	Applied                  bool          `json:"applied"`
	HasPendingEdits          bool          `json:"has_pending_edits"`
	Voter                    VoterBuy      `json:"voter"`
	Entity                   lattice.Point `json:"entity"`
	PendingVoter             VoterBuy      `json:"pending_voter"`
	PendingEntity            lattice.Point `json:"pending_entity"`
	Analysis                 *Analysis     `json:"analysis,omitempty"`
}

// Analysis is the result of the last recompute.
type Analysis struct {
	Move        lattice.VoterMove      `json:"voter_move"`
	PointCount  int                    `json:"point_count"`
	TargetCount int                    `json:"target_count"`
	Targets     []lattice.TargetRecord `json:"targets"`
}

// Lattice lists the generated points for an axis limit.
type Lattice struct {
	AxisLimit int             `json:"axis_limit"`
	Count     int             `json:"count"`
	Points    []lattice.Point `json:"points"`
}

// Settings is a partial update of session settings.
type Settings struct {
	AxisLimit                *int  `json:"axis_limit,omitempty"`
	AllowUnilateralIncrement *bool `json:"allow_unilateral_increment,omitempty"`
}

// EvaluateRequest asks whether a single target is a valid sell move.
// A zero target cost is replaced by the coordinates' cost rather than
// rejected by the shape check. Reputation is always derived from the
// coordinates.
type EvaluateRequest struct {
	Target                   lattice.Point `json:"target"`
	Entity                   lattice.Coord `json:"entity"`
	VoterFrom                lattice.Coord `json:"voter_from"`
	VoterTo                  lattice.Coord `json:"voter_to"`
	AllowUnilateralIncrement bool          `json:"allow_unilateral_increment"`
	AxisLimit                int           `json:"axis_limit"`
}

// EvaluateResponse reports validity, the failing rule if any, and the
// projected outcome when valid.
type EvaluateResponse struct {
	Valid  bool                  `json:"valid"`
	Clause string                `json:"clause,omitempty"`
	Reason string                `json:"reason,omitempty"`
	Record *lattice.TargetRecord `json:"record,omitempty"`
}
