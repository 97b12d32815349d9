package lattice

import "sort"

// TargetRecord is the projected outcome of a valid sell move.
type TargetRecord struct {
	Target             Point    `json:"target"`
	VoterHoldingsAfter Holdings `json:"voter_holdings_after"`
	EntityReleased     Holdings `json:"entity_released"`
	TokenEarned        float64  `json:"token_earned"`
	Profit             float64  `json:"profit"` // net of the voter's acquisition cost
	DeltaReputation    float64  `json:"delta_reputation"`
}

// NewTargetRecord computes the outcome of moving entity to target after
// the given voter move. It does not check validity.
func NewTargetRecord(target Point, entity Coord, move VoterMove) TargetRecord {
	current := entity.Point()
	released := Holdings{
		DeltaX: entity.X - target.X,
		DeltaY: entity.Y - target.Y,
	}
	earned := current.Cost - target.Cost
	return TargetRecord{
		Target: target,
		VoterHoldingsAfter: Holdings{
			DeltaX: move.DeltaX - released.DeltaX,
			DeltaY: move.DeltaY - released.DeltaY,
		},
		EntityReleased:  released,
		TokenEarned:     earned,
		Profit:          earned - move.DeltaCost,
		DeltaReputation: target.Reputation - current.Reputation,
	}
}

// RankTargets keeps the candidates the entity may validly sell to and orders
// their records by descending token earned. Equal earnings keep candidate
// order.
func RankTargets(candidates []Point, entity Coord, move VoterMove, allowUnilateralIncrement bool, axisLimit int) []TargetRecord {
	holdings := move.Holdings()
	records := []TargetRecord{}
	for _, c := range candidates {
		if !IsValidSellMove(c, entity, holdings, allowUnilateralIncrement, axisLimit) {
			continue
		}
		records = append(records, NewTargetRecord(c, entity, move))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TokenEarned > records[j].TokenEarned
	})
	return records
}
