package model

import (
	"github.com/samber/lo"

	"timetablegen/internal/catalog"
	"timetablegen/internal/opb"
)

// Weights configures the soft objective. All coefficients are explicit so the
// compiler stays pure and testable: no weight is embedded as a literal.
type Weights struct {
	// Base is contributed by every selected variable.
	Base int
	// PreferredSlot is added when the slot is among the faculty's preferred_slots.
	PreferredSlot int
	// RoomAffinity is added when the room's affinity tags contain the batch's
	// branch id or track code.
	RoomAffinity int
}

func DefaultWeights() Weights {
	return Weights{Base: 1, PreferredSlot: 1, RoomAffinity: 1}
}

// compileObjective builds the linear maximize expression: one weighted term per
// decision variable. Ties among equally-scored schedules are broken arbitrarily
// by the backend.
func compileObjective(cat *catalog.Catalog, space *VariableSpace, weights Weights) []opb.Term {
	terms := make([]opb.Term, 0, space.Size())

	for v := 1; v <= space.Size(); v++ {
		tuple := space.Attributes(v)
		coeff := weights.Base

		faculty := cat.Faculty[tuple.FacultyID]
		if lo.Contains(faculty.PreferredSlots, tuple.Slot) {
			coeff += weights.PreferredSlot
		}

		room := cat.Rooms[tuple.RoomID]
		batch := cat.Batches[tuple.BatchID]
		if affinityMatch(room.RoomAffinity, batch) {
			coeff += weights.RoomAffinity
		}

		terms = append(terms, opb.Term{Var: v, Coeff: coeff})
	}

	return terms
}

func affinityMatch(affinities []string, batch catalog.Batch) bool {
	if batch.BranchID != "" && lo.Contains(affinities, batch.BranchID) {
		return true
	}
	return batch.TrackCode != "" && lo.Contains(affinities, batch.TrackCode)
}
