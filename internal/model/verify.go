package model

import (
	"slices"

	"github.com/samber/lo"

	"timetablegen/internal/catalog"
)

// Verify re-checks a generated schedule against every hard rule: exclusivity
// of batches, faculty and rooms per slot, faculty availability, room capacity,
// scheduling demand, lab continuity and fixed-assignment presence. Correctness of an ok result is
// guaranteed by construction given a correct backend, so this is a defect
// detector for the model builder, not a runtime gate.
func (s *scheduler) Verify(result ScheduleResult, payload catalog.Payload) bool {
	cat, err := catalog.New(payload)
	if err != nil {
		return false
	}
	space := newVariableSpace(cat)

	batchBusy := make(map[[2]string]bool)
	facultyBusy := make(map[[2]string]bool)
	roomBusy := make(map[[2]string]bool)

	for _, assignment := range result.Assignments {
		tuple := Tuple{
			SubjectID: assignment.SubjectID,
			BatchID:   assignment.BatchID,
			Slot:      assignment.Slot,
			RoomID:    assignment.RoomID,
			FacultyID: assignment.FacultyID,
		}

		// The assignment must come from the admissible space
		if _, ok := space.Index(tuple); !ok {
			return false
		}

		batchKey := [2]string{assignment.BatchID, assignment.Slot}
		facultyKey := [2]string{assignment.FacultyID, assignment.Slot}
		roomKey := [2]string{assignment.RoomID, assignment.Slot}
		if batchBusy[batchKey] || facultyBusy[facultyKey] || roomBusy[roomKey] {
			return false
		}
		batchBusy[batchKey] = true
		facultyBusy[facultyKey] = true
		roomBusy[roomKey] = true

		faculty := cat.Faculty[assignment.FacultyID]
		if len(faculty.AvailableSlots) > 0 && !lo.Contains(faculty.AvailableSlots, assignment.Slot) {
			return false
		}

		if cat.Batches[assignment.BatchID].StudentCount > cat.Rooms[assignment.RoomID].Capacity {
			return false
		}
	}

	if !verifyContinuity(cat, result.Assignments) {
		return false
	}

	if !verifyDemand(cat, space, result.Assignments) {
		return false
	}

	// Every fixed assignment must appear verbatim
	for _, fixed := range cat.Fixed {
		present := lo.SomeBy(result.Assignments, func(assignment Assignment) bool {
			return assignment.SubjectID == fixed.SubjectID &&
				assignment.BatchID == fixed.BatchID &&
				assignment.Slot == fixed.Slot &&
				assignment.RoomID == fixed.RoomID &&
				assignment.FacultyID == fixed.FacultyID
		})
		if !present {
			return false
		}
	}

	return true
}

// verifyDemand checks that every (subject, batch) pair with at least one
// admissible variable is scheduled in exactly duration slots.
func verifyDemand(cat *catalog.Catalog, space *VariableSpace, assignments []Assignment) bool {
	counts := make(map[[2]string]int)
	for _, assignment := range assignments {
		counts[[2]string{assignment.SubjectID, assignment.BatchID}]++
	}

	demanded := make(map[[2]string]bool)
	for v := 1; v <= space.Size(); v++ {
		tuple := space.Attributes(v)
		demanded[[2]string{tuple.SubjectID, tuple.BatchID}] = true
	}

	for key := range demanded {
		if counts[key] != cat.Subjects[key[0]].Duration {
			return false
		}
	}
	return true
}

// verifyContinuity checks that every scheduled continuity-constrained
// (subject, batch) occupies exactly duration consecutive slots in one room
// with one faculty member, entirely within the ordered slot sequence.
func verifyContinuity(cat *catalog.Catalog, assignments []Assignment) bool {
	groups := make(map[[2]string][]Assignment)
	for _, assignment := range assignments {
		subject, ok := cat.Subjects[assignment.SubjectID]
		if !ok || !continuityConstrained(subject) {
			continue
		}
		key := [2]string{assignment.SubjectID, assignment.BatchID}
		groups[key] = append(groups[key], assignment)
	}

	for key, group := range groups {
		subject := cat.Subjects[key[0]]
		if len(group) != subject.Duration {
			return false
		}

		indices := make([]int, 0, len(group))
		for _, assignment := range group {
			if assignment.RoomID != group[0].RoomID || assignment.FacultyID != group[0].FacultyID {
				return false
			}
			index, ok := cat.SlotIndex[assignment.Slot]
			if !ok {
				return false
			}
			indices = append(indices, index)
		}

		slices.Sort(indices)
		for i := 1; i < len(indices); i++ {
			if indices[i] != indices[i-1]+1 {
				return false
			}
		}
	}

	return true
}
