package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timetablegen/internal/catalog"
	"timetablegen/internal/opb"
)

func TestCompileExclusivity(t *testing.T) {
	// Arrange: two faculty competing for one batch, one room, one slot
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1"}, {ID: "f2"}},
		Rooms:     []catalog.Room{{ID: "r1", Capacity: 50}},
		Subjects:  []catalog.Subject{{ID: "s1"}},
		Batches:   []catalog.Batch{{ID: "b1", StudentCount: 30}},
		Timeslots: []string{"mon_1"},
	})
	space := newVariableSpace(cat)

	// Act
	constrs, variables, err := newConstraintCompiler(cat, space).compile()

	// Assert: both variables share the batch, the room and the slot
	assert.NoError(t, err)
	assert.Equal(t, 2, variables)
	assert.Contains(t, constrs, opb.AtMostOne([]int{1, 2}))
}

func TestCompileAvailability(t *testing.T) {
	// Arrange: f1 may only teach in mon_1
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1", AvailableSlots: []string{"mon_1"}}},
		Rooms:     []catalog.Room{{ID: "r1", Capacity: 50}},
		Subjects:  []catalog.Subject{{ID: "s1"}},
		Batches:   []catalog.Batch{{ID: "b1", StudentCount: 30}},
		Timeslots: []string{"mon_1", "mon_2"},
	})
	space := newVariableSpace(cat)
	blocked, ok := space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_2", RoomID: "r1", FacultyID: "f1"})
	assert.True(t, ok)

	// Act
	constrs, _, err := newConstraintCompiler(cat, space).compile()

	// Assert
	assert.NoError(t, err)
	assert.Contains(t, constrs, opb.ForceFalse(blocked))
}

func TestCompileCapacity(t *testing.T) {
	// Arrange: the batch does not fit in r1
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1"}},
		Rooms:     []catalog.Room{{ID: "r1", Capacity: 20}, {ID: "r2", Capacity: 60}},
		Subjects:  []catalog.Subject{{ID: "s1"}},
		Batches:   []catalog.Batch{{ID: "b1", StudentCount: 40}},
		Timeslots: []string{"mon_1"},
	})
	space := newVariableSpace(cat)
	blocked, ok := space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r1", FacultyID: "f1"})
	assert.True(t, ok)
	allowed, ok := space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r2", FacultyID: "f1"})
	assert.True(t, ok)

	// Act
	constrs, _, err := newConstraintCompiler(cat, space).compile()

	// Assert
	assert.NoError(t, err)
	assert.Contains(t, constrs, opb.ForceFalse(blocked))
	assert.NotContains(t, constrs, opb.ForceFalse(allowed))
}

func TestCompileDemand(t *testing.T) {
	// Arrange
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1"}},
		Rooms:     []catalog.Room{{ID: "r1", Capacity: 50}},
		Subjects:  []catalog.Subject{{ID: "s1"}},
		Batches:   []catalog.Batch{{ID: "b1", StudentCount: 30}},
		Timeslots: []string{"mon_1", "mon_2"},
	})
	space := newVariableSpace(cat)

	// Act
	constrs, _, err := newConstraintCompiler(cat, space).compile()

	// Assert: the pair must be scheduled in exactly one slot
	assert.NoError(t, err)
	for _, exactly := range opb.Exactly([]int{1, 2}, 1) {
		assert.Contains(t, constrs, exactly)
	}
}

func TestCompileContinuityAllocatesRunStarts(t *testing.T) {
	// Arrange: duration 2 over three ordered slots leaves two legal run starts
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1"}},
		Rooms:     []catalog.Room{{ID: "r1", Capacity: 50}},
		Subjects:  []catalog.Subject{{ID: "s1", SubjectType: "lab", Duration: 2}},
		Batches:   []catalog.Batch{{ID: "b1", StudentCount: 30}},
		Timeslots: []string{"mon_1", "mon_2", "mon_3"},
	})
	space := newVariableSpace(cat)

	// Act
	constrs, variables, err := newConstraintCompiler(cat, space).compile()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, space.Size()+2, variables)

	// Each start implies both slots of its window
	start1, start2 := space.Size()+1, space.Size()+2
	assert.Contains(t, constrs, opb.Implies(start1, 1))
	assert.Contains(t, constrs, opb.Implies(start1, 2))
	assert.Contains(t, constrs, opb.Implies(start2, 2))
	assert.Contains(t, constrs, opb.Implies(start2, 3))
	assert.Contains(t, constrs, opb.AtMostOne([]int{start1, start2}))
}

func TestCompileFixed(t *testing.T) {
	payload := catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1", SubjectsCanTeach: []string{"s1"}}},
		Rooms:     []catalog.Room{{ID: "r1", Capacity: 50}},
		Subjects:  []catalog.Subject{{ID: "s1"}, {ID: "s2"}},
		Batches:   []catalog.Batch{{ID: "b1", StudentCount: 30}},
		Timeslots: []string{"mon_1"},
	}

	t.Run("admissible tuple is pinned", func(t *testing.T) {
		// Arrange
		payload := payload
		payload.Overrides.FixedAssignments = []catalog.FixedAssignment{
			{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r1", FacultyID: "f1"},
		}
		cat := mustCatalog(t, payload)
		space := newVariableSpace(cat)
		pinned, ok := space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r1", FacultyID: "f1"})
		assert.True(t, ok)

		// Act
		constrs, _, err := newConstraintCompiler(cat, space).compile()

		// Assert
		assert.NoError(t, err)
		assert.Contains(t, constrs, opb.ForceTrue(pinned))
	})

	t.Run("inadmissible tuple is a modeling error", func(t *testing.T) {
		// Arrange: f1 is not qualified for s2, so the tuple has no variable
		payload := payload
		payload.Overrides.FixedAssignments = []catalog.FixedAssignment{
			{SubjectID: "s2", BatchID: "b1", Slot: "mon_1", RoomID: "r1", FacultyID: "f1"},
		}
		cat := mustCatalog(t, payload)
		space := newVariableSpace(cat)

		// Act
		_, _, err := newConstraintCompiler(cat, space).compile()

		// Assert
		var modelErr *ModelConstructionError
		assert.ErrorAs(t, err, &modelErr)
	})
}
