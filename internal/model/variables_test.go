package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timetablegen/internal/catalog"
)

func mustCatalog(t *testing.T, payload catalog.Payload) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(payload)
	assert.NoError(t, err)
	return cat
}

func TestVariableSpaceFullCrossProduct(t *testing.T) {
	// Arrange
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1"}, {ID: "f2"}},
		Rooms:     []catalog.Room{{ID: "r1"}, {ID: "r2"}},
		Subjects:  []catalog.Subject{{ID: "s1"}, {ID: "s2"}},
		Batches:   []catalog.Batch{{ID: "b1"}},
		Timeslots: []string{"mon_1", "mon_2", "mon_3"},
	})

	// Act
	space := newVariableSpace(cat)

	// Assert: empty filter sets mean unrestricted
	assert.Equal(t, 2*1*3*2*2, space.Size())
}

func TestVariableSpacePruning(t *testing.T) {
	// Arrange
	cat := mustCatalog(t, catalog.Payload{
		Faculty: []catalog.Faculty{
			{ID: "f1", SubjectsCanTeach: []string{"s1"}},
			{ID: "f2", SubjectsCanTeach: []string{"s2"}},
		},
		Rooms: []catalog.Room{
			{ID: "r1", RoomType: "lab"},
			{ID: "r2", RoomType: "lecture_hall"},
			{ID: "r3"},
		},
		Subjects: []catalog.Subject{
			{ID: "s1", RoomTypeRequired: "lab"},
			{ID: "s2"},
		},
		Batches: []catalog.Batch{
			{ID: "b1", SubjectList: []string{"s1"}},
			{ID: "b2", SubjectList: []string{"s1", "s2"}},
		},
		Timeslots: []string{"mon_1"},
	})

	// Act
	space := newVariableSpace(cat)

	// Assert: batch must require the subject
	_, ok := space.Index(Tuple{SubjectID: "s2", BatchID: "b1", Slot: "mon_1", RoomID: "r3", FacultyID: "f2"})
	assert.False(t, ok)
	_, ok = space.Index(Tuple{SubjectID: "s2", BatchID: "b2", Slot: "mon_1", RoomID: "r3", FacultyID: "f2"})
	assert.True(t, ok)

	// Assert: faculty must be qualified for the subject
	_, ok = space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r1", FacultyID: "f2"})
	assert.False(t, ok)
	_, ok = space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r1", FacultyID: "f1"})
	assert.True(t, ok)

	// Assert: typed rooms must match the required room type, untyped rooms host anything
	_, ok = space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r2", FacultyID: "f1"})
	assert.False(t, ok)
	_, ok = space.Index(Tuple{SubjectID: "s1", BatchID: "b1", Slot: "mon_1", RoomID: "r3", FacultyID: "f1"})
	assert.True(t, ok)
}

func TestVariableSpaceIndexAttributesRoundTrip(t *testing.T) {
	cat := mustCatalog(t, catalog.Payload{
		Faculty:   []catalog.Faculty{{ID: "f1"}, {ID: "f2"}},
		Rooms:     []catalog.Room{{ID: "r1"}},
		Subjects:  []catalog.Subject{{ID: "s1"}},
		Batches:   []catalog.Batch{{ID: "b1"}, {ID: "b2"}},
		Timeslots: []string{"mon_1", "mon_2"},
	})

	space := newVariableSpace(cat)

	for v := 1; v <= space.Size(); v++ {
		tuple := space.Attributes(v)
		index, ok := space.Index(tuple)
		assert.True(t, ok)
		assert.Equal(t, v, index)
	}
}
