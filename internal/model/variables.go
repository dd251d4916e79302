package model

import (
	"github.com/samber/lo"

	"timetablegen/internal/catalog"
)

// Tuple is the combination of attributes one decision variable stands for:
// "this subject is taught to this batch, in this slot, in this room, by this
// faculty member".
type Tuple struct {
	SubjectID string
	BatchID   string
	Slot      string
	RoomID    string
	FacultyID string
}

// VariableSpace maps admissible tuples to sequential variable indices (starting
// at 1) and back. Inadmissible combinations get no variable at all; constraint
// compilation treats a failed lookup as constant false.
type VariableSpace struct {
	index  map[Tuple]int
	tuples []Tuple
}

// newVariableSpace enumerates the admissible tuples of the catalog. Pruning
// happens here and only here: a batch only takes the subjects it requires, a
// faculty member only teaches subjects they are qualified for, and a room must
// match the subject's required room type. Empty filter sets mean unrestricted.
// Pruning changes the set of variables, never the semantics of any constraint.
func newVariableSpace(cat *catalog.Catalog) *VariableSpace {
	space := &VariableSpace{index: make(map[Tuple]int)}

	for _, subjectID := range cat.SubjectIDs {
		subject := cat.Subjects[subjectID]
		for _, batchID := range cat.BatchIDs {
			batch := cat.Batches[batchID]
			if len(batch.SubjectList) > 0 && !lo.Contains(batch.SubjectList, subjectID) {
				continue
			}
			for _, slot := range cat.Slots {
				for _, roomID := range cat.RoomIDs {
					room := cat.Rooms[roomID]
					if subject.RoomTypeRequired != "" && room.RoomType != "" && room.RoomType != subject.RoomTypeRequired {
						continue
					}
					for _, facultyID := range cat.FacultyIDs {
						faculty := cat.Faculty[facultyID]
						if len(faculty.SubjectsCanTeach) > 0 && !lo.Contains(faculty.SubjectsCanTeach, subjectID) {
							continue
						}
						space.add(Tuple{
							SubjectID: subjectID,
							BatchID:   batchID,
							Slot:      slot,
							RoomID:    roomID,
							FacultyID: facultyID,
						})
					}
				}
			}
		}
	}

	return space
}

func (space *VariableSpace) add(tuple Tuple) {
	space.tuples = append(space.tuples, tuple)
	space.index[tuple] = len(space.tuples)
}

// Index returns the variable of an admissible tuple, or false when the tuple
// has no variable.
func (space *VariableSpace) Index(tuple Tuple) (int, bool) {
	v, ok := space.index[tuple]
	return v, ok
}

// Attributes returns the tuple a variable stands for.
func (space *VariableSpace) Attributes(v int) Tuple {
	return space.tuples[v-1]
}

func (space *VariableSpace) Size() int {
	return len(space.tuples)
}
