package catalog

import "fmt"

// InputError reports malformed entity lists or dangling references in the
// caller-supplied payload. It is raised before any decision variable is
// generated and is fatal to the solve call.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func inputErrorf(format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// Catalog holds normalized, id-keyed copies of the caller-supplied entities for
// the lifetime of one solve call. The *IDs slices preserve payload order so that
// iteration over the catalog stays deterministic.
type Catalog struct {
	Faculty  map[string]Faculty
	Rooms    map[string]Room
	Subjects map[string]Subject
	Batches  map[string]Batch

	FacultyIDs []string
	RoomIDs    []string
	SubjectIDs []string
	BatchIDs   []string

	Slots     []string
	SlotIndex map[string]int

	Fixed []FixedAssignment
}

// New validates the payload and builds the id-keyed lookup maps. Entities with
// missing or duplicate ids, invariant-violating attributes, or fixed assignments
// naming unknown entities fail with an InputError.
func New(payload Payload) (*Catalog, error) {
	cat := &Catalog{
		Faculty:   make(map[string]Faculty, len(payload.Faculty)),
		Rooms:     make(map[string]Room, len(payload.Rooms)),
		Subjects:  make(map[string]Subject, len(payload.Subjects)),
		Batches:   make(map[string]Batch, len(payload.Batches)),
		SlotIndex: make(map[string]int, len(payload.Timeslots)),
	}

	for _, faculty := range payload.Faculty {
		if faculty.ID == "" {
			return nil, inputErrorf("faculty with missing id")
		}
		if _, ok := cat.Faculty[faculty.ID]; ok {
			return nil, inputErrorf("duplicate faculty id %q", faculty.ID)
		}
		cat.Faculty[faculty.ID] = faculty
		cat.FacultyIDs = append(cat.FacultyIDs, faculty.ID)
	}

	for _, room := range payload.Rooms {
		if room.ID == "" {
			return nil, inputErrorf("room with missing id")
		}
		if _, ok := cat.Rooms[room.ID]; ok {
			return nil, inputErrorf("duplicate room id %q", room.ID)
		}
		if room.Capacity < 0 {
			return nil, inputErrorf("room %q has negative capacity %d", room.ID, room.Capacity)
		}
		cat.Rooms[room.ID] = room
		cat.RoomIDs = append(cat.RoomIDs, room.ID)
	}

	for _, subject := range payload.Subjects {
		if subject.ID == "" {
			return nil, inputErrorf("subject with missing id")
		}
		if _, ok := cat.Subjects[subject.ID]; ok {
			return nil, inputErrorf("duplicate subject id %q", subject.ID)
		}
		if subject.Duration == 0 {
			subject.Duration = 1
		}
		if subject.Duration < 1 {
			return nil, inputErrorf("subject %q has duration %d, must be at least 1", subject.ID, subject.Duration)
		}
		cat.Subjects[subject.ID] = subject
		cat.SubjectIDs = append(cat.SubjectIDs, subject.ID)
	}

	for _, batch := range payload.Batches {
		if batch.ID == "" {
			return nil, inputErrorf("batch with missing id")
		}
		if _, ok := cat.Batches[batch.ID]; ok {
			return nil, inputErrorf("duplicate batch id %q", batch.ID)
		}
		if batch.StudentCount < 0 {
			return nil, inputErrorf("batch %q has negative student count %d", batch.ID, batch.StudentCount)
		}
		cat.Batches[batch.ID] = batch
		cat.BatchIDs = append(cat.BatchIDs, batch.ID)
	}

	for _, slot := range payload.Timeslots {
		if slot == "" {
			return nil, inputErrorf("timeslot with missing id")
		}
		if _, ok := cat.SlotIndex[slot]; ok {
			return nil, inputErrorf("duplicate timeslot id %q", slot)
		}
		cat.SlotIndex[slot] = len(cat.Slots)
		cat.Slots = append(cat.Slots, slot)
	}

	for _, fixed := range payload.Overrides.FixedAssignments {
		if err := cat.checkFixed(fixed); err != nil {
			return nil, err
		}
		cat.Fixed = append(cat.Fixed, fixed)
	}

	return cat, nil
}

func (cat *Catalog) checkFixed(fixed FixedAssignment) error {
	if _, ok := cat.Subjects[fixed.SubjectID]; !ok {
		return inputErrorf("fixed assignment references unknown subject %q", fixed.SubjectID)
	}
	if _, ok := cat.Batches[fixed.BatchID]; !ok {
		return inputErrorf("fixed assignment references unknown batch %q", fixed.BatchID)
	}
	if _, ok := cat.SlotIndex[fixed.Slot]; !ok {
		return inputErrorf("fixed assignment references unknown timeslot %q", fixed.Slot)
	}
	if _, ok := cat.Rooms[fixed.RoomID]; !ok {
		return inputErrorf("fixed assignment references unknown room %q", fixed.RoomID)
	}
	if _, ok := cat.Faculty[fixed.FacultyID]; !ok {
		return inputErrorf("fixed assignment references unknown faculty %q", fixed.FacultyID)
	}
	return nil
}
