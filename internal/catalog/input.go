package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// Faculty is an instructor. A non-empty AvailableSlots is the exclusive set of
// slots the instructor may teach in; empty means unrestricted. SubjectsCanTeach
// narrows the admissible variable space; AvailableDays and NoConsecutiveSlots
// are carried through for callers but generate no constraints.
type Faculty struct {
	ID                 string   `mapstructure:"id" json:"id"`
	SubjectsCanTeach   []string `mapstructure:"subjects_can_teach" json:"subjects_can_teach,omitempty"`
	AvailableDays      []string `mapstructure:"available_days" json:"available_days,omitempty"`
	AvailableSlots     []string `mapstructure:"available_slots" json:"available_slots,omitempty"`
	PreferredSlots     []string `mapstructure:"preferred_slots" json:"preferred_slots,omitempty"`
	NoConsecutiveSlots bool     `mapstructure:"no_consecutive_slots" json:"no_consecutive_slots,omitempty"`
}

type Room struct {
	ID           string   `mapstructure:"id" json:"id"`
	RoomType     string   `mapstructure:"room_type" json:"room_type,omitempty"`
	Capacity     int      `mapstructure:"capacity" json:"capacity"`
	RoomAffinity []string `mapstructure:"room_affinity" json:"room_affinity,omitempty"`
}

// Subject is a course offering. Duration is the number of slots one session
// occupies; subjects typed "lab" or flagged RequiresContinuousSlots must occupy
// them consecutively.
type Subject struct {
	ID                      string `mapstructure:"id" json:"id"`
	SubjectType             string `mapstructure:"subject_type" json:"subject_type,omitempty"`
	Duration                int    `mapstructure:"duration" json:"duration,omitempty"`
	RequiresContinuousSlots bool   `mapstructure:"requires_continuous_slots" json:"requires_continuous_slots,omitempty"`
	RoomTypeRequired        string `mapstructure:"room_type_required" json:"room_type_required,omitempty"`
}

type Batch struct {
	ID           string   `mapstructure:"id" json:"id"`
	BranchID     string   `mapstructure:"branch_id" json:"branch_id,omitempty"`
	TrackCode    string   `mapstructure:"track_code" json:"track_code,omitempty"`
	StudentCount int      `mapstructure:"student_count" json:"student_count"`
	SubjectList  []string `mapstructure:"subject_list" json:"subject_list,omitempty"`
}

// FixedAssignment pre-locks one (subject, batch, slot, room, faculty) tuple.
type FixedAssignment struct {
	SubjectID string `mapstructure:"subject_id" json:"subject_id"`
	BatchID   string `mapstructure:"batch_id" json:"batch_id"`
	Slot      string `mapstructure:"slot" json:"slot"`
	RoomID    string `mapstructure:"room_id" json:"room_id"`
	FacultyID string `mapstructure:"faculty_id" json:"faculty_id"`
}

type Overrides struct {
	FixedAssignments []FixedAssignment `mapstructure:"fixed_assignments" json:"fixed_assignments,omitempty"`
	MaxTimeS         float64           `mapstructure:"max_time_s" json:"max_time_s,omitempty"`
}

// Payload is the raw input of one solve call. Timeslots are ordered; their
// position defines the continuity ordering.
type Payload struct {
	Faculty   []Faculty `mapstructure:"faculty" json:"faculty"`
	Rooms     []Room    `mapstructure:"rooms" json:"rooms"`
	Subjects  []Subject `mapstructure:"subjects" json:"subjects"`
	Batches   []Batch   `mapstructure:"batches" json:"batches"`
	Timeslots []string  `mapstructure:"timeslots" json:"timeslots"`
	Overrides Overrides `mapstructure:"overrides" json:"overrides,omitempty"`
}

// DecodePayload turns a loosely-typed document into a Payload. Decoding is
// weakly typed so numeric ids coerce to strings.
func DecodePayload(document map[string]any) (Payload, error) {
	var payload Payload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return Payload{}, err
	}
	if err := decoder.Decode(document); err != nil {
		return Payload{}, inputErrorf("cannot decode payload: %v", err)
	}
	return payload, nil
}

// PayloadFromJSON reads and decodes a payload file.
func PayloadFromJSON(file string) (Payload, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Payload{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var document map[string]any
	if err := json.Unmarshal(bytes, &document); err != nil {
		return Payload{}, err
	}

	return DecodePayload(document)
}
