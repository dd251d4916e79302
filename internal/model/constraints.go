package model

import (
	"github.com/samber/lo"

	"timetablegen/internal/catalog"
	"timetablegen/internal/opb"
)

// constraintCompiler emits every hard rule of the scheduling problem as
// normalized linear constraints over the variable space. Auxiliary variables
// (beyond the tuple variables) are allocated for continuity run starts.
type constraintCompiler struct {
	cat   *catalog.Catalog
	space *VariableSpace
	aux   int
}

func newConstraintCompiler(cat *catalog.Catalog, space *VariableSpace) *constraintCompiler {
	return &constraintCompiler{cat: cat, space: space, aux: space.Size()}
}

// compile returns the full hard-constraint set and the total variable count
// (tuple variables plus auxiliaries).
func (c *constraintCompiler) compile() ([]opb.Constr, int, error) {
	constrs := make([]opb.Constr, 0)

	constrs = append(constrs, c.batchExclusivityConstraints()...)
	constrs = append(constrs, c.facultyExclusivityConstraints()...)
	constrs = append(constrs, c.roomExclusivityConstraints()...)
	constrs = append(constrs, c.availabilityConstraints()...)
	constrs = append(constrs, c.capacityConstraints()...)
	constrs = append(constrs, c.demandConstraints()...)

	continuity, err := c.continuityConstraints()
	if err != nil {
		return nil, 0, err
	}
	constrs = append(constrs, continuity...)

	fixed, err := c.fixedConstraints()
	if err != nil {
		return nil, 0, err
	}
	constrs = append(constrs, fixed...)

	return constrs, c.aux, nil
}

// A batch attends at most one lecture per slot.
func (c *constraintCompiler) batchExclusivityConstraints() []opb.Constr {
	return c.atMostOnePerSlot(func(t Tuple) string { return t.BatchID })
}

// A faculty member teaches at most one lecture per slot.
func (c *constraintCompiler) facultyExclusivityConstraints() []opb.Constr {
	return c.atMostOnePerSlot(func(t Tuple) string { return t.FacultyID })
}

// A room hosts at most one lecture per slot.
func (c *constraintCompiler) roomExclusivityConstraints() []opb.Constr {
	return c.atMostOnePerSlot(func(t Tuple) string { return t.RoomID })
}

// atMostOnePerSlot buckets the variable space by (entity, slot) and emits an
// at-most-one constraint per bucket. Bucketing over the existing variables
// avoids walking the full entity cross product.
func (c *constraintCompiler) atMostOnePerSlot(entity func(Tuple) string) []opb.Constr {
	buckets := make(map[[2]string][]int)
	order := make([][2]string, 0)

	for v := 1; v <= c.space.Size(); v++ {
		tuple := c.space.Attributes(v)
		key := [2]string{entity(tuple), tuple.Slot}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], v)
	}

	constrs := make([]opb.Constr, 0, len(order))
	for _, key := range order {
		if vars := buckets[key]; len(vars) > 1 {
			constrs = append(constrs, opb.AtMostOne(vars))
		}
	}
	return constrs
}

// A non-empty available_slots set is exclusive: variables placing the faculty
// member anywhere else are forced to 0.
func (c *constraintCompiler) availabilityConstraints() []opb.Constr {
	constrs := make([]opb.Constr, 0)
	for v := 1; v <= c.space.Size(); v++ {
		tuple := c.space.Attributes(v)
		faculty := c.cat.Faculty[tuple.FacultyID]
		if len(faculty.AvailableSlots) > 0 && !lo.Contains(faculty.AvailableSlots, tuple.Slot) {
			constrs = append(constrs, opb.ForceFalse(v))
		}
	}
	return constrs
}

// A batch never fits in a room smaller than its student count: the variable is
// forced to 0, not penalized.
func (c *constraintCompiler) capacityConstraints() []opb.Constr {
	constrs := make([]opb.Constr, 0)
	for v := 1; v <= c.space.Size(); v++ {
		tuple := c.space.Attributes(v)
		if c.cat.Batches[tuple.BatchID].StudentCount > c.cat.Rooms[tuple.RoomID].Capacity {
			constrs = append(constrs, opb.ForceFalse(v))
		}
	}
	return constrs
}

// A (subject, batch) pair with at least one admissible variable must be
// scheduled in exactly duration slots. Pairs left without any variable by the
// admissibility pruning carry no demand; they are simply absent from the
// schedule.
func (c *constraintCompiler) demandConstraints() []opb.Constr {
	buckets := make(map[[2]string][]int)
	order := make([][2]string, 0)

	for v := 1; v <= c.space.Size(); v++ {
		tuple := c.space.Attributes(v)
		key := [2]string{tuple.SubjectID, tuple.BatchID}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], v)
	}

	constrs := make([]opb.Constr, 0, 2*len(order))
	for _, key := range order {
		duration := c.cat.Subjects[key[0]].Duration
		constrs = append(constrs, opb.Exactly(buckets[key], duration)...)
	}
	return constrs
}

// continuityConstrained reports whether a subject must occupy consecutive
// slots. The "lab" type and the requires_continuous_slots flag are two
// independently sufficient triggers for the same rule.
func continuityConstrained(subject catalog.Subject) bool {
	return subject.SubjectType == "lab" || subject.RequiresContinuousSlots
}

// continuityConstraints encodes the lab rule per (subject, batch). An auxiliary
// start variable is allocated for every legal run: a start slot whose
// duration-long window stays inside the ordered slot sequence and whose window
// variables all exist, within one (room, faculty) pair. A start implies every
// window variable ("start <= successor" per slot); at most one run may start
// per (subject, batch); and every occupied slot must be covered by the selected
// run. Runs never cross room or faculty boundaries. Starts whose window runs
// past the end of the slot sequence get no variable, which forces them to 0.
func (c *constraintCompiler) continuityConstraints() ([]opb.Constr, error) {
	constrs := make([]opb.Constr, 0)

	for _, subjectID := range c.cat.SubjectIDs {
		subject := c.cat.Subjects[subjectID]
		if !continuityConstrained(subject) {
			continue
		}
		if subject.Duration < 1 {
			return nil, modelErrorf("continuity run for subject %q computed with non-positive duration %d", subjectID, subject.Duration)
		}

		for _, batchID := range c.cat.BatchIDs {
			starts := make([]int, 0)
			covers := make(map[int][]int)

			for _, roomID := range c.cat.RoomIDs {
				for _, facultyID := range c.cat.FacultyIDs {
					for si := 0; si+subject.Duration <= len(c.cat.Slots); si++ {
						window := c.runWindow(subjectID, batchID, roomID, facultyID, si, subject.Duration)
						if window == nil {
							continue
						}

						c.aux++
						start := c.aux
						starts = append(starts, start)
						for _, v := range window {
							constrs = append(constrs, opb.Implies(start, v))
							covers[v] = append(covers[v], start)
						}
					}
				}
			}

			if len(starts) > 1 {
				constrs = append(constrs, opb.AtMostOne(starts))
			}

			// Occupying a slot without a covering run is forbidden, so the
			// subject shows up as exactly one consecutive window or not at all
			for v := 1; v <= c.space.Size(); v++ {
				tuple := c.space.Attributes(v)
				if tuple.SubjectID != subjectID || tuple.BatchID != batchID {
					continue
				}
				covering := covers[v]
				if len(covering) == 0 {
					constrs = append(constrs, opb.ForceFalse(v))
					continue
				}
				vars := append([]int{v}, covering...)
				coeffs := make([]int, len(vars))
				coeffs[0] = -1
				for i := 1; i < len(coeffs); i++ {
					coeffs[i] = 1
				}
				constrs = append(constrs, opb.Constr{Vars: vars, Coeffs: coeffs, AtLeast: 0})
			}
		}
	}

	return constrs, nil
}

// runWindow collects the tuple variables of one candidate run. A missing
// variable anywhere in the window means the run can never be scheduled; the
// lookup failure is tolerated silently and the run is simply not generated.
func (c *constraintCompiler) runWindow(subjectID, batchID, roomID, facultyID string, start, duration int) []int {
	window := make([]int, 0, duration)
	for offset := 0; offset < duration; offset++ {
		v, ok := c.space.Index(Tuple{
			SubjectID: subjectID,
			BatchID:   batchID,
			Slot:      c.cat.Slots[start+offset],
			RoomID:    roomID,
			FacultyID: facultyID,
		})
		if !ok {
			return nil
		}
		window = append(window, v)
	}
	return window
}

// Every fixed assignment pins its exactly-matching variable to 1. A fixed
// assignment whose tuple is not in the admissible space is a modeling error,
// never silently dropped.
func (c *constraintCompiler) fixedConstraints() ([]opb.Constr, error) {
	constrs := make([]opb.Constr, 0, len(c.cat.Fixed))
	for _, fixed := range c.cat.Fixed {
		v, ok := c.space.Index(Tuple{
			SubjectID: fixed.SubjectID,
			BatchID:   fixed.BatchID,
			Slot:      fixed.Slot,
			RoomID:    fixed.RoomID,
			FacultyID: fixed.FacultyID,
		})
		if !ok {
			return nil, modelErrorf("fixed assignment (%v, %v, %v, %v, %v) is not in the admissible variable space",
				fixed.SubjectID, fixed.BatchID, fixed.Slot, fixed.RoomID, fixed.FacultyID)
		}
		constrs = append(constrs, opb.ForceTrue(v))
	}
	return constrs, nil
}
