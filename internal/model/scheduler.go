package model

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"timetablegen/internal/catalog"
	"timetablegen/internal/opb"
)

const (
	StatusOK    = "ok"
	StatusUnsat = "unsat"
)

// DefaultBudget is the solver wall-clock budget used when the payload carries
// no max_time_s override.
const DefaultBudget = 10 * time.Second

// Assignment is one materialized schedule entry.
type Assignment struct {
	SubjectID string `json:"subject_id"`
	BatchID   string `json:"batch_id"`
	Slot      string `json:"slot"`
	RoomID    string `json:"room_id"`
	FacultyID string `json:"faculty_id"`
}

// ScheduleResult is the caller-facing solve verdict. Status is "ok" when the
// backend found an assignment (optimal or feasible) and "unsat" otherwise;
// SolverStatus keeps the backend's exact verdict for diagnostics.
type ScheduleResult struct {
	Status           string       `json:"status"`
	AssignmentsCount int          `json:"assignments_count,omitempty"`
	Assignments      []Assignment `json:"assignments,omitempty"`
	SolverStatus     string       `json:"-"`
	Score            int          `json:"-"`
}

type Scheduler interface {
	// Generate builds a fresh model from the payload snapshot, submits it to
	// the backend and materializes the verdict. InputError and
	// ModelConstructionError are returned as errors; infeasible and timeout
	// verdicts are data, reported as an unsat result.
	Generate(payload catalog.Payload) (ScheduleResult, error)

	// Verify re-checks a generated schedule against every hard rule.
	Verify(result ScheduleResult, payload catalog.Payload) bool
}

// Options configures a Scheduler. Zero values fall back to defaults.
type Options struct {
	Weights       Weights
	DefaultBudget time.Duration
	Logger        *zap.Logger
}

type scheduler struct {
	backend opb.Backend
	weights Weights
	budget  time.Duration
	logger  *zap.Logger
}

func NewScheduler(backend opb.Backend, options Options) Scheduler {
	if options.Weights == (Weights{}) {
		options.Weights = DefaultWeights()
	}
	if options.DefaultBudget <= 0 {
		options.DefaultBudget = DefaultBudget
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &scheduler{
		backend: backend,
		weights: options.Weights,
		budget:  options.DefaultBudget,
		logger:  options.Logger,
	}
}

func (s *scheduler) Generate(payload catalog.Payload) (ScheduleResult, error) {
	started := time.Now()

	cat, err := catalog.New(payload)
	if err != nil {
		return ScheduleResult{}, err
	}

	space := newVariableSpace(cat)
	constrs, variables, err := newConstraintCompiler(cat, space).compile()
	if err != nil {
		return ScheduleResult{}, err
	}

	model := opb.Model{
		Variables: variables,
		Constrs:   constrs,
		Objective: compileObjective(cat, space, s.weights),
	}

	budget := s.budget
	if payload.Overrides.MaxTimeS > 0 {
		budget = time.Duration(payload.Overrides.MaxTimeS * float64(time.Second))
	}

	result, err := s.backend.Solve(model, budget)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("backend solve failed: %w", err)
	}

	s.logger.Info("solve finished",
		zap.Int("variables", variables),
		zap.Int("constraints", len(constrs)),
		zap.String("status", result.Status.String()),
		zap.Int("score", result.Score),
		zap.Duration("took", time.Since(started)),
	)

	if !result.Status.Solved() {
		return ScheduleResult{Status: StatusUnsat, SolverStatus: result.Status.String()}, nil
	}

	assignments := materialize(space, result.Assignment)
	return ScheduleResult{
		Status:           StatusOK,
		AssignmentsCount: len(assignments),
		Assignments:      assignments,
		SolverStatus:     result.Status.String(),
		Score:            result.Score,
	}, nil
}

// materialize converts the true tuple variables into plain schedule records.
// Auxiliary variables beyond the space are ignored.
func materialize(space *VariableSpace, assignment []bool) []Assignment {
	assignments := make([]Assignment, 0)
	for v := 1; v <= space.Size(); v++ {
		if v >= len(assignment) || !assignment[v] {
			continue
		}
		tuple := space.Attributes(v)
		assignments = append(assignments, Assignment{
			SubjectID: tuple.SubjectID,
			BatchID:   tuple.BatchID,
			Slot:      tuple.Slot,
			RoomID:    tuple.RoomID,
			FacultyID: tuple.FacultyID,
		})
	}
	return assignments
}
