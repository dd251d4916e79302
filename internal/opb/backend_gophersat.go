package opb

import (
	"fmt"
	"strings"
	"time"

	"github.com/crillab/gophersat/solver"
)

// gophersatBackend solves models in-process with the gophersat PB solver. The
// budget is enforced through Optimal's stop channel: the best model received
// before the stop is kept and reported as feasible.
type gophersatBackend struct{}

func NewGophersatBackend() Backend {
	return &gophersatBackend{}
}

func (backend *gophersatBackend) Solve(model Model, budget time.Duration) (Result, error) {
	if model.Variables == 0 {
		return Result{Status: StatusOptimal, Assignment: make([]bool, 1)}, nil
	}

	problem, err := solver.ParseOPB(strings.NewReader(model.ToOPB()))
	if err != nil {
		return Result{}, fmt.Errorf("cannot parse opb model: %w", err)
	}

	s := solver.New(problem)

	results := make(chan solver.Result)
	final := make(chan solver.Result, 1)
	stop := make(chan struct{})
	go func() {
		final <- s.Optimal(results, stop)
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var best solver.Result
	seen, timedOut := false, false
	for {
		select {
		case intermediate, ok := <-results:
			if !ok {
				results = nil // Optimal closes the channel before returning
				continue
			}
			if intermediate.Status == solver.Sat {
				best, seen = intermediate, true
			}
		case <-timer.C:
			close(stop)
			timedOut = true
		case res := <-final:
			return backend.interpret(model, res, best, seen, timedOut), nil
		}
	}
}

func (backend *gophersatBackend) interpret(model Model, res, best solver.Result, seen, timedOut bool) Result {
	switch res.Status {
	case solver.Unsat:
		return Result{Status: StatusInfeasible}
	case solver.Sat:
		status := StatusOptimal
		if timedOut {
			status = StatusFeasible
		}
		assignment := assignmentFromModel(res.Model, model.Variables)
		return Result{Status: status, Assignment: assignment, Score: model.Score(assignment)}
	default: // solver.Indet: the search was stopped by the budget
		if seen {
			assignment := assignmentFromModel(best.Model, model.Variables)
			return Result{Status: StatusFeasible, Assignment: assignment, Score: model.Score(assignment)}
		}
		return Result{Status: StatusTimeout}
	}
}

// assignmentFromModel reindexes the solver's model, where variable v sits at
// index v-1, into the 1-indexed assignment shape.
func assignmentFromModel(model []bool, variables int) []bool {
	assignment := make([]bool, variables+1)
	for i, value := range model {
		if i < variables {
			assignment[i+1] = value
		}
	}
	return assignment
}
