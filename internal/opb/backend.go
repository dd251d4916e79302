package opb

import "time"

type Status int

const (
	// StatusOptimal means the backend proved the returned assignment maximal.
	StatusOptimal Status = iota
	// StatusFeasible means the budget expired before optimality could be proven,
	// but a valid assignment was found.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies all constraints.
	StatusInfeasible
	// StatusTimeout means the budget expired before any assignment was found.
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeout:
		return "timeout_no_solution"
	}
	return "unknown"
}

// Solved reports whether the status carries a usable assignment.
func (s Status) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Result is a backend verdict. Assignment is indexed by variable (slot 0 unused)
// and is only meaningful when Status.Solved() holds.
type Result struct {
	Status     Status
	Assignment []bool
	Score      int
}

// Backend solves a pseudo-boolean optimization model within a wall-clock budget.
// Implementations must return control at or before the budget's expiry; the
// caller enforces no timeout on top of it.
type Backend interface {
	Solve(model Model, budget time.Duration) (Result, error)
}
