package opb

import (
	"fmt"
	"time"
)

// The exact search is only meant for small instances; anything larger belongs to
// a real PB solver.
const maxBacktrackVariables = 4096

// Deadline checks are amortized over this many visited nodes.
const deadlineCheckInterval = 1024

// backtrackBackend is a dependency-free exact solver: depth-first search over the
// variables with constraint propagation bounds and branch-and-bound pruning on
// the objective. Used as a fallback and by tests, where its verdicts have to be
// trustworthy rather than fast.
type backtrackBackend struct{}

func NewBacktrackBackend() Backend {
	return &backtrackBackend{}
}

type backtrackSearch struct {
	model    Model
	deadline time.Time

	// Per-constraint running sums: sum of assigned terms, and the maximum the
	// still-unassigned variables could contribute. A constraint is dead when
	// sum + maxRemaining < AtLeast.
	sum          []int
	maxRemaining []int

	// Per-variable constraint occurrences.
	occurrences [][]occurrence

	objCoeff     []int
	objRemaining int
	objCurrent   int

	assignment []bool
	best       []bool
	bestScore  int
	found      bool

	nodes    int
	timedOut bool
}

type occurrence struct {
	constr int
	coeff  int
}

func (backend *backtrackBackend) Solve(model Model, budget time.Duration) (Result, error) {
	if model.Variables > maxBacktrackVariables {
		return Result{}, fmt.Errorf("instance too large for exact search: %d variables (limit %d)", model.Variables, maxBacktrackVariables)
	}

	search := newBacktrackSearch(model, time.Now().Add(budget))

	// Constraints with no variables are either trivially true or contradictions
	for _, constr := range model.Constrs {
		if len(constr.Vars) == 0 && constr.AtLeast > 0 {
			return Result{Status: StatusInfeasible}, nil
		}
	}

	search.explore(1)

	switch {
	case search.found && !search.timedOut:
		return Result{Status: StatusOptimal, Assignment: search.best, Score: search.bestScore}, nil
	case search.found:
		return Result{Status: StatusFeasible, Assignment: search.best, Score: search.bestScore}, nil
	case search.timedOut:
		return Result{Status: StatusTimeout}, nil
	default:
		return Result{Status: StatusInfeasible}, nil
	}
}

func newBacktrackSearch(model Model, deadline time.Time) *backtrackSearch {
	search := &backtrackSearch{
		model:        model,
		deadline:     deadline,
		sum:          make([]int, len(model.Constrs)),
		maxRemaining: make([]int, len(model.Constrs)),
		occurrences:  make([][]occurrence, model.Variables+1),
		objCoeff:     make([]int, model.Variables+1),
		assignment:   make([]bool, model.Variables+1),
	}

	for i, constr := range model.Constrs {
		for j, v := range constr.Vars {
			coeff := constr.Coeffs[j]
			search.occurrences[v] = append(search.occurrences[v], occurrence{constr: i, coeff: coeff})
			if coeff > 0 {
				search.maxRemaining[i] += coeff
			}
		}
	}

	for _, term := range model.Objective {
		search.objCoeff[term.Var] += term.Coeff
		if term.Coeff > 0 {
			search.objRemaining += term.Coeff
		}
	}

	return search
}

func (search *backtrackSearch) explore(variable int) {
	if search.timedOut {
		return
	}
	if search.nodes++; search.nodes%deadlineCheckInterval == 0 && time.Now().After(search.deadline) {
		search.timedOut = true
		return
	}

	if variable > search.model.Variables {
		score := search.objCurrent
		if !search.found || score > search.bestScore {
			search.best = append([]bool(nil), search.assignment...)
			search.bestScore = score
			search.found = true
		}
		return
	}

	// Objective bound: even assigning every remaining positive coefficient cannot
	// beat the incumbent
	if search.found && search.objCurrent+search.objRemaining <= search.bestScore {
		return
	}

	// Try true first: with non-negative preference coefficients the denser
	// assignment tends to score higher
	for _, value := range [2]bool{true, false} {
		if search.assign(variable, value) {
			search.explore(variable + 1)
		}
		search.unassign(variable, value)
		if search.timedOut {
			return
		}
	}
}

// assign fixes a variable and reports whether every touched constraint can still
// be satisfied.
func (search *backtrackSearch) assign(variable int, value bool) bool {
	search.assignment[variable] = value

	feasible := true
	for _, occ := range search.occurrences[variable] {
		if occ.coeff > 0 {
			search.maxRemaining[occ.constr] -= occ.coeff
		}
		if value {
			search.sum[occ.constr] += occ.coeff
		}
		if search.sum[occ.constr]+search.maxRemaining[occ.constr] < search.model.Constrs[occ.constr].AtLeast {
			feasible = false
		}
	}

	coeff := search.objCoeff[variable]
	if coeff > 0 {
		search.objRemaining -= coeff
	}
	if value {
		search.objCurrent += coeff
	}

	return feasible
}

func (search *backtrackSearch) unassign(variable int, value bool) {
	for _, occ := range search.occurrences[variable] {
		if occ.coeff > 0 {
			search.maxRemaining[occ.constr] += occ.coeff
		}
		if value {
			search.sum[occ.constr] -= occ.coeff
		}
	}

	coeff := search.objCoeff[variable]
	if coeff > 0 {
		search.objRemaining += coeff
	}
	if value {
		search.objCurrent -= coeff
	}
	search.assignment[variable] = false
}
