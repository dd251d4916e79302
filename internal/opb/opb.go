package opb

import (
	"fmt"
	"slices"
	"strings"
)

// Model is a pseudo-boolean optimization instance: boolean variables numbered
// from 1 to Variables, a set of normalized linear constraints and a linear
// objective to maximize.
type Model struct {
	Variables int
	Constrs   []Constr
	Objective []Term
}

// Constr is a normalized linear constraint: sum(Coeffs[i] * x_Vars[i]) >= AtLeast.
// Every constraint shape the model builder needs (at-most-one, implication,
// forced literal) is expressible in this form.
type Constr struct {
	Vars    []int
	Coeffs  []int
	AtLeast int
}

// Term is one objective entry: Coeff is added to the score whenever x_Var is true.
type Term struct {
	Var   int
	Coeff int
}

// AtMostOne constrains the given variables so that no two of them are true.
func AtMostOne(vars []int) Constr {
	coeffs := make([]int, len(vars))
	for i := range coeffs {
		coeffs[i] = -1
	}
	return Constr{Vars: vars, Coeffs: coeffs, AtLeast: -1}
}

// Exactly constrains the given variables so that exactly k of them are true,
// emitted as an at-least and an at-most pair.
func Exactly(vars []int, k int) []Constr {
	atLeast := make([]int, len(vars))
	atMost := make([]int, len(vars))
	for i := range vars {
		atLeast[i] = 1
		atMost[i] = -1
	}
	return []Constr{
		{Vars: vars, Coeffs: atLeast, AtLeast: k},
		{Vars: slices.Clone(vars), Coeffs: atMost, AtLeast: -k},
	}
}

// ForceTrue pins a variable to 1.
func ForceTrue(v int) Constr {
	return Constr{Vars: []int{v}, Coeffs: []int{1}, AtLeast: 1}
}

// ForceFalse pins a variable to 0.
func ForceFalse(v int) Constr {
	return Constr{Vars: []int{v}, Coeffs: []int{-1}, AtLeast: 0}
}

// Implies encodes antecedent <= consequent: whenever the antecedent variable is
// true the consequent variable must be true as well.
func Implies(antecedent, consequent int) Constr {
	return Constr{Vars: []int{antecedent, consequent}, Coeffs: []int{-1, 1}, AtLeast: 0}
}

// ToOPB transforms the model into the OPB pseudo-boolean string format. OPB
// only knows "min:", so the maximize objective is emitted as minimizing the
// complement: positive weights over negated literals ("+c ~xN" per term).
// Weights must stay positive, solvers reject or mishandle negative ones.
func (m Model) ToOPB() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "* #variable= %d #constraint= %d\n", m.Variables, len(m.Constrs))

	objective := ""
	for _, term := range m.Objective {
		switch {
		case term.Coeff > 0:
			objective += fmt.Sprintf(" +%d ~x%d", term.Coeff, term.Var)
		case term.Coeff < 0:
			objective += fmt.Sprintf(" +%d x%d", -term.Coeff, term.Var)
		}
	}
	if objective != "" {
		builder.WriteString("min:" + objective + " ;\n")
	}

	for _, constr := range m.Constrs {
		for i, v := range constr.Vars {
			fmt.Fprintf(&builder, "%+d x%d ", constr.Coeffs[i], v)
		}
		fmt.Fprintf(&builder, ">= %d ;\n", constr.AtLeast)
	}

	return builder.String()
}

// Score evaluates the objective under the given assignment (indexed by variable).
func (m Model) Score(assignment []bool) int {
	score := 0
	for _, term := range m.Objective {
		if term.Var < len(assignment) && assignment[term.Var] {
			score += term.Coeff
		}
	}
	return score
}
