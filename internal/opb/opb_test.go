package opb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToOPB(t *testing.T) {
	// Arrange
	model := Model{
		Variables: 3,
		Constrs: []Constr{
			AtMostOne([]int{1, 2}),
			Implies(1, 3),
			ForceTrue(2),
			ForceFalse(3),
		},
		Objective: []Term{{Var: 1, Coeff: 2}, {Var: 2, Coeff: 1}},
	}

	// Act
	opb := model.ToOPB()

	// Assert
	expected := "* #variable= 3 #constraint= 4\n" +
		"min: +2 ~x1 +1 ~x2 ;\n" +
		"-1 x1 -1 x2 >= -1 ;\n" +
		"-1 x1 +1 x3 >= 0 ;\n" +
		"+1 x2 >= 1 ;\n" +
		"-1 x3 >= 0 ;\n"
	assert.Equal(t, expected, opb)
}

func TestToOPBWithoutObjective(t *testing.T) {
	model := Model{
		Variables: 1,
		Constrs:   []Constr{ForceTrue(1)},
	}

	assert.Equal(t, "* #variable= 1 #constraint= 1\n+1 x1 >= 1 ;\n", model.ToOPB())
}

func TestToOPBObjectiveWeightsStayPositive(t *testing.T) {
	// Negative terms flip to the plain literal, zero terms vanish
	model := Model{
		Variables: 3,
		Objective: []Term{{Var: 1, Coeff: 2}, {Var: 2, Coeff: -3}, {Var: 3, Coeff: 0}},
	}

	assert.Equal(t, "* #variable= 3 #constraint= 0\nmin: +2 ~x1 +3 x2 ;\n", model.ToOPB())
}

func TestToOPBAllZeroObjectiveOmitsMinLine(t *testing.T) {
	model := Model{
		Variables: 1,
		Constrs:   []Constr{ForceTrue(1)},
		Objective: []Term{{Var: 1, Coeff: 0}},
	}

	assert.Equal(t, "* #variable= 1 #constraint= 1\n+1 x1 >= 1 ;\n", model.ToOPB())
}

func TestExactly(t *testing.T) {
	constrs := Exactly([]int{2, 4, 5}, 2)

	assert.Equal(t, []Constr{
		{Vars: []int{2, 4, 5}, Coeffs: []int{1, 1, 1}, AtLeast: 2},
		{Vars: []int{2, 4, 5}, Coeffs: []int{-1, -1, -1}, AtLeast: -2},
	}, constrs)
}

func TestScore(t *testing.T) {
	model := Model{
		Variables: 3,
		Objective: []Term{{Var: 1, Coeff: 2}, {Var: 2, Coeff: 1}, {Var: 3, Coeff: 5}},
	}

	assert.Equal(t, 7, model.Score([]bool{false, true, false, true}))
	assert.Equal(t, 0, model.Score([]bool{false, false, false, false}))
}

func TestParseSolutionLine(t *testing.T) {
	// Arrange
	line := "v x1 -x2 x3"

	// Act
	assignment, err := ParseSolutionLine(line, 3)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, []bool{false, true, false, true}, assignment)
}

func TestParseSolutionLineInvalidLiteral(t *testing.T) {
	_, err := ParseSolutionLine("v x1 y2", 2)
	assert.NotNil(t, err)
}
