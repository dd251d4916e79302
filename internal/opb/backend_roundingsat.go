package opb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const roundingsatPath = "roundingsat"

// roundingsatBackend shells out to the RoundingSat pseudo-boolean solver, feeding
// the OPB model into its standard input. The budget is enforced by killing the
// process through the command context; any "v" line printed before that still
// yields a feasible assignment.
type roundingsatBackend struct{}

func NewRoundingsatBackend() Backend {
	return &roundingsatBackend{}
}

func (backend *roundingsatBackend) Solve(model Model, budget time.Duration) (Result, error) {
	if model.Variables == 0 {
		return Result{Status: StatusOptimal, Assignment: make([]bool, 1)}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	cmd := exec.CommandContext(ctx, roundingsatPath, "--print-sol=1")
	cmd.Stdin = strings.NewReader(model.ToOPB())

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	timedOut := ctx.Err() == context.DeadlineExceeded

	// Exit codes follow the PB competition convention: 30 stands for optimum
	// found, 10 for satisfiable and 20 for unsatisfiable
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil && !timedOut && exitCode != 10 && exitCode != 20 && exitCode != 30 {
		return Result{}, fmt.Errorf("an error occurred during roundingsat execution: %v : %v", err.Error(), stderr.String())
	}

	lines := strings.Split(stdOut.String(), "\n")
	statusLine, _ := lo.Find(lines, func(line string) bool { return strings.HasPrefix(line, "s ") })
	solutionLine, hasSolution := lo.Find(lines, func(line string) bool { return strings.HasPrefix(line, "v ") })

	var assignment []bool
	if hasSolution {
		assignment, err = ParseSolutionLine(solutionLine, model.Variables)
		if err != nil {
			return Result{}, err
		}
	}

	switch strings.TrimSpace(strings.TrimPrefix(statusLine, "s ")) {
	case "OPTIMUM FOUND":
		return Result{Status: StatusOptimal, Assignment: assignment, Score: model.Score(assignment)}, nil
	case "UNSATISFIABLE":
		return Result{Status: StatusInfeasible}, nil
	case "SATISFIABLE":
		return Result{Status: StatusFeasible, Assignment: assignment, Score: model.Score(assignment)}, nil
	}

	if hasSolution {
		return Result{Status: StatusFeasible, Assignment: assignment, Score: model.Score(assignment)}, nil
	}
	return Result{Status: StatusTimeout}, nil
}

// ParseSolutionLine decodes a PB-competition "v" line ("v x1 -x2 x3 ...") into an
// assignment indexed by variable.
func ParseSolutionLine(line string, variables int) ([]bool, error) {
	assignment := make([]bool, variables+1)

	for _, literal := range strings.Fields(strings.TrimPrefix(line, "v ")) {
		value := true
		if strings.HasPrefix(literal, "-") {
			value = false
			literal = literal[1:]
		}
		if !strings.HasPrefix(literal, "x") {
			return nil, fmt.Errorf("invalid literal in solver output: %v", literal)
		}
		v, err := strconv.Atoi(literal[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %v", err)
		}
		if v >= 1 && v <= variables {
			assignment[v] = value
		}
	}

	return assignment, nil
}
