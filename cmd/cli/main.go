package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"timetablegen/internal/catalog"
	"timetablegen/internal/model"
	"timetablegen/internal/opb"
	"timetablegen/pkg/config"
)

var backends = map[string]func() opb.Backend{
	"gophersat":   opb.NewGophersatBackend,
	"roundingsat": opb.NewRoundingsatBackend,
	"backtrack":   opb.NewBacktrackBackend,
}

func main() {
	// Define arguments
	backendPtr := flag.String("backend", "gophersat", "Solver backend to use. Allowed values are: \"gophersat\", \"roundingsat\", \"backtrack\", where \"gophersat\" is the default")
	timeoutPtr := flag.Float64("timeout", 10.0, "Solver budget in seconds; a max_time_s override in the input file wins")
	filePathPtr := flag.String("file", "", "Path to the input file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	flag.Parse()
	backendStr := strings.ToLower(*backendPtr)
	timeout := *timeoutPtr
	filePath := *filePathPtr
	outFile := *outFilePathPtr

	// Validate arguments
	if !slices.Contains(config.Backends, backendStr) {
		log.Fatalf("%v is not a valid backend", backendStr)
	} else if filePath == "" {
		log.Fatal("an input file must be specified")
	} else if timeout <= 0 {
		log.Fatalf("timeout must be positive: %v", timeout)
	}

	// Extract input
	payload, err := catalog.PayloadFromJSON(filePath)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	// Initialize engines
	scheduler := model.NewScheduler(backends[backendStr](), model.Options{
		DefaultBudget: time.Duration(timeout * float64(time.Second)),
	})

	// Build schedule
	result, err := scheduler.Generate(payload)
	if err != nil {
		log.Fatalf("an error occurred during schedule construction: %v", err)
	} else if result.Status == model.StatusUnsat {
		fmt.Printf("Solver status: %v\n", result.SolverStatus)
		os.Exit(20)
	}

	// Verify schedule correctness
	if !scheduler.Verify(result, payload) {
		fmt.Printf("Solver status: %v\n", result.SolverStatus)
		os.Exit(15)
	}

	// Marshal output into json
	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if outFile == "" {
		fmt.Println(string(resultJson))
	} else {
		err := os.WriteFile(outFile, resultJson, 0666)
		if err != nil {
			log.Fatalf("an error occurred while writing to the output file: %v", err)
		}
	}

	fmt.Printf("Assignments: %v\n", result.AssignmentsCount)
	fmt.Printf("Score: %v\n", result.Score)
	os.Exit(10)
}
