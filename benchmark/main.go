// Package main provides a performance benchmarking tool for the Cohort CLI.
// It generates synthetic populations of increasing size, runs the calculate and
// combinations commands against each one with and without run tracking, and
// writes CSV output for performance analysis and documentation.
//
// Prerequisites:
// - cohort binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated population files (default: a temp dir)
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the averaged timings of one command on one population.
type BenchmarkResult struct {
	People       int
	Command      string
	UntrackedAvg string
	TrackedAvg   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Workers  int
	Runs     int
	Sizes    []int
	Commands []string
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "cohort-bench-")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:  workDir,
		Timeout:  5 * time.Minute,
		Workers:  8,
		Runs:     3,
		Sizes:    []int{1_000, 10_000, 50_000},
		Commands: []string{"calculate", "combinations"},
	}

	if _, err := exec.LookPath("cohort"); err != nil {
		fmt.Printf("Prerequisites check failed: cohort binary not found in PATH\n")
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}
	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

type wireEvent struct {
	StateCode           string `json:"state_code"`
	ReleaseDate         string `json:"release_date"`
	CountyOfResidence   string `json:"county_of_residence,omitempty"`
	ReincarcerationDate string `json:"reincarceration_date,omitempty"`
	ReturnType          string `json:"return_type,omitempty"`
	FromSupervisionType string `json:"from_supervision_type,omitempty"`
}

type wirePerson struct {
	PersonID      int64       `json:"person_id"`
	Birthdate     string      `json:"birthdate"`
	Gender        string      `json:"gender"`
	Races         []string    `json:"races"`
	ReleaseEvents []wireEvent `json:"release_events"`
}

// generatePopulation writes n synthetic people as JSON Lines. A fixed seed keeps runs comparable.
func generatePopulation(path string, n int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(uint64(n), 42))
	genders := []string{"FEMALE", "MALE"}
	races := []string{"ASIAN", "BLACK", "WHITE"}
	counties := []string{"", "Cass", "Burleigh", "Ward"}
	base := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)

	enc := json.NewEncoder(file)
	for i := range n {
		p := wirePerson{
			PersonID:  int64(i + 1),
			Birthdate: base.AddDate(-20-rng.IntN(40), 0, rng.IntN(365)).Format(time.DateOnly),
			Gender:    genders[rng.IntN(len(genders))],
			Races:     []string{races[rng.IntN(len(races))]},
		}
		release := base.AddDate(0, 0, rng.IntN(3650))
		for range 1 + rng.IntN(3) {
			e := wireEvent{
				StateCode:         "ND",
				ReleaseDate:       release.Format(time.DateOnly),
				CountyOfResidence: counties[rng.IntN(len(counties))],
			}
			if rng.IntN(2) == 0 {
				back := release.AddDate(0, 0, 30+rng.IntN(1500))
				e.ReincarcerationDate = back.Format(time.DateOnly)
				e.ReturnType = "NEW_ADMISSION"
				if rng.IntN(2) == 0 {
					e.ReturnType = "REVOCATION"
					e.FromSupervisionType = "PAROLE"
				}
				p.ReleaseEvents = append(p.ReleaseEvents, e)
				release = back.AddDate(0, 0, 60+rng.IntN(700))
				continue
			}
			p.ReleaseEvents = append(p.ReleaseEvents, e)
			break
		}
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// runBenchmarks generates each population and times every command on it.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, %d workers, %d runs\n",
		len(config.Sizes), config.Timeout, config.Workers, config.Runs)

	for _, size := range config.Sizes {
		path := filepath.Join(config.WorkDir, fmt.Sprintf("people_%d.jsonl", size))
		fmt.Printf("Generating %d people at %s\n", size, path)
		if err := generatePopulation(path, size); err != nil {
			return nil, fmt.Errorf("failed to generate population: %w", err)
		}
		dbPath := filepath.Join(config.WorkDir, fmt.Sprintf("runs_%d.db", size))

		for _, command := range config.Commands {
			fmt.Printf("Running %s on %d people\n", command, size)
			untracked := average(runBenchmark(config, command, path, "none", ""))
			tracked := "n/a"
			if command == "calculate" {
				tracked = average(runBenchmark(config, command, path, "sqlite", dbPath))
			}
			fmt.Printf("  Untracked average: %s, Tracked average: %s\n", untracked, tracked)
			results = append(results, BenchmarkResult{People: size, Command: command, UntrackedAvg: untracked, TrackedAvg: tracked})
		}
	}
	return results, nil
}

// runBenchmark runs one command config.Runs times and returns the successful durations in seconds.
func runBenchmark(config BenchmarkConfig, command, path, backend, dbPath string) []float64 {
	args := []string{command, path,
		"--workers", strconv.Itoa(config.Workers),
		"--output", "csv", "--output-file", os.DevNull,
		"--run-backend", backend,
	}
	if dbPath != "" {
		args = append(args, "--run-db-connect", dbPath)
	}

	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("cohort", args...)

		done := make(chan error, 1)
		go func() { done <- cmd.Run() }()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	filename := fmt.Sprintf("/tmp/cohort_benchmark_%s.csv", time.Now().Format("20060102_150405"))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"people", "cmd", "untracked_avg", "tracked_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{strconv.Itoa(r.People), r.Command, r.UntrackedAvg, r.TrackedAvg}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-12s %7d people: Untracked: %s, Tracked: %s\n", r.Command, r.People, r.UntrackedAvg, r.TrackedAvg)
	}
}
