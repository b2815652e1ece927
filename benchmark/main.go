// Package main provides a performance benchmarking tool for the debrief CLI.
// It measures execution times across survey exports and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - debrief binary installed and available in PATH
// - Survey exports (.csv or .xlsx) placed in the specified base directory
//
// Usage: go run benchmark/main.go [survey-base-dir]
//
//	survey-base-dir: Directory containing survey exports
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Survey      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	SurveyBase  string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Surveys     []string
}

// completionPhrases maps each benchmarked command to the line it prints on success.
var completionPhrases = map[string]string{
	"overview": "Overview built in",
	"themes":   "Themes ranked in",
	"trends":   "Trends built in",
	"compare":  "Compared",
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [survey-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		SurveyBase:  os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
	}

	if err := checkPrerequisites(&config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using debrief cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("debrief", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the debrief binary and survey exports exist
func checkPrerequisites(config *BenchmarkConfig) error {
	if _, err := exec.LookPath("debrief"); err != nil {
		return fmt.Errorf("debrief binary not found in PATH")
	}

	entries, err := os.ReadDir(config.SurveyBase)
	if err != nil {
		return fmt.Errorf("survey directory %s: %w", config.SurveyBase, err)
	}
	for _, entry := range entries {
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx":
			config.Surveys = append(config.Surveys, entry.Name())
		}
	}
	if len(config.Surveys) == 0 {
		return fmt.Errorf("no .csv or .xlsx exports found in %s", config.SurveyBase)
	}
	return nil
}

// runBenchmarks executes all benchmark tests across the survey exports
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d surveys, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Surveys), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, survey := range config.Surveys {
		fmt.Printf("Benchmarking %s\n", survey)
		input := filepath.Join(config.SurveyBase, survey)

		results = append(results,
			runBenchmarkSuite(config, survey, "overview", "overview", input),
			runBenchmarkSuite(config, survey, "themes", "themes (sessions basis)", input, "--basis", "sessions"),
			runBenchmarkSuite(config, survey, "trends", "trends (weekly)", input, "--granularity", "week"),
		)

		if partners := firstPartners(input, 2); len(partners) == 2 {
			desc := fmt.Sprintf("compare (%s vs %s)", partners[0], partners[1])
			results = append(results, runBenchmarkSuite(config, survey, "compare", desc, input, partners...))
		}
	}

	return results
}

// firstPartners lists up to n partner names from the survey, or nil on failure.
func firstPartners(input string, n int) []string {
	out, err := exec.Command("debrief", "partners", "--input", input, "--output", "csv", "--cache-backend", "none").Output()
	if err != nil {
		return nil
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}
	var partners []string
	for _, rec := range records[1:] {
		if len(partners) == n {
			break
		}
		partners = append(partners, rec[0])
	}
	return partners
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, survey, command, description, input string, extraArgs ...string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, survey)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, input, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Survey:      survey,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a debrief command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, input string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, "--input", input, "--cache-backend", cacheBackend}, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("debrief", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), completionPhrases[command]) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("debrief_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"survey", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Survey, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"overview", "themes", "trends", "compare"} {
		fmt.Printf("%s:\n", strings.ToUpper(command[:1])+command[1:])
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Survey, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
