// Package main measures how much the analysis cache saves for the codesage CLI.
// Each file is analyzed several times without a cache and several times with
// a fresh SQLite cache. The first cached run is cold and the rest are warm.
//
// Prerequisites:
// - codesage binary installed and available in PATH
// - A reachable service (CODESAGE_API_URL or the default)
//
// Usage: go run benchmark/main.go <file> [file...]
package main

import (
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
	File        string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Files       []string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	CacheDB     string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s <file> [file...]\n", os.Args[0])
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "codesage-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	config := BenchmarkConfig{
		Files:       os.Args[1:],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		CacheDB:     filepath.Join(dir, "benchmark_cache.db"),
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the codesage binary, the service and the files exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("codesage"); err != nil {
		return fmt.Errorf("codesage binary not found in PATH")
	}
	if output, err := exec.Command("codesage", "health").CombinedOutput(); err != nil {
		return fmt.Errorf("service is not reachable: %s", strings.TrimSpace(string(output)))
	}
	for _, file := range config.Files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("file %s not found: %w", file, err)
		}
	}
	return nil
}

// runBenchmarks executes the no-cache and cache phases for every file
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d files, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Files), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, file := range config.Files {
		results = append(results, runBenchmarkSuite(config, file))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one file
func runBenchmarkSuite(config BenchmarkConfig, file string) BenchmarkResult {
	fmt.Printf("Benchmarking %s\n", file)

	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		times := runBenchmark(config, file, cacheArgs, numRuns)
		if len(times) == 0 {
			return 0, "FAILED"
		}
		coldTime = times[0]
		warm := times
		if len(times) > 1 && phaseName == "Cache" {
			warm = times[1:]
		}
		var sum float64
		for _, t := range warm {
			sum += t
		}
		return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase([]string{"--cache-backend", "none"}, config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs against a cache file that starts empty
	_ = os.Remove(config.CacheDB)
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "sqlite", "--cache-db-connect", config.CacheDB}, config.CacheRuns, "Cache")

	coldTimeStr := "FAILED"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		File:        file,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark analyzes file numRuns times and returns the durations of successful runs
func runBenchmark(config BenchmarkConfig, file string, cacheArgs []string, numRuns int) []float64 {
	args := append([]string{"analyze", file, "--color", "no"}, cacheArgs...)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := exec.Command("codesage", args...)

		done := make(chan struct{})
		var output []byte
		var cmdErr error
		go func() {
			output, cmdErr = cmd.CombinedOutput()
			close(done)
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), "Analysis completed in") {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}
	return times
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("codesage_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"file", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.File, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-30s: No-cache: %s, Cold: %s, Warm: %s\n", result.File, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
