// Package main provides a performance benchmarking tool for the codesight CLI.
// It measures end-to-end analysis time against public repositories for a few
// commit window sizes, running each case multiple times, treating the first
// successful run as cold and averaging the rest as warm, and writes CSV output.
//
// Prerequisites:
// - codesight binary installed and available in PATH
// - GITHUB_TOKEN set (anonymous access runs out of rate limit quickly)
//
// Usage: go run benchmark/main.go [runs]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of one repository and window size.
type BenchmarkResult struct {
	Repository string
	MaxCommits int
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout    time.Duration
	Runs       int
	Windows    []int
	TestRepos  []string
	ExtraFlags []string
}

func main() {
	runs := 3
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 1 {
			fmt.Printf("Usage: %s [runs]\n", os.Args[0])
			os.Exit(1)
		}
		runs = n
	}

	config := BenchmarkConfig{
		Timeout: 5 * time.Minute,
		Runs:    runs,
		Windows: []int{50, 200},
		TestRepos: []string{
			"https://github.com/spf13/cobra",
			"https://github.com/golang/go",
			"https://github.com/kubernetes/kubernetes",
		},
		ExtraFlags: []string{"--review-limit", "0", "--output", "text"},
	}

	if err := checkPrerequisites(); err != nil {
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

// checkPrerequisites verifies that the codesight binary and a token are available
func checkPrerequisites() error {
	if _, err := exec.LookPath("codesight"); err != nil {
		return errors.New("codesight binary not found in PATH")
	}
	if os.Getenv("GITHUB_TOKEN") == "" {
		return errors.New("GITHUB_TOKEN is not set")
	}
	return nil
}

// runBenchmarks executes all benchmark cases across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, windows %v, %v timeout, %d runs\n",
		len(config.TestRepos), config.Windows, config.Timeout, config.Runs)

	for _, repo := range config.TestRepos {
		for _, window := range config.Windows {
			fmt.Printf("Benchmarking %s with %d commits\n", repo, window)
			cold, warm := runBenchmark(config, repo, window)

			coldStr := "TIMEOUT"
			if cold > 0 {
				coldStr = fmt.Sprintf("%.3fs", cold)
			}
			warmStr := "N/A"
			if len(warm) > 0 {
				var sum float64
				for _, t := range warm {
					sum += t
				}
				warmStr = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
			}
			fmt.Printf("  Cold time: %s, Warm average: %s\n", coldStr, warmStr)

			results = append(results, BenchmarkResult{
				Repository: repo,
				MaxCommits: window,
				ColdTime:   coldStr,
				WarmTime:   warmStr,
			})
		}
	}

	return results
}

// runBenchmark runs codesight analyze several times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, repo string, window int) (coldTime float64, warmTimes []float64) {
	args := append([]string{"analyze", repo, "--max-commits", strconv.Itoa(window)}, config.ExtraFlags...)

	var times []float64
	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "codesight", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Analysis completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/codesight_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"repo", "max_commits", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, strconv.Itoa(result.MaxCommits), result.ColdTime, result.WarmTime}); err != nil {
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
		fmt.Printf("  %-45s %5d commits: Cold: %s, Warm: %s\n", result.Repository, result.MaxCommits, result.ColdTime, result.WarmTime)
	}
}
