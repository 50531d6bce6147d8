// Command benchmark runs the rv32sim microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv              Output results in CSV format
//	-config <path>    Simulation configuration JSON file
//	-cache <kind>     Data cache: none, direct-mapped, fully-associative, set-associative
//	-predictor <kind> Branch predictor variant
//
// Example:
//
//	# Compare predictors on the standard suite
//	go run ./cmd/benchmark -predictor bimodal
//	go run ./cmd/benchmark -predictor gshare
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32sim/benchmarks"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/timing/predictor"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	configPath := flag.String("config", "", "Path to simulation configuration JSON file")
	cacheKind := flag.String("cache", "", "Data cache: none, direct-mapped, fully-associative, set-associative")
	predictorKind := flag.String("predictor", "", "Branch predictor: always-not-taken, always-taken, bimodal, gshare, tournament")
	flag.Parse()

	config := latency.DefaultSimConfig()
	if *configPath != "" {
		var err error
		config, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *cacheKind != "" {
		if *cacheKind == "none" {
			config.CacheEnabled = false
		} else {
			config.CacheEnabled = true
			config.Cache.Kind = cache.Kind(*cacheKind)
		}
	}
	if *predictorKind != "" {
		config.Predictor.Kind = predictor.Kind(*predictorKind)
	}

	harness := benchmarks.NewHarness(config)
	harness.Add(benchmarks.Microbenchmarks()...)

	if !*csvOutput {
		fmt.Printf("rv32sim microbenchmarks\n")
		fmt.Printf("cache: %s  predictor: %s\n\n",
			cacheLabel(config), config.Predictor.Kind)
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running benchmarks: %v\n", err)
		os.Exit(1)
	}

	if *csvOutput {
		err = benchmarks.WriteCSV(os.Stdout, results)
	} else {
		err = benchmarks.WriteTable(os.Stdout, results)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}

	for _, result := range results {
		if !result.FunctionalMatch {
			fmt.Fprintf(os.Stderr, "%s: pipeline and emulator disagree\n", result.Name)
			os.Exit(1)
		}
	}
}

func cacheLabel(config *latency.SimConfig) string {
	if !config.CacheEnabled {
		return "none"
	}
	return string(config.Cache.Kind)
}
