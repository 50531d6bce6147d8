// Package main provides the entry point for rv32sim, a cycle-accurate
// RV32 pipeline simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/timing/pipeline"
	"github.com/sarchlab/rv32sim/timing/predictor"
	"github.com/sarchlab/rv32sim/timing/trace"
)

var (
	configPath    = flag.String("config", "", "Path to simulation configuration JSON file")
	cacheKind     = flag.String("cache", "", "Data cache: none, direct-mapped, fully-associative, set-associative")
	predictorKind = flag.String("predictor", "", "Branch predictor: always-not-taken, always-taken, bimodal, gshare, tournament")
	maxCycles     = flag.Uint64("max-cycles", 0, "Cycle bound for the run (0 uses the configured bound)")
	logPath       = flag.String("log", "", "Write the per-cycle pipeline log to this file")
	debug         = flag.Bool("debug", false, "Print per-cycle pipeline state to stderr")
	functional    = flag.Bool("functional", false, "Run the functional emulator instead of the timing pipeline")
	verbose       = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32sim [options] <program.hex>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	config := resolveConfig()
	programPath := flag.Arg(0)

	prog, err := loader.LoadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s (%d bytes)\n", programPath, prog.Size())
	}

	if *functional {
		os.Exit(runFunctional(prog, config))
	}
	os.Exit(run(prog, config))
}

// resolveConfig builds the run configuration from the config file and
// the overriding flags.
func resolveConfig() *latency.SimConfig {
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
	if *maxCycles != 0 {
		config.MaxCycles = *maxCycles
	}
	return config
}

// run builds the configured system, runs the program, and prints the
// statistics report.
func run(prog *loader.Program, config *latency.SimConfig) int {
	var opts []pipeline.Option
	if *debug {
		opts = append(opts, pipeline.WithDebug(os.Stderr))
	}

	system, err := core.Build(prog, config, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building system: %v\n", err)
		return 1
	}

	system.Run()
	if !system.Pipeline.Done() {
		fmt.Fprintf(os.Stderr, "Cycle bound of %d reached before the program drained\n",
			config.MaxCycles)
	}

	if *logPath != "" {
		if err := writeLog(system.Recorder, *logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing log: %v\n", err)
			return 1
		}
	}

	printReport(system)
	return 0
}

// runFunctional executes the program on the instruction-at-a-time
// emulator and prints the final registers.
func runFunctional(prog *loader.Program, config *latency.SimConfig) int {
	memory := emu.NewMemory(config.MemorySize)
	em := emu.NewEmulator(prog, memory)

	bound := config.MaxCycles
	if bound == 0 {
		bound = 1_000_000
	}
	em.Run(bound)
	if !em.Done() {
		fmt.Fprintf(os.Stderr, "Step bound of %d reached before the program ended\n", bound)
	}

	fmt.Printf("\nRetired: %d\n", em.Retired())
	printRegisters(em.RegFile())
	return 0
}

// writeLog renders the recorder's per-cycle pipeline log to path.
func writeLog(recorder *trace.Recorder, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return recorder.WriteLog(f)
}

// printReport prints the statistics summary and the nonzero registers.
func printReport(system *core.System) {
	stats := system.Stats()

	fmt.Printf("\n")
	fmt.Printf("Cycles:       %d\n", stats.Cycles)
	fmt.Printf("Retired:      %d\n", stats.Retired)
	fmt.Printf("CPI:          %.2f\n", stats.CPI())
	fmt.Printf("Stalls:       %d\n", stats.StallCycles)
	fmt.Printf("Flushes:      %d\n", stats.FlushCycles)
	fmt.Printf("\n")
	fmt.Printf("Instruction mix:\n")
	fmt.Printf("  R-type:     %d\n", stats.RType)
	fmt.Printf("  I-type:     %d\n", stats.IType)
	fmt.Printf("  Loads:      %d\n", stats.Loads)
	fmt.Printf("  Stores:     %d\n", stats.Stores)
	fmt.Printf("  Branches:   %d\n", stats.Branches)
	fmt.Printf("  Jumps:      %d\n", stats.Jumps)
	fmt.Printf("  Upper-imm:  %d\n", stats.UpperImms)
	fmt.Printf("\n")
	fmt.Printf("Branches: %d taken, %d not taken, %d mispredicted\n",
		stats.BranchesTaken, stats.BranchesNotTaken, stats.Mispredictions)
	fmt.Printf("Predictor accuracy: %.1f%%\n", system.Predictor.Stats().Accuracy())
	fmt.Printf("Memory: %d reads, %d writes\n", stats.MemoryReads, stats.MemoryWrites)
	if stats.CacheHits+stats.CacheMisses > 0 {
		fmt.Printf("Cache: %d hits, %d misses (%.1f%% hit rate)\n",
			stats.CacheHits, stats.CacheMisses, 100*stats.CacheHitRate())
	}

	fmt.Printf("\nRegisters:\n")
	printRegisters(system.Pipeline.RegFile())
}

// printRegisters prints the nonzero integer registers.
func printRegisters(regFile *emu.RegFile) {
	for reg := uint8(1); reg < 32; reg++ {
		value := regFile.Read(reg)
		if value != 0 {
			fmt.Printf("  x%-2d (%-4s) = %#010x (%d)\n",
				reg, insts.RegNames[reg], value, int32(value))
		}
	}
}
