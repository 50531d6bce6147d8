package benchmarks

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/timing/latency"
)

// Result holds the measurements of one benchmark run.
type Result struct {
	// Name identifies the benchmark.
	Name string `json:"name"`

	// Description explains what the benchmark measures.
	Description string `json:"description"`

	// Cycles is the simulated cycle count.
	Cycles uint64 `json:"cycles"`

	// Retired is the number of completed instructions.
	Retired uint64 `json:"retired"`

	// CPI is cycles per retired instruction.
	CPI float64 `json:"cpi"`

	// StallCycles counts load-use stalls.
	StallCycles uint64 `json:"stall_cycles"`

	// FlushCycles counts control-flow flushes.
	FlushCycles uint64 `json:"flush_cycles"`

	// CacheHits and CacheMisses are the data-cache counters.
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`

	// PredictorAccuracy is the conditional-branch prediction accuracy
	// in percent.
	PredictorAccuracy float64 `json:"predictor_accuracy"`

	// FunctionalMatch reports whether the pipeline's final integer
	// registers match the functional emulator's.
	FunctionalMatch bool `json:"functional_match"`
}

// image is an instruction source over a flat little-endian byte slice.
type image struct {
	bytes []byte
}

func newImage(words []uint32) *image {
	buf := make([]byte, 4*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], word)
	}
	return &image{bytes: buf}
}

func (m *image) Read16(pc uint32) (uint16, bool) {
	if int(pc)+2 > len(m.bytes) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(m.bytes[pc:]), true
}

func (m *image) Read32(pc uint32) (uint32, bool) {
	if int(pc)+4 > len(m.bytes) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.bytes[pc:]), true
}

func (m *image) MaxPC() uint32 {
	return uint32(len(m.bytes))
}

// Harness runs benchmarks under one simulation configuration.
type Harness struct {
	config     *latency.SimConfig
	benchmarks []Benchmark
}

// NewHarness creates a harness running under config.
func NewHarness(config *latency.SimConfig) *Harness {
	return &Harness{config: config}
}

// Add appends benchmarks to the harness.
func (h *Harness) Add(benchmarks ...Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs every added benchmark and returns the results in order.
func (h *Harness) RunAll() ([]Result, error) {
	results := make([]Result, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		result, err := h.Run(bench)
		if err != nil {
			return nil, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Run executes one benchmark on the timing pipeline and replays it on
// the functional emulator to cross-check the architectural results.
func (h *Harness) Run(bench Benchmark) (Result, error) {
	program := newImage(bench.Program)

	system, err := core.Build(program, h.config)
	if err != nil {
		return Result{}, err
	}
	if bench.Setup != nil {
		bench.Setup(system.Memory)
	}
	system.Run()

	refMemory := emu.NewMemory(h.config.MemorySize)
	if bench.Setup != nil {
		bench.Setup(refMemory)
	}
	reference := emu.NewEmulator(program, refMemory)
	reference.Run(h.config.MaxCycles)

	stats := system.Stats()
	return Result{
		Name:              bench.Name,
		Description:       bench.Description,
		Cycles:            stats.Cycles,
		Retired:           stats.Retired,
		CPI:               stats.CPI(),
		StallCycles:       stats.StallCycles,
		FlushCycles:       stats.FlushCycles,
		CacheHits:         stats.CacheHits,
		CacheMisses:       stats.CacheMisses,
		PredictorAccuracy: system.Predictor.Stats().Accuracy(),
		FunctionalMatch:   registersMatch(system.Pipeline.RegFile(), reference.RegFile()),
	}, nil
}

// registersMatch compares the integer register files.
func registersMatch(a, b *emu.RegFile) bool {
	for reg := uint8(1); reg < 32; reg++ {
		if a.Read(reg) != b.Read(reg) {
			return false
		}
	}
	return true
}

// WriteTable renders the results as an aligned text table.
func WriteTable(w io.Writer, results []Result) error {
	_, err := fmt.Fprintf(w, "%-24s %8s %8s %6s %7s %8s %7s %7s %6s %6s\n",
		"benchmark", "cycles", "retired", "cpi",
		"stalls", "flushes", "hits", "misses", "pred%", "match")
	if err != nil {
		return err
	}
	for _, r := range results {
		match := "ok"
		if !r.FunctionalMatch {
			match = "FAIL"
		}
		_, err := fmt.Fprintf(w, "%-24s %8d %8d %6.2f %7d %8d %7d %7d %6.1f %6s\n",
			r.Name, r.Cycles, r.Retired, r.CPI,
			r.StallCycles, r.FlushCycles, r.CacheHits, r.CacheMisses,
			r.PredictorAccuracy, match)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV renders the results as comma-separated values with a header
// row.
func WriteCSV(w io.Writer, results []Result) error {
	_, err := fmt.Fprintln(w, "benchmark,cycles,retired,cpi,stalls,flushes,cache_hits,cache_misses,predictor_accuracy,functional_match")
	if err != nil {
		return err
	}
	for _, r := range results {
		_, err := fmt.Fprintf(w, "%s,%d,%d,%.4f,%d,%d,%d,%d,%.2f,%t\n",
			r.Name, r.Cycles, r.Retired, r.CPI,
			r.StallCycles, r.FlushCycles, r.CacheHits, r.CacheMisses,
			r.PredictorAccuracy, r.FunctionalMatch)
		if err != nil {
			return err
		}
	}
	return nil
}
