// Package core assembles a complete simulated system from a
// configuration: main memory, the optional data cache, the branch
// predictor, the trace recorder, and the pipeline.
package core

import (
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/timing/pipeline"
	"github.com/sarchlab/rv32sim/timing/predictor"
	"github.com/sarchlab/rv32sim/timing/trace"
)

// System is a fully wired simulation: the pipeline together with the
// components it was built from.
type System struct {
	// Memory is the flat backing store.
	Memory *emu.Memory

	// DataMem is the device the pipeline's memory stage accesses: the
	// data cache when caching is enabled, Memory otherwise.
	DataMem emu.MemoryDevice

	// Predictor is the branch predictor driving fetch redirection.
	Predictor predictor.Predictor

	// Recorder collects per-cycle snapshots and the access, change, and
	// dependency logs.
	Recorder *trace.Recorder

	// Pipeline is the 5-stage engine.
	Pipeline *pipeline.Pipeline

	dcache *cache.Cache
	config *latency.SimConfig
}

// Build wires a System for the program according to config. Extra
// pipeline options are applied after the configured ones.
func Build(program pipeline.InstructionSource, config *latency.SimConfig, opts ...pipeline.Option) (*System, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	memory := emu.NewMemory(config.MemorySize)

	var dataMem emu.MemoryDevice = memory
	var dcache *cache.Cache
	if config.CacheEnabled {
		var err error
		dcache, err = cache.New(config.Cache, memory)
		if err != nil {
			return nil, err
		}
		dataMem = dcache
	}

	pred, err := predictor.New(config.Predictor)
	if err != nil {
		return nil, err
	}

	recorder := trace.NewRecorder(config.DependencyWindow)
	options := append([]pipeline.Option{
		pipeline.WithPredictor(pred),
		pipeline.WithRecorder(recorder),
	}, opts...)

	return &System{
		Memory:    memory,
		DataMem:   dataMem,
		Predictor: pred,
		Recorder:  recorder,
		Pipeline:  pipeline.New(program, dataMem, options...),
		dcache:    dcache,
		config:    config,
	}, nil
}

// Run drains the program through the pipeline, bounded by the
// configured cycle budget. A zero budget runs until the program
// drains. It returns the number of cycles simulated.
func (s *System) Run() uint64 {
	bound := s.config.MaxCycles
	if bound == 0 {
		bound = ^uint64(0)
	}
	return s.Pipeline.Run(bound)
}

// Stats returns the run statistics.
func (s *System) Stats() trace.Statistics {
	return s.Pipeline.Stats()
}

// Reset returns the system to its initial state. Memory contents are
// kept; pipeline, cache, predictor, and recorder state are cleared.
func (s *System) Reset() {
	s.Pipeline.Reset()
	if s.dcache != nil {
		s.dcache.Reset()
	}
}
