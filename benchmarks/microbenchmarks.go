// Package benchmarks provides a microbenchmark suite and harness for
// characterizing the timing pipeline: CPI under hazards, cache
// behavior, and branch prediction accuracy.
package benchmarks

import "github.com/sarchlab/rv32sim/emu"

// Benchmark is a self-contained program with an optional memory image.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string

	// Description explains what the benchmark measures.
	Description string

	// Program is the instruction words, laid out from address 0.
	Program []uint32

	// Setup primes the data memory before the run.
	Setup func(memory *emu.Memory)
}

// Microbenchmarks returns the standard suite. Each entry targets one
// pipeline characteristic.
func Microbenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUse(),
		memoryStride(),
		branchLoop(),
		mixedOperations(),
	}
}

// arithmeticSequential issues independent register-immediate adds. With
// no hazards the pipeline should approach one instruction per cycle.
func arithmeticSequential() Benchmark {
	var program []uint32
	for i := uint32(0); i < 16; i++ {
		program = append(program, encodeADDI(5+i%8, 0, int32(i+1)))
	}
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "16 independent ADDIs, ALU throughput",
		Program:     program,
	}
}

// dependencyChain doubles a register repeatedly. Every instruction
// consumes the previous result, exercising EX/MEM forwarding.
func dependencyChain() Benchmark {
	program := []uint32{encodeADDI(5, 0, 1)}
	for i := 0; i < 15; i++ {
		program = append(program, encodeADD(5, 5, 5))
	}
	return Benchmark{
		Name:        "dependency_chain",
		Description: "15 chained ADDs, back-to-back forwarding",
		Program:     program,
	}
}

// loadUse pairs every load with an immediate consumer, forcing one
// stall cycle per pair.
func loadUse() Benchmark {
	var program []uint32
	for i := 0; i < 8; i++ {
		program = append(program,
			encodeLW(5, 0, 0),
			encodeADD(6, 5, 5),
		)
	}
	return Benchmark{
		Name:        "load_use",
		Description: "8 load-use pairs, one stall each",
		Program:     program,
		Setup: func(memory *emu.Memory) {
			memory.Store(0, 1, 4)
		},
	}
}

// memoryStride walks two cache lines word by word. A warm cache turns
// all but the first access of each line into hits.
func memoryStride() Benchmark {
	var program []uint32
	for addr := int32(0); addr < 64; addr += 4 {
		program = append(program, encodeLW(5, 0, addr))
	}
	return Benchmark{
		Name:        "memory_stride",
		Description: "16 sequential word loads over two cache lines",
		Program:     program,
		Setup: func(memory *emu.Memory) {
			for addr := uint32(0); addr < 64; addr += 4 {
				memory.Store(addr, addr, 4)
			}
		},
	}
}

// branchLoop counts a register down to zero. The backward branch is
// taken on every iteration but the last.
func branchLoop() Benchmark {
	return Benchmark{
		Name:        "branch_loop",
		Description: "8-iteration countdown loop, backward branch",
		Program: []uint32{
			encodeADDI(5, 0, 8),
			encodeADDI(5, 5, -1),
			encodeBNE(5, 0, -4),
		},
	}
}

// mixedOperations interleaves arithmetic, memory traffic, and a short
// loop.
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "arithmetic, store, load, and a short loop",
		Program: []uint32{
			encodeADDI(5, 0, 3),
			encodeADDI(6, 5, 4),
			encodeADD(7, 5, 6),
			encodeSW(7, 0, 16),
			encodeLW(8, 0, 16),
			encodeADDI(9, 0, 4),
			encodeADDI(9, 9, -1),
			encodeBNE(9, 0, -4),
			encodeADD(10, 7, 8),
		},
	}
}

func encodeADDI(rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | rs1<<15 | rd<<7 | 0x13
}

func encodeADD(rd, rs1, rs2 uint32) uint32 {
	return rs2<<20 | rs1<<15 | rd<<7 | 0x33
}

func encodeLW(rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | rs1<<15 | 0x2<<12 | rd<<7 | 0x03
}

func encodeSW(rs2, rs1 uint32, imm int32) uint32 {
	i := uint32(imm) & 0xFFF
	return (i>>5)<<25 | rs2<<20 | rs1<<15 | 0x2<<12 | (i&0x1F)<<7 | 0x23
}

func encodeBNE(rs1, rs2 uint32, imm int32) uint32 {
	i := uint32(imm)
	return (i>>12&1)<<31 | (i>>5&0x3F)<<25 | rs2<<20 | rs1<<15 |
		0x1<<12 | (i>>1&0xF)<<8 | (i>>11&1)<<7 | 0x63
}
