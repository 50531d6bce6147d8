package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/insts"
)

// ProgramImage supplies instruction fetch for functional execution. A
// loaded program implements it over its flat instruction image.
type ProgramImage interface {
	// Read16 returns the halfword at pc, false when pc is outside the
	// image.
	Read16(pc uint32) (uint16, bool)

	// Read32 returns the word at pc, false when any part of it is
	// outside the image.
	Read32(pc uint32) (uint32, bool)

	// MaxPC returns the first address past the instruction image.
	MaxPC() uint32
}

// Emulator executes a program one instruction at a time with no timing
// model. It produces the same architectural results as the pipelined
// model and serves as its reference.
type Emulator struct {
	program ProgramImage
	memory  MemoryDevice

	decoder *insts.Decoder
	regFile *RegFile
	alu     *ALU
	fpu     *FPU
	errOut  io.Writer

	pc      uint32
	retired uint64
}

// NewEmulator creates an emulator fetching from program and accessing
// data through memory.
func NewEmulator(program ProgramImage, memory MemoryDevice) *Emulator {
	return &Emulator{
		program: program,
		memory:  memory,
		decoder: insts.NewDecoder(),
		regFile: NewRegFile(),
		alu:     NewALU(),
		fpu:     NewFPU(),
		errOut:  os.Stderr,
	}
}

// RegFile exposes the architectural integer and floating-point
// registers.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// PC returns the current program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// Retired returns the number of instructions executed so far.
func (e *Emulator) Retired() uint64 {
	return e.retired
}

// Done reports whether the PC has passed the end of the instruction
// image.
func (e *Emulator) Done() bool {
	return e.pc >= e.program.MaxPC()
}

// Run executes instructions until the program ends or maxSteps fetches
// have been made. It returns the number of instructions retired.
func (e *Emulator) Run(maxSteps uint64) uint64 {
	start := e.retired
	for steps := uint64(0); !e.Done() && steps < maxSteps; steps++ {
		e.Step()
	}
	return e.retired - start
}

// Step fetches, decodes, and executes a single instruction. Reserved
// compressed encodings, all-zero words, and unreadable fetches are
// skipped without retiring.
func (e *Emulator) Step() {
	if e.Done() {
		return
	}

	half, ok := e.program.Read16(e.pc)
	if !ok {
		e.pc += 2
		return
	}

	var word uint32
	var size uint32
	if insts.IsCompressed(half) {
		word = e.decoder.Expand(half)
		size = 2
		if word == insts.ExpandedNone {
			e.pc += 2
			return
		}
	} else {
		word, ok = e.program.Read32(e.pc)
		size = 4
		if !ok || word == 0 {
			e.pc += 4
			return
		}
	}

	inst := e.decoder.Decode(word)
	pc := e.pc
	nextPC := pc + size

	rs1Value := e.regFile.Read(inst.Rs1)
	rs2Value := e.regFile.Read(inst.Rs2)
	fpRs1Value := e.regFile.ReadFP(inst.Rs1)
	fpRs2Value := e.regFile.ReadFP(inst.Rs2)

	var aluResult, fpResult uint32

	switch {
	case inst.FPOp != insts.FPNone:
		a := fpRs1Value
		if !inst.FPReadRs1 {
			// Conversions from and moves of integer values read rs1
			// from the integer file.
			a = rs1Value
		}
		result := e.fpu.Execute(a, fpRs2Value, inst.FPOp)
		if inst.FPRegWrite {
			fpResult = result
		} else {
			aluResult = result
		}

	case inst.IsJump:
		target := pc + uint32(inst.Imm)
		if inst.IsJALR {
			target = (rs1Value + uint32(inst.Imm)) &^ 1
		}
		aluResult = pc + size
		nextPC = target

	case inst.Branch:
		_, taken := e.alu.Execute(rs1Value, rs2Value, inst.ALUOp)
		if taken {
			nextPC = pc + uint32(inst.Imm)
		}

	default:
		a := rs1Value
		if inst.UpperImm {
			// LUI ignores the first operand; AUIPC adds the PC.
			a = pc
		}
		b := rs2Value
		if inst.ALUSrc || inst.UpperImm {
			b = uint32(inst.Imm)
		}
		aluResult, _ = e.alu.Execute(a, b, inst.ALUOp)
	}

	memData, memFPData := e.access(inst, aluResult, rs2Value, fpRs2Value, pc)

	if inst.RegWrite && inst.Rd != 0 {
		value := aluResult
		if inst.MemToReg {
			value = memData
		}
		e.regFile.Write(inst.Rd, value)
	}
	if inst.FPRegWrite && inst.Rd != 0 {
		value := fpResult
		if inst.MemToReg {
			value = memFPData
		}
		e.regFile.WriteFP(inst.Rd, value)
	}

	e.pc = nextPC
	e.retired++
}

// access performs the data-memory side of the instruction. Faulting
// accesses are reported and loads fault to zero.
func (e *Emulator) access(inst *insts.Instruction, addr, storeValue, fpStoreValue uint32, pc uint32) (memData, memFPData uint32) {
	switch {
	case inst.MemRead:
		width := inst.MemReadType.Width()
		value := uint32(0)
		if addr%uint32(width) != 0 {
			fmt.Fprintf(e.errOut, "misaligned load of width %d at %#x (pc %#x)\n",
				width, addr, pc)
		} else if raw, ok := e.memory.Load(addr, width); ok {
			value = extendLoad(raw, inst.MemReadType)
		} else {
			fmt.Fprintf(e.errOut, "load of width %d at %#x failed (pc %#x)\n",
				width, addr, pc)
		}
		if inst.MemReadType == insts.MemFloat {
			memFPData = value
		} else {
			memData = value
		}

	case inst.MemWrite:
		width := inst.MemWriteType.Width()
		value := storeValue
		if inst.MemWriteType == insts.MemFloat {
			value = fpStoreValue
		}
		if addr%uint32(width) != 0 {
			fmt.Fprintf(e.errOut, "misaligned store of width %d at %#x (pc %#x)\n",
				width, addr, pc)
		} else if !e.memory.Store(addr, value, width) {
			fmt.Fprintf(e.errOut, "store of width %d at %#x failed (pc %#x)\n",
				width, addr, pc)
		}
	}
	return memData, memFPData
}

// extendLoad applies the sign or zero extension the load type calls
// for.
func extendLoad(raw uint32, t insts.MemAccess) uint32 {
	switch t {
	case insts.MemByte:
		return uint32(int32(int8(raw)))
	case insts.MemHalf:
		return uint32(int32(int16(raw)))
	default:
		return raw
	}
}

// Reset returns the emulator to its initial state, keeping the program
// and memory bindings.
func (e *Emulator) Reset() {
	e.pc = 0
	e.retired = 0
	e.regFile.Reset()
}
