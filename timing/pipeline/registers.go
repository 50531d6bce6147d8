// Package pipeline implements the in-order 5-stage pipeline engine:
// stage latches, hazard detection and forwarding, flush control, and the
// per-cycle tick loop.
package pipeline

import "github.com/sarchlab/rv32sim/insts"

// IFIDLatch holds state between the Fetch and Decode stages.
type IFIDLatch struct {
	// Valid indicates the latch carries a fetched instruction.
	Valid bool

	// PC is the program counter of the fetched instruction.
	PC uint32

	// InstructionWord is the 32-bit instruction word, or the expansion
	// of a compressed instruction.
	InstructionWord uint32

	// IsCompressed marks a 16-bit fetch; CompressedRaw keeps the
	// original halfword for disassembly.
	IsCompressed  bool
	CompressedRaw uint16
}

// Clear resets the IF/ID latch to the empty state.
func (r *IFIDLatch) Clear() {
	*r = IFIDLatch{}
}

// IDEXLatch holds state between the Decode and Execute stages.
type IDEXLatch struct {
	// Valid indicates the latch carries a decoded instruction.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint32

	// Inst is the decoded instruction with its control signals.
	Inst *insts.Instruction

	// Rs1Value and Rs2Value are the integer operands read at decode,
	// before forwarding.
	Rs1Value uint32
	Rs2Value uint32

	// FPRs1Value and FPRs2Value are the floating-point operands read at
	// decode, before forwarding.
	FPRs1Value uint32
	FPRs2Value uint32

	// PredictedTaken and PredictedTarget record the branch prediction
	// made at decode, for resolution in EX.
	PredictedTaken  bool
	PredictedTarget uint32
}

// Clear resets the ID/EX latch to the empty state.
func (r *IDEXLatch) Clear() {
	*r = IDEXLatch{}
}

// EXMEMLatch holds state between the Execute and Memory stages.
type EXMEMLatch struct {
	// Valid indicates the latch carries an executed instruction.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint32

	// Inst is the decoded instruction with its control signals.
	Inst *insts.Instruction

	// ALUResult is the integer result, memory address, or link value.
	ALUResult uint32

	// FPResult is the floating-point result when FPRegWrite is set.
	FPResult uint32

	// StoreValue is the integer value to store, after forwarding.
	StoreValue uint32

	// FPStoreValue is the floating-point value to store for FSW.
	FPStoreValue uint32
}

// Clear resets the EX/MEM latch to the empty state.
func (r *EXMEMLatch) Clear() {
	*r = EXMEMLatch{}
}

// MEMWBLatch holds state between the Memory and Writeback stages.
type MEMWBLatch struct {
	// Valid indicates the latch carries an instruction awaiting
	// writeback.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint32

	// Inst is the decoded instruction with its control signals.
	Inst *insts.Instruction

	// ALUResult is the integer result carried from EX.
	ALUResult uint32

	// FPResult is the floating-point result carried from EX.
	FPResult uint32

	// MemData is the value loaded from memory for integer loads.
	MemData uint32

	// MemFPData is the value loaded from memory for FLW.
	MemFPData uint32
}

// Clear resets the MEM/WB latch to the empty state.
func (r *MEMWBLatch) Clear() {
	*r = MEMWBLatch{}
}

// WritebackValue returns the value the instruction writes to the integer
// register file: memory data for loads, ALU result otherwise.
func (r *MEMWBLatch) WritebackValue() uint32 {
	if r.Inst.MemToReg {
		return r.MemData
	}
	return r.ALUResult
}

// FPWritebackValue returns the value the instruction writes to the
// floating-point register file.
func (r *MEMWBLatch) FPWritebackValue() uint32 {
	if r.Inst.MemToReg {
		return r.MemFPData
	}
	return r.FPResult
}
