// Package emu provides the architectural state and functional units of
// the simulated RV32 processor: the register file, main memory with the
// data-memory capability, the integer ALU, and the single-precision FPU.
package emu

// RegFile represents the RV32 register state. It contains 32 integer
// registers, 32 single-precision floating-point registers, and the FCSR.
// Integer register 0 is hard-wired to zero: writes are silently ignored
// and reads always return 0.
type RegFile struct {
	intRegs [32]uint32
	fpRegs  [32]uint32

	// FCSR is the floating-point control and status register. It is
	// architectural state only; arithmetic does not consult it.
	FCSR uint32
}

// NewRegFile creates a register file with all registers zeroed.
func NewRegFile() *RegFile {
	return &RegFile{}
}

// Read reads an integer register. Register 0 always returns 0.
func (r *RegFile) Read(reg uint8) uint32 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.intRegs[reg]
}

// Write writes an integer register. Writes to register 0 are ignored.
func (r *RegFile) Write(reg uint8, value uint32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.intRegs[reg] = value
}

// ReadFP reads a floating-point register as its raw bit pattern.
func (r *RegFile) ReadFP(reg uint8) uint32 {
	if reg >= 32 {
		return 0
	}
	return r.fpRegs[reg]
}

// WriteFP writes a floating-point register with a raw bit pattern.
// Unlike the integer file, f0 is a normal register.
func (r *RegFile) WriteFP(reg uint8, value uint32) {
	if reg >= 32 {
		return
	}
	r.fpRegs[reg] = value
}

// Reset zeroes all registers and the FCSR.
func (r *RegFile) Reset() {
	r.intRegs = [32]uint32{}
	r.fpRegs = [32]uint32{}
	r.FCSR = 0
}
