package pipeline

import "github.com/sarchlab/rv32sim/insts"

// ForwardSource indicates where a forwarded operand comes from.
type ForwardSource int

const (
	// ForwardNone means no forwarding applies; the register file value
	// read at decode is used.
	ForwardNone ForwardSource = iota
	// ForwardFromEXMEM means the operand comes from the previous
	// cycle's EX/MEM latch.
	ForwardFromEXMEM
	// ForwardFromMEMWB means the operand comes from the previous
	// cycle's MEM/WB latch.
	ForwardFromMEMWB
)

// ForwardingResult contains the forwarding decisions for the integer and
// floating-point source operands of the instruction in EX.
type ForwardingResult struct {
	ForwardRs1   ForwardSource
	ForwardRs2   ForwardSource
	ForwardFPRs1 ForwardSource
	ForwardFPRs2 ForwardSource
}

// HazardUnit detects forwarding opportunities and load-use hazards. It
// inspects latch snapshots taken at the start of the cycle so that
// forwarding is not confused by same-cycle stage updates.
type HazardUnit struct{}

// NewHazardUnit creates a hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// forwardIntOperand resolves one integer source register against the
// older in-flight instructions. EX/MEM wins over MEM/WB when both match.
func (h *HazardUnit) forwardIntOperand(rs uint8, exmem *EXMEMLatch, memwb *MEMWBLatch) ForwardSource {
	if rs == 0 {
		return ForwardNone
	}
	if exmem.Valid && exmem.Inst.RegWrite && exmem.Inst.Rd == rs {
		return ForwardFromEXMEM
	}
	if memwb.Valid && memwb.Inst.RegWrite && memwb.Inst.Rd == rs {
		return ForwardFromMEMWB
	}
	return ForwardNone
}

// forwardFPOperand resolves one floating-point source register. f0 is an
// ordinary register, so no zero-register exemption applies.
func (h *HazardUnit) forwardFPOperand(rs uint8, exmem *EXMEMLatch, memwb *MEMWBLatch) ForwardSource {
	if exmem.Valid && exmem.Inst.FPRegWrite && exmem.Inst.Rd == rs {
		return ForwardFromEXMEM
	}
	if memwb.Valid && memwb.Inst.FPRegWrite && memwb.Inst.Rd == rs {
		return ForwardFromMEMWB
	}
	return ForwardNone
}

// DetectForwarding computes forwarding for the instruction in ID/EX from
// the previous cycle's EX/MEM and MEM/WB snapshots.
func (h *HazardUnit) DetectForwarding(idex *IDEXLatch, exmemPrev *EXMEMLatch, memwbPrev *MEMWBLatch) ForwardingResult {
	result := ForwardingResult{}
	if !idex.Valid {
		return result
	}

	inst := idex.Inst
	if inst.UsesIntRs1() {
		result.ForwardRs1 = h.forwardIntOperand(inst.Rs1, exmemPrev, memwbPrev)
	}
	if inst.UsesIntRs2() {
		result.ForwardRs2 = h.forwardIntOperand(inst.Rs2, exmemPrev, memwbPrev)
	}
	if inst.FPReadRs1 {
		result.ForwardFPRs1 = h.forwardFPOperand(inst.Rs1, exmemPrev, memwbPrev)
	}
	if inst.FPReadRs2 {
		result.ForwardFPRs2 = h.forwardFPOperand(inst.Rs2, exmemPrev, memwbPrev)
	}
	return result
}

// ForwardedValue materializes one forwarded integer operand. EX/MEM
// supplies the ALU result; MEM/WB supplies the full writeback value,
// which for loads is the memory data.
func (h *HazardUnit) ForwardedValue(src ForwardSource, regValue uint32, exmemPrev *EXMEMLatch, memwbPrev *MEMWBLatch) uint32 {
	switch src {
	case ForwardFromEXMEM:
		return exmemPrev.ALUResult
	case ForwardFromMEMWB:
		return memwbPrev.WritebackValue()
	default:
		return regValue
	}
}

// ForwardedFPValue materializes one forwarded floating-point operand.
func (h *HazardUnit) ForwardedFPValue(src ForwardSource, regValue uint32, exmemPrev *EXMEMLatch, memwbPrev *MEMWBLatch) uint32 {
	switch src {
	case ForwardFromEXMEM:
		return exmemPrev.FPResult
	case ForwardFromMEMWB:
		return memwbPrev.FPWritebackValue()
	default:
		return regValue
	}
}

// DetectLoadUseHazard reports whether the instruction about to decode
// needs a value that the load currently in ID/EX cannot forward in time.
// A one-cycle bubble resolves it; MEM/WB forwarding covers the retry.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXLatch, next *insts.Instruction) bool {
	if !idex.Valid || !idex.Inst.MemRead {
		return false
	}
	rd := idex.Inst.Rd
	if idex.Inst.RegWrite {
		if rd == 0 {
			return false
		}
		if next.UsesIntRs1() && next.Rs1 == rd {
			return true
		}
		if next.UsesIntRs2() && next.Rs2 == rd {
			return true
		}
		return false
	}
	if idex.Inst.FPRegWrite {
		if next.FPReadRs1 && next.Rs1 == rd {
			return true
		}
		if next.FPReadRs2 && next.Rs2 == rd {
			return true
		}
	}
	return false
}
