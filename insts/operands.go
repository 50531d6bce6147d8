package insts

// UsesIntRs1 reports whether the instruction reads the integer register
// file through rs1. Floating-point computation reads the FP file, but
// conversions from and moves of integer values still consume rs1.
func (i *Instruction) UsesIntRs1() bool {
	switch i.Opcode {
	case OpcodeOp, OpcodeOpImm, OpcodeLoad, OpcodeLoadFP,
		OpcodeStore, OpcodeStoreFP, OpcodeBranch, OpcodeJALR:
		return true
	case OpcodeOpFP:
		return i.FPOp == FPCvtSW || i.FPOp == FPMvWX
	default:
		return false
	}
}

// UsesIntRs2 reports whether the instruction reads the integer register
// file through rs2.
func (i *Instruction) UsesIntRs2() bool {
	switch i.Opcode {
	case OpcodeOp, OpcodeStore, OpcodeBranch:
		return true
	default:
		return false
	}
}
