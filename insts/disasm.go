package insts

import "fmt"

// RegNames maps integer register numbers to their ABI names.
var RegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// FPRegNames maps floating-point register numbers to their ABI names.
var FPRegNames = [32]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// Mnemonic returns the uppercase mnemonic of the base (32-bit) form.
func (i *Instruction) Mnemonic() string {
	switch i.Opcode {
	case OpcodeOp:
		if i.Funct7 == 0x01 {
			return [8]string{"MUL", "MULH", "MULHSU", "MULHU",
				"DIV", "DIVU", "REM", "REMU"}[i.Funct3]
		}
		switch i.Funct3 {
		case 0:
			if i.Funct7 == 0x20 {
				return "SUB"
			}
			return "ADD"
		case 1:
			return "SLL"
		case 2:
			return "SLT"
		case 3:
			return "SLTU"
		case 4:
			return "XOR"
		case 5:
			if i.Funct7 == 0x20 {
				return "SRA"
			}
			return "SRL"
		case 6:
			return "OR"
		case 7:
			return "AND"
		}
	case OpcodeOpImm:
		switch i.Funct3 {
		case 0:
			return "ADDI"
		case 1:
			return "SLLI"
		case 2:
			return "SLTI"
		case 3:
			return "SLTIU"
		case 4:
			return "XORI"
		case 5:
			if i.Funct7 == 0x20 {
				return "SRAI"
			}
			return "SRLI"
		case 6:
			return "ORI"
		case 7:
			return "ANDI"
		}
	case OpcodeLoad:
		return [8]string{"LB", "LH", "LW", "?", "LBU", "LHU", "?", "?"}[i.Funct3]
	case OpcodeStore:
		return [8]string{"SB", "SH", "SW", "?", "?", "?", "?", "?"}[i.Funct3]
	case OpcodeBranch:
		return [8]string{"BEQ", "BNE", "?", "?", "BLT", "BGE", "BLTU", "BGEU"}[i.Funct3]
	case OpcodeLUI:
		return "LUI"
	case OpcodeAUIPC:
		return "AUIPC"
	case OpcodeJAL:
		return "JAL"
	case OpcodeJALR:
		return "JALR"
	case OpcodeLoadFP:
		return "FLW"
	case OpcodeStoreFP:
		return "FSW"
	case OpcodeOpFP:
		return fpMnemonic(i.FPOp)
	}
	return "NOP"
}

func fpMnemonic(op FPOp) string {
	switch op {
	case FPAdd:
		return "FADD.S"
	case FPSub:
		return "FSUB.S"
	case FPMul:
		return "FMUL.S"
	case FPDiv:
		return "FDIV.S"
	case FPSgnj:
		return "FSGNJ.S"
	case FPSgnjn:
		return "FSGNJN.S"
	case FPSgnjx:
		return "FSGNJX.S"
	case FPMin:
		return "FMIN.S"
	case FPMax:
		return "FMAX.S"
	case FPSqrt:
		return "FSQRT.S"
	case FPCvtWS:
		return "FCVT.W.S"
	case FPCvtSW:
		return "FCVT.S.W"
	case FPMvXW:
		return "FMV.X.W"
	case FPMvWX:
		return "FMV.W.X"
	case FPEq:
		return "FEQ.S"
	case FPLt:
		return "FLT.S"
	case FPLe:
		return "FLE.S"
	case FPClass:
		return "FCLASS.S"
	}
	return "NOP"
}

// Disassemble renders the instruction as uppercase mnemonic plus ABI
// register names and signed decimal immediates. Compressed instructions
// show the C.-prefixed form followed by the expansion.
func (i *Instruction) Disassemble() string {
	base := i.disassembleBase()
	if !i.IsCompressed {
		return base
	}
	return fmt.Sprintf("%s [expanded: %s]", i.disassembleCompressed(), base)
}

func (i *Instruction) disassembleBase() string {
	m := i.Mnemonic()
	rd := RegNames[i.Rd]
	rs1 := RegNames[i.Rs1]
	rs2 := RegNames[i.Rs2]

	switch i.Opcode {
	case OpcodeOp:
		return fmt.Sprintf("%s %s, %s, %s", m, rd, rs1, rs2)
	case OpcodeOpImm:
		return fmt.Sprintf("%s %s, %s, %d", m, rd, rs1, i.Imm)
	case OpcodeLoad:
		return fmt.Sprintf("%s %s, %d(%s)", m, rd, i.Imm, rs1)
	case OpcodeStore:
		return fmt.Sprintf("%s %s, %d(%s)", m, rs2, i.Imm, rs1)
	case OpcodeBranch:
		return fmt.Sprintf("%s %s, %s, %d", m, rs1, rs2, i.Imm)
	case OpcodeLUI, OpcodeAUIPC:
		return fmt.Sprintf("%s %s, %d", m, rd, i.Imm>>12)
	case OpcodeJAL:
		return fmt.Sprintf("%s %s, %d", m, rd, i.Imm)
	case OpcodeJALR:
		return fmt.Sprintf("%s %s, %d(%s)", m, rd, i.Imm, rs1)
	case OpcodeLoadFP:
		return fmt.Sprintf("%s %s, %d(%s)", m, FPRegNames[i.Rd], i.Imm, rs1)
	case OpcodeStoreFP:
		return fmt.Sprintf("%s %s, %d(%s)", m, FPRegNames[i.Rs2], i.Imm, rs1)
	case OpcodeOpFP:
		return i.disassembleFP()
	}
	return "NOP"
}

func (i *Instruction) disassembleFP() string {
	m := fpMnemonic(i.FPOp)
	fd := FPRegNames[i.Rd]
	fs1 := FPRegNames[i.Rs1]
	fs2 := FPRegNames[i.Rs2]

	switch i.FPOp {
	case FPSqrt:
		return fmt.Sprintf("%s %s, %s", m, fd, fs1)
	case FPCvtWS, FPMvXW, FPClass:
		return fmt.Sprintf("%s %s, %s", m, RegNames[i.Rd], fs1)
	case FPCvtSW, FPMvWX:
		return fmt.Sprintf("%s %s, %s", m, fd, RegNames[i.Rs1])
	case FPEq, FPLt, FPLe:
		return fmt.Sprintf("%s %s, %s, %s", m, RegNames[i.Rd], fs1, fs2)
	default:
		return fmt.Sprintf("%s %s, %s, %s", m, fd, fs1, fs2)
	}
}

// disassembleCompressed renders the C form. Operands are reconstructed
// from the expanded instruction, whose fields match by construction.
func (i *Instruction) disassembleCompressed() string {
	half := i.CompressedRaw
	quadrant := half & 0x3
	funct3 := (half >> 13) & 0x7
	rd := RegNames[i.Rd]
	rs1 := RegNames[i.Rs1]
	rs2 := RegNames[i.Rs2]

	switch quadrant {
	case 0:
		switch funct3 {
		case 0:
			return fmt.Sprintf("C.ADDI4SPN %s, sp, %d", rd, i.Imm)
		case 2:
			return fmt.Sprintf("C.LW %s, %d(%s)", rd, i.Imm, rs1)
		case 6:
			return fmt.Sprintf("C.SW %s, %d(%s)", rs2, i.Imm, rs1)
		}
	case 1:
		switch funct3 {
		case 0:
			if i.Rd == 0 && i.Imm == 0 {
				return "C.NOP"
			}
			return fmt.Sprintf("C.ADDI %s, %d", rd, i.Imm)
		case 2:
			return fmt.Sprintf("C.LI %s, %d", rd, i.Imm)
		case 3:
			if i.Rd == 2 {
				return fmt.Sprintf("C.ADDI16SP sp, %d", i.Imm)
			}
			return fmt.Sprintf("C.LUI %s, %d", rd, i.Imm>>12)
		case 4:
			switch (half >> 10) & 0x3 {
			case 0:
				return fmt.Sprintf("C.SRLI %s, %d", rd, i.Imm)
			case 1:
				return fmt.Sprintf("C.SRAI %s, %d", rd, i.Imm)
			case 2:
				return fmt.Sprintf("C.ANDI %s, %d", rd, i.Imm)
			case 3:
				name := [4]string{"C.SUB", "C.XOR", "C.OR", "C.AND"}[(half>>5)&0x3]
				return fmt.Sprintf("%s %s, %s", name, rd, rs2)
			}
		case 5:
			return fmt.Sprintf("C.J %d", i.Imm)
		case 6:
			return fmt.Sprintf("C.BEQZ %s, %d", rs1, i.Imm)
		case 7:
			return fmt.Sprintf("C.BNEZ %s, %d", rs1, i.Imm)
		}
	case 2:
		switch funct3 {
		case 0:
			return fmt.Sprintf("C.SLLI %s, %d", rd, i.Imm)
		case 2:
			return fmt.Sprintf("C.LWSP %s, %d(sp)", rd, i.Imm)
		case 4:
			if (half>>12)&0x1 == 0 {
				if (half>>2)&0x1F == 0 {
					return fmt.Sprintf("C.JR %s", rs1)
				}
				return fmt.Sprintf("C.MV %s, %s", rd, rs2)
			}
			if (half>>2)&0x1F == 0 {
				return fmt.Sprintf("C.JALR %s", rs1)
			}
			return fmt.Sprintf("C.ADD %s, %s", rd, rs2)
		case 6:
			return fmt.Sprintf("C.SWSP %s, %d(sp)", rs2, i.Imm)
		}
	}
	return "C.?"
}
