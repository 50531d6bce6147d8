package insts

// ALUOp identifies the operation the ALU performs for an instruction.
// The encoding is a flat tag partitioned by family: arithmetic (0x0x),
// logic and compares (0x1x), shifts (0x2x), branch conditions (0x3x),
// load/store address calculation (0x4x), and multiply/divide (0x5x).
type ALUOp uint8

// ALU operation tags.
const (
	ALUOpAdd ALUOp = 0x00 // ADD, ADDI, AUIPC, address calculation
	ALUOpSub ALUOp = 0x01

	ALUOpAnd   ALUOp = 0x10
	ALUOpOr    ALUOp = 0x11
	ALUOpXor   ALUOp = 0x12
	ALUOpSlt   ALUOp = 0x13
	ALUOpSltu  ALUOp = 0x14
	ALUOpSlti  ALUOp = 0x15
	ALUOpSltiu ALUOp = 0x16
	ALUOpXori  ALUOp = 0x17
	ALUOpOri   ALUOp = 0x18
	ALUOpAndi  ALUOp = 0x19

	ALUOpSll  ALUOp = 0x20
	ALUOpSrl  ALUOp = 0x21
	ALUOpSra  ALUOp = 0x22
	ALUOpSlli ALUOp = 0x23
	ALUOpSrli ALUOp = 0x24
	ALUOpSrai ALUOp = 0x25

	ALUOpBeq  ALUOp = 0x30
	ALUOpBge  ALUOp = 0x31
	ALUOpBgeu ALUOp = 0x32
	ALUOpBlt  ALUOp = 0x33
	ALUOpBltu ALUOp = 0x34
	ALUOpBne  ALUOp = 0x35

	ALUOpLb ALUOp = 0x40
	ALUOpLh ALUOp = 0x41
	ALUOpLw ALUOp = 0x42
	ALUOpLbu ALUOp = 0x43
	ALUOpLhu ALUOp = 0x44
	ALUOpSb ALUOp = 0x45
	ALUOpSh ALUOp = 0x46
	ALUOpSw ALUOp = 0x47

	ALUOpMul    ALUOp = 0x50
	ALUOpMulh   ALUOp = 0x51
	ALUOpMulhsu ALUOp = 0x52
	ALUOpMulhu  ALUOp = 0x53
	ALUOpDiv    ALUOp = 0x54
	ALUOpDivu   ALUOp = 0x55
	ALUOpRem    ALUOp = 0x56
	ALUOpRemu   ALUOp = 0x57

	ALUOpLui ALUOp = 0x0F
)

// FPOp identifies a floating-point unit operation. FPNone means the
// instruction does not use the FPU.
type FPOp uint8

// FPU operation tags.
const (
	FPNone FPOp = iota
	FPAdd
	FPSub
	FPMul
	FPDiv
	FPSgnj
	FPSgnjn
	FPSgnjx
	FPMin
	FPMax
	FPSqrt
	FPCvtWS // convert float to signed int
	FPCvtSW // convert signed int to float
	FPMvXW  // bit-cast float register to integer register
	FPMvWX  // bit-cast integer register to float register
	FPEq
	FPLt
	FPLe
	FPClass
)

// MemAccess selects the width and extension behavior of a memory access.
type MemAccess uint8

// Memory access types.
const (
	MemNone  MemAccess = iota
	MemByte            // LB / SB (sign-extend on load)
	MemByteU           // LBU (zero-extend)
	MemHalf            // LH / SH (sign-extend on load)
	MemHalfU           // LHU (zero-extend)
	MemWord            // LW / SW
	MemFloat           // FLW / FSW (word-width, FP register)
)

// Width returns the access width in bytes.
func (m MemAccess) Width() int {
	switch m {
	case MemByte, MemByteU:
		return 1
	case MemHalf, MemHalfU:
		return 2
	case MemWord, MemFloat:
		return 4
	default:
		return 0
	}
}

// RV32 major opcodes (bits [6:0]).
const (
	OpcodeLoad    uint8 = 0x03
	OpcodeLoadFP  uint8 = 0x07
	OpcodeOpImm   uint8 = 0x13
	OpcodeAUIPC   uint8 = 0x17
	OpcodeStore   uint8 = 0x23
	OpcodeStoreFP uint8 = 0x27
	OpcodeOp      uint8 = 0x33
	OpcodeLUI     uint8 = 0x37
	OpcodeOpFP    uint8 = 0x53
	OpcodeBranch  uint8 = 0x63
	OpcodeJALR    uint8 = 0x67
	OpcodeJAL     uint8 = 0x6F
)

// Instruction represents a decoded RV32 instruction.
type Instruction struct {
	// Raw is the 32-bit instruction word (the expanded form for
	// compressed instructions).
	Raw uint32

	// Opcode is the major opcode, bits [6:0].
	Opcode uint8

	// Register fields.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// Function fields.
	Funct3 uint8
	Funct7 uint8

	// Imm is the generated immediate, sign-extended where the format
	// calls for it. Branch and jump immediates are byte offsets.
	Imm int32

	// ALUOp selects the ALU operation.
	ALUOp ALUOp

	// FPOp selects the FPU operation. FPNone for integer instructions.
	FPOp FPOp

	// Control signals.
	RegWrite bool // writes an integer register
	ALUSrc   bool // second ALU operand is the immediate
	Branch   bool // conditional branch
	MemRead  bool // load
	MemWrite bool // store
	MemToReg bool // writeback value comes from memory
	UpperImm bool // LUI / AUIPC
	IsJump   bool // JAL / JALR
	IsJALR   bool // JALR specifically

	// FP control signals.
	FPRegWrite bool // writes a floating-point register
	FPReadRs1  bool // rs1 is read from the FP register file
	FPReadRs2  bool // rs2 is read from the FP register file

	// Memory access width selectors.
	MemReadType  MemAccess
	MemWriteType MemAccess

	// Compressed-encoding provenance.
	IsCompressed  bool
	CompressedRaw uint16
}

// IsNOP reports whether the instruction has no architectural effect.
func (i *Instruction) IsNOP() bool {
	return !i.RegWrite && !i.FPRegWrite && !i.MemWrite && !i.Branch && !i.IsJump
}

// Decoder decodes RV32 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32 instruction word. Undefined encodings
// decode as a NOP with all control signals cleared.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Raw:    word,
		Opcode: uint8(word & 0x7F),
		Rd:     uint8((word >> 7) & 0x1F),
		Funct3: uint8((word >> 12) & 0x7),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Funct7: uint8((word >> 25) & 0x7F),
	}

	switch inst.Opcode {
	case OpcodeOp:
		d.decodeOp(inst)
	case OpcodeOpImm:
		d.decodeOpImm(inst)
	case OpcodeLoad:
		d.decodeLoad(inst)
	case OpcodeStore:
		d.decodeStore(inst)
	case OpcodeBranch:
		d.decodeBranch(inst)
	case OpcodeLUI:
		inst.RegWrite = true
		inst.ALUSrc = true
		inst.UpperImm = true
		inst.ALUOp = ALUOpLui
	case OpcodeAUIPC:
		inst.RegWrite = true
		inst.ALUSrc = true
		inst.UpperImm = true
		inst.ALUOp = ALUOpAdd
	case OpcodeJAL:
		inst.RegWrite = true
		inst.IsJump = true
	case OpcodeJALR:
		if inst.Funct3 == 0 {
			inst.RegWrite = true
			inst.ALUSrc = true
			inst.IsJump = true
			inst.IsJALR = true
		}
	case OpcodeLoadFP:
		if inst.Funct3 == 2 {
			inst.FPRegWrite = true
			inst.ALUSrc = true
			inst.MemRead = true
			inst.MemToReg = true
			inst.MemReadType = MemFloat
			inst.ALUOp = ALUOpAdd
		}
	case OpcodeStoreFP:
		if inst.Funct3 == 2 {
			inst.ALUSrc = true
			inst.MemWrite = true
			inst.FPReadRs2 = true
			inst.MemWriteType = MemFloat
			inst.ALUOp = ALUOpAdd
		}
	case OpcodeOpFP:
		d.decodeOpFP(inst)
	}

	inst.Imm = generateImmediate(word, inst.Opcode)
	if inst.IsNOP() {
		// Unknown or unrecognized encoding: no effects, tag cleared.
		inst.ALUOp = 0
	}
	return inst
}

// decodeOp decodes register-register arithmetic (opcode 0x33),
// including the M extension when funct7 is 0x01.
func (d *Decoder) decodeOp(inst *Instruction) {
	if inst.Funct7 == 0x01 {
		mOps := [8]ALUOp{
			ALUOpMul, ALUOpMulh, ALUOpMulhsu, ALUOpMulhu,
			ALUOpDiv, ALUOpDivu, ALUOpRem, ALUOpRemu,
		}
		inst.RegWrite = true
		inst.ALUOp = mOps[inst.Funct3]
		return
	}

	switch inst.Funct3 {
	case 0:
		if inst.Funct7 == 0x20 {
			inst.ALUOp = ALUOpSub
		} else if inst.Funct7 == 0x00 {
			inst.ALUOp = ALUOpAdd
		} else {
			return
		}
	case 1:
		inst.ALUOp = ALUOpSll
	case 2:
		inst.ALUOp = ALUOpSlt
	case 3:
		inst.ALUOp = ALUOpSltu
	case 4:
		inst.ALUOp = ALUOpXor
	case 5:
		if inst.Funct7 == 0x20 {
			inst.ALUOp = ALUOpSra
		} else if inst.Funct7 == 0x00 {
			inst.ALUOp = ALUOpSrl
		} else {
			return
		}
	case 6:
		inst.ALUOp = ALUOpOr
	case 7:
		inst.ALUOp = ALUOpAnd
	}
	inst.RegWrite = true
}

// decodeOpImm decodes immediate arithmetic (opcode 0x13).
func (d *Decoder) decodeOpImm(inst *Instruction) {
	switch inst.Funct3 {
	case 0:
		inst.ALUOp = ALUOpAdd
	case 1:
		if inst.Funct7 != 0x00 {
			return
		}
		inst.ALUOp = ALUOpSlli
	case 2:
		inst.ALUOp = ALUOpSlti
	case 3:
		inst.ALUOp = ALUOpSltiu
	case 4:
		inst.ALUOp = ALUOpXori
	case 5:
		if inst.Funct7 == 0x20 {
			inst.ALUOp = ALUOpSrai
		} else if inst.Funct7 == 0x00 {
			inst.ALUOp = ALUOpSrli
		} else {
			return
		}
	case 6:
		inst.ALUOp = ALUOpOri
	case 7:
		inst.ALUOp = ALUOpAndi
	}
	inst.RegWrite = true
	inst.ALUSrc = true
}

// decodeLoad decodes integer loads (opcode 0x03).
func (d *Decoder) decodeLoad(inst *Instruction) {
	switch inst.Funct3 {
	case 0:
		inst.MemReadType = MemByte
		inst.ALUOp = ALUOpLb
	case 1:
		inst.MemReadType = MemHalf
		inst.ALUOp = ALUOpLh
	case 2:
		inst.MemReadType = MemWord
		inst.ALUOp = ALUOpLw
	case 4:
		inst.MemReadType = MemByteU
		inst.ALUOp = ALUOpLbu
	case 5:
		inst.MemReadType = MemHalfU
		inst.ALUOp = ALUOpLhu
	default:
		return
	}
	inst.RegWrite = true
	inst.ALUSrc = true
	inst.MemRead = true
	inst.MemToReg = true
}

// decodeStore decodes integer stores (opcode 0x23).
func (d *Decoder) decodeStore(inst *Instruction) {
	switch inst.Funct3 {
	case 0:
		inst.MemWriteType = MemByte
		inst.ALUOp = ALUOpSb
	case 1:
		inst.MemWriteType = MemHalf
		inst.ALUOp = ALUOpSh
	case 2:
		inst.MemWriteType = MemWord
		inst.ALUOp = ALUOpSw
	default:
		return
	}
	inst.ALUSrc = true
	inst.MemWrite = true
}

// decodeBranch decodes conditional branches (opcode 0x63).
func (d *Decoder) decodeBranch(inst *Instruction) {
	switch inst.Funct3 {
	case 0:
		inst.ALUOp = ALUOpBeq
	case 1:
		inst.ALUOp = ALUOpBne
	case 4:
		inst.ALUOp = ALUOpBlt
	case 5:
		inst.ALUOp = ALUOpBge
	case 6:
		inst.ALUOp = ALUOpBltu
	case 7:
		inst.ALUOp = ALUOpBgeu
	default:
		return
	}
	inst.Branch = true
}

// decodeOpFP decodes single-precision floating-point operations
// (opcode 0x53). The rounding mode field is accepted but not enforced.
func (d *Decoder) decodeOpFP(inst *Instruction) {
	switch inst.Funct7 {
	case 0x00:
		inst.FPOp = FPAdd
	case 0x04:
		inst.FPOp = FPSub
	case 0x08:
		inst.FPOp = FPMul
	case 0x0C:
		inst.FPOp = FPDiv
	case 0x10:
		switch inst.Funct3 {
		case 0:
			inst.FPOp = FPSgnj
		case 1:
			inst.FPOp = FPSgnjn
		case 2:
			inst.FPOp = FPSgnjx
		default:
			return
		}
	case 0x14:
		switch inst.Funct3 {
		case 0:
			inst.FPOp = FPMin
		case 1:
			inst.FPOp = FPMax
		default:
			return
		}
	case 0x2C:
		if inst.Rs2 != 0 {
			return
		}
		inst.FPOp = FPSqrt
	case 0x50:
		switch inst.Funct3 {
		case 0:
			inst.FPOp = FPLe
		case 1:
			inst.FPOp = FPLt
		case 2:
			inst.FPOp = FPEq
		default:
			return
		}
		// Compare results land in an integer register.
		inst.RegWrite = true
		inst.FPReadRs1 = true
		inst.FPReadRs2 = true
		return
	case 0x60:
		if inst.Rs2 != 0 {
			return
		}
		inst.FPOp = FPCvtWS
		inst.RegWrite = true
		inst.FPReadRs1 = true
		return
	case 0x68:
		if inst.Rs2 != 0 {
			return
		}
		inst.FPOp = FPCvtSW
		inst.FPRegWrite = true
		return
	case 0x70:
		switch inst.Funct3 {
		case 0:
			inst.FPOp = FPMvXW
		case 1:
			inst.FPOp = FPClass
		default:
			return
		}
		inst.RegWrite = true
		inst.FPReadRs1 = true
		return
	case 0x78:
		if inst.Funct3 != 0 {
			return
		}
		inst.FPOp = FPMvWX
		inst.FPRegWrite = true
		return
	default:
		return
	}

	// Plain FP arithmetic: both sources and the destination are FP.
	inst.FPRegWrite = true
	inst.FPReadRs1 = true
	if inst.FPOp != FPSqrt {
		inst.FPReadRs2 = true
	}
}
