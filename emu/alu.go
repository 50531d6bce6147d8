package emu

import "github.com/sarchlab/rv32sim/insts"

// ALU performs integer arithmetic for the execute stage. It is a pure
// combinational unit: Execute has no state and no side effects.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute computes the result of an ALU operation. The returned flag
// means "should branch" for branch-condition ops; every other op sets
// the flag iff the result is zero. Shifts use only the low five bits of
// b. Load/store tags compute the effective address (a + b).
func (alu *ALU) Execute(a, b uint32, op insts.ALUOp) (uint32, bool) {
	var result uint32

	switch op {
	case insts.ALUOpAdd,
		insts.ALUOpLb, insts.ALUOpLh, insts.ALUOpLw,
		insts.ALUOpLbu, insts.ALUOpLhu,
		insts.ALUOpSb, insts.ALUOpSh, insts.ALUOpSw:
		result = a + b
	case insts.ALUOpSub:
		result = a - b

	case insts.ALUOpAnd, insts.ALUOpAndi:
		result = a & b
	case insts.ALUOpOr, insts.ALUOpOri:
		result = a | b
	case insts.ALUOpXor, insts.ALUOpXori:
		result = a ^ b
	case insts.ALUOpSlt, insts.ALUOpSlti:
		if int32(a) < int32(b) {
			result = 1
		}
	case insts.ALUOpSltu, insts.ALUOpSltiu:
		if a < b {
			result = 1
		}

	case insts.ALUOpSll, insts.ALUOpSlli:
		result = a << (b & 0x1F)
	case insts.ALUOpSrl, insts.ALUOpSrli:
		result = a >> (b & 0x1F)
	case insts.ALUOpSra, insts.ALUOpSrai:
		result = uint32(int32(a) >> (b & 0x1F))

	case insts.ALUOpBeq:
		return 0, a == b
	case insts.ALUOpBne:
		return 0, a != b
	case insts.ALUOpBlt:
		return 0, int32(a) < int32(b)
	case insts.ALUOpBge:
		return 0, int32(a) >= int32(b)
	case insts.ALUOpBltu:
		return 0, a < b
	case insts.ALUOpBgeu:
		return 0, a >= b

	case insts.ALUOpMul:
		result = uint32(int32(a) * int32(b))
	case insts.ALUOpMulh:
		result = uint32(uint64(int64(int32(a))*int64(int32(b))) >> 32)
	case insts.ALUOpMulhsu:
		result = uint32(uint64(int64(int32(a))*int64(b)) >> 32)
	case insts.ALUOpMulhu:
		result = uint32(uint64(a) * uint64(b) >> 32)
	case insts.ALUOpDiv:
		result = divSigned(a, b)
	case insts.ALUOpDivu:
		if b == 0 {
			result = 0xFFFFFFFF
		} else {
			result = a / b
		}
	case insts.ALUOpRem:
		result = remSigned(a, b)
	case insts.ALUOpRemu:
		if b == 0 {
			result = a
		} else {
			result = a % b
		}

	case insts.ALUOpLui:
		result = b
	}

	return result, result == 0
}

const intMin = 0x80000000

// divSigned implements RV32 signed division: divide-by-zero yields -1
// and the overflow case INT_MIN / -1 yields INT_MIN.
func divSigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	if a == intMin && int32(b) == -1 {
		return intMin
	}
	return uint32(int32(a) / int32(b))
}

// remSigned implements RV32 signed remainder: remainder-by-zero yields
// the dividend and INT_MIN % -1 yields 0.
func remSigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	if a == intMin && int32(b) == -1 {
		return 0
	}
	return uint32(int32(a) % int32(b))
}
