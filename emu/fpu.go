package emu

import (
	"math"

	"github.com/sarchlab/rv32sim/insts"
)

// FPU performs single-precision floating-point arithmetic for the
// execute stage. Operands and results are raw IEEE-754 bit patterns;
// conversions and bit-level moves carry integer values in the same
// 32-bit representation. Like the ALU, it is purely combinational.
type FPU struct{}

// NewFPU creates a new FPU.
func NewFPU() *FPU {
	return &FPU{}
}

const signBit = 0x80000000

// Execute computes an FPU operation on the bit patterns a and b.
// Comparison ops return 1 or 0; FClass returns the ten-state
// classification mask.
func (f *FPU) Execute(a, b uint32, op insts.FPOp) uint32 {
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)

	switch op {
	case insts.FPAdd:
		return math.Float32bits(fa + fb)
	case insts.FPSub:
		return math.Float32bits(fa - fb)
	case insts.FPMul:
		return math.Float32bits(fa * fb)
	case insts.FPDiv:
		// x/0 yields a signed infinity; 0/0 yields NaN.
		return math.Float32bits(fa / fb)

	case insts.FPSgnj:
		return (a &^ signBit) | (b & signBit)
	case insts.FPSgnjn:
		return (a &^ signBit) | (^b & signBit)
	case insts.FPSgnjx:
		return a ^ (b & signBit)

	case insts.FPMin:
		return math.Float32bits(fpMin(fa, fb))
	case insts.FPMax:
		return math.Float32bits(fpMax(fa, fb))

	case insts.FPSqrt:
		// Square root of a negative produces NaN.
		return math.Float32bits(float32(math.Sqrt(float64(fa))))

	case insts.FPCvtWS:
		return cvtWordFromFloat(fa)
	case insts.FPCvtSW:
		return math.Float32bits(float32(int32(a)))

	case insts.FPMvXW, insts.FPMvWX:
		return a

	case insts.FPEq:
		if fa == fb {
			return 1
		}
		return 0
	case insts.FPLt:
		if fa < fb {
			return 1
		}
		return 0
	case insts.FPLe:
		if fa <= fb {
			return 1
		}
		return 0

	case insts.FPClass:
		return f.Classify(a)
	}
	return 0
}

// fpMin returns the smaller operand; if one operand is NaN the other is
// returned.
func fpMin(a, b float32) float32 {
	if isNaN32(a) {
		return b
	}
	if isNaN32(b) {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// fpMax returns the larger operand; if one operand is NaN the other is
// returned.
func fpMax(a, b float32) float32 {
	if isNaN32(a) {
		return b
	}
	if isNaN32(b) {
		return a
	}
	if a > b {
		return a
	}
	return b
}

func isNaN32(v float32) bool {
	return v != v
}

// cvtWordFromFloat converts to a signed 32-bit integer with truncation.
// NaN and positive overflow saturate to INT_MAX; negative overflow
// saturates to INT_MIN.
func cvtWordFromFloat(v float32) uint32 {
	if isNaN32(v) {
		return 0x7FFFFFFF
	}
	t := math.Trunc(float64(v))
	if t >= float64(math.MaxInt32) {
		return 0x7FFFFFFF
	}
	if t <= float64(math.MinInt32) {
		return intMin
	}
	return uint32(int32(t))
}

// RISC-V FCLASS.S result bits.
const (
	classNegInf uint32 = 1 << iota
	classNegNormal
	classNegSubnormal
	classNegZero
	classPosZero
	classPosSubnormal
	classPosNormal
	classPosInf
	classSignalingNaN
	classQuietNaN
)

// Classify returns the RISC-V ten-state classification mask for the
// value with bit pattern a.
func (f *FPU) Classify(a uint32) uint32 {
	sign := a&signBit != 0
	exp := (a >> 23) & 0xFF
	frac := a & 0x7FFFFF

	switch {
	case exp == 0xFF && frac != 0:
		if frac&0x400000 != 0 {
			return classQuietNaN
		}
		return classSignalingNaN
	case exp == 0xFF:
		if sign {
			return classNegInf
		}
		return classPosInf
	case exp == 0 && frac == 0:
		if sign {
			return classNegZero
		}
		return classPosZero
	case exp == 0:
		if sign {
			return classNegSubnormal
		}
		return classPosSubnormal
	default:
		if sign {
			return classNegNormal
		}
		return classPosNormal
	}
}
