package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
)

func f32(v float32) uint32 {
	return math.Float32bits(v)
}

const quietNaN = uint32(0x7FC00000)

var _ = Describe("FPU", func() {
	var fpu *emu.FPU

	BeforeEach(func() {
		fpu = emu.NewFPU()
	})

	Describe("Arithmetic", func() {
		It("should add", func() {
			Expect(fpu.Execute(f32(1.5), f32(2.5), insts.FPAdd)).
				To(Equal(f32(4.0)))
		})

		It("should subtract", func() {
			Expect(fpu.Execute(f32(1.0), f32(2.5), insts.FPSub)).
				To(Equal(f32(-1.5)))
		})

		It("should multiply", func() {
			Expect(fpu.Execute(f32(3.0), f32(0.5), insts.FPMul)).
				To(Equal(f32(1.5)))
		})

		It("should divide to a signed infinity by zero", func() {
			result := fpu.Execute(f32(1.0), f32(0.0), insts.FPDiv)
			Expect(math.Float32frombits(result)).
				To(Equal(float32(math.Inf(1))))
		})

		It("should take square roots", func() {
			Expect(fpu.Execute(f32(4.0), 0, insts.FPSqrt)).
				To(Equal(f32(2.0)))
		})
	})

	Describe("Sign injection", func() {
		It("should copy the second operand's sign", func() {
			Expect(fpu.Execute(f32(1.5), f32(-2.0), insts.FPSgnj)).
				To(Equal(f32(-1.5)))
		})

		It("should copy the negated sign", func() {
			Expect(fpu.Execute(f32(1.5), f32(2.0), insts.FPSgnjn)).
				To(Equal(f32(-1.5)))
		})

		It("should xor the signs", func() {
			Expect(fpu.Execute(f32(-1.5), f32(-2.0), insts.FPSgnjx)).
				To(Equal(f32(1.5)))
		})
	})

	Describe("Min and max", func() {
		It("should order operands", func() {
			Expect(fpu.Execute(f32(1.0), f32(2.0), insts.FPMin)).
				To(Equal(f32(1.0)))
			Expect(fpu.Execute(f32(1.0), f32(2.0), insts.FPMax)).
				To(Equal(f32(2.0)))
		})

		It("should return the non-NaN operand", func() {
			Expect(fpu.Execute(quietNaN, f32(2.0), insts.FPMin)).
				To(Equal(f32(2.0)))
			Expect(fpu.Execute(f32(1.0), quietNaN, insts.FPMax)).
				To(Equal(f32(1.0)))
		})
	})

	Describe("Conversions", func() {
		It("should truncate toward zero", func() {
			Expect(fpu.Execute(f32(2.75), 0, insts.FPCvtWS)).
				To(Equal(uint32(2)))
			Expect(int32(fpu.Execute(f32(-2.75), 0, insts.FPCvtWS))).
				To(Equal(int32(-2)))
		})

		It("should saturate NaN and overflow to INT_MAX", func() {
			Expect(fpu.Execute(quietNaN, 0, insts.FPCvtWS)).
				To(Equal(uint32(0x7FFFFFFF)))
			Expect(fpu.Execute(f32(3e9), 0, insts.FPCvtWS)).
				To(Equal(uint32(0x7FFFFFFF)))
		})

		It("should saturate negative overflow to INT_MIN", func() {
			Expect(fpu.Execute(f32(-3e9), 0, insts.FPCvtWS)).
				To(Equal(uint32(0x80000000)))
		})

		It("should convert signed integers to float", func() {
			Expect(fpu.Execute(uint32(0xFFFFFFFE), 0, insts.FPCvtSW)).
				To(Equal(f32(-2.0)))
		})

		It("should pass bit patterns through for register moves", func() {
			Expect(fpu.Execute(0xDEADBEEF, 0, insts.FPMvXW)).
				To(Equal(uint32(0xDEADBEEF)))
			Expect(fpu.Execute(0xDEADBEEF, 0, insts.FPMvWX)).
				To(Equal(uint32(0xDEADBEEF)))
		})
	})

	Describe("Comparisons", func() {
		It("should compare for equality and ordering", func() {
			Expect(fpu.Execute(f32(1.0), f32(1.0), insts.FPEq)).To(Equal(uint32(1)))
			Expect(fpu.Execute(f32(1.0), f32(2.0), insts.FPLt)).To(Equal(uint32(1)))
			Expect(fpu.Execute(f32(2.0), f32(2.0), insts.FPLe)).To(Equal(uint32(1)))
			Expect(fpu.Execute(f32(2.0), f32(1.0), insts.FPLe)).To(Equal(uint32(0)))
		})

		It("should compare NaN as unordered", func() {
			Expect(fpu.Execute(quietNaN, quietNaN, insts.FPEq)).To(Equal(uint32(0)))
			Expect(fpu.Execute(quietNaN, f32(1.0), insts.FPLt)).To(Equal(uint32(0)))
		})
	})

	Describe("Classification", func() {
		It("should classify the ten states", func() {
			Expect(fpu.Classify(f32(float32(math.Inf(-1))))).To(Equal(uint32(0x001)))
			Expect(fpu.Classify(f32(-1.5))).To(Equal(uint32(0x002)))
			Expect(fpu.Classify(uint32(0x80000001))).To(Equal(uint32(0x004)))
			Expect(fpu.Classify(uint32(0x80000000))).To(Equal(uint32(0x008)))
			Expect(fpu.Classify(uint32(0x00000000))).To(Equal(uint32(0x010)))
			Expect(fpu.Classify(uint32(0x00000001))).To(Equal(uint32(0x020)))
			Expect(fpu.Classify(f32(1.5))).To(Equal(uint32(0x040)))
			Expect(fpu.Classify(f32(float32(math.Inf(1))))).To(Equal(uint32(0x080)))
			Expect(fpu.Classify(uint32(0x7F800001))).To(Equal(uint32(0x100)))
			Expect(fpu.Classify(quietNaN)).To(Equal(uint32(0x200)))
		})
	})
})
