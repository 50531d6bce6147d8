package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = emu.NewRegFile()
	})

	It("should read back written integer registers", func() {
		regFile.Write(5, 42)
		Expect(regFile.Read(5)).To(Equal(uint32(42)))
	})

	It("should keep register 0 hard-wired to zero", func() {
		regFile.Write(0, 42)
		Expect(regFile.Read(0)).To(Equal(uint32(0)))
	})

	It("should treat f0 as a normal register", func() {
		regFile.WriteFP(0, 0x3F800000)
		Expect(regFile.ReadFP(0)).To(Equal(uint32(0x3F800000)))
	})

	It("should store FP registers as raw bit patterns", func() {
		regFile.WriteFP(3, 0x7FC00000)
		Expect(regFile.ReadFP(3)).To(Equal(uint32(0x7FC00000)))
	})

	It("should zero everything on reset", func() {
		regFile.Write(5, 42)
		regFile.WriteFP(3, 7)
		regFile.FCSR = 0xE0

		regFile.Reset()

		Expect(regFile.Read(5)).To(Equal(uint32(0)))
		Expect(regFile.ReadFP(3)).To(Equal(uint32(0)))
		Expect(regFile.FCSR).To(Equal(uint32(0)))
	})
})
