package emu_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
)

func assemble(words ...uint32) *loader.Program {
	var sb strings.Builder
	for _, word := range words {
		fmt.Fprintf(&sb, "%02x %02x %02x %02x\n",
			byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	}
	prog, err := loader.Load(strings.NewReader(sb.String()))
	Expect(err).ToNot(HaveOccurred())
	return prog
}

var _ = Describe("Emulator", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory(1024)
	})

	It("should execute a straight-line arithmetic sequence", func() {
		// ADDI x5, x0, 3; ADDI x6, x5, 4; ADD x7, x5, x6.
		prog := assemble(0x00300293, 0x00428313, 0x006283B3)
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		Expect(em.Done()).To(BeTrue())
		Expect(em.Retired()).To(Equal(uint64(3)))
		Expect(em.RegFile().Read(5)).To(Equal(uint32(3)))
		Expect(em.RegFile().Read(6)).To(Equal(uint32(7)))
		Expect(em.RegFile().Read(7)).To(Equal(uint32(10)))
	})

	It("should take branches and fall through", func() {
		// ADDI x5, x5, -1; BNE x5, x0, -4 with x5 starting at 3.
		prog := assemble(0xFFF28293, 0xFE029EE3)
		em := emu.NewEmulator(prog, memory)
		em.RegFile().Write(5, 3)

		em.Run(100)

		Expect(em.Done()).To(BeTrue())
		Expect(em.RegFile().Read(5)).To(Equal(uint32(0)))
		Expect(em.Retired()).To(Equal(uint64(6)))
	})

	It("should link and jump", func() {
		// JAL x1, +12; ADDI x7, x7, 10; JAL x0, +12;
		// ADDI x6, x0, 1; JALR x0, 0(x1).
		prog := assemble(0x00C000EF, 0x00A38393, 0x00C0006F,
			0x00100313, 0x00008067)
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		Expect(em.Done()).To(BeTrue())
		Expect(em.RegFile().Read(1)).To(Equal(uint32(4)))
		Expect(em.RegFile().Read(6)).To(Equal(uint32(1)))
		Expect(em.RegFile().Read(7)).To(Equal(uint32(10)))
		Expect(em.Retired()).To(Equal(uint64(5)))
	})

	It("should load and store through memory", func() {
		// ADDI x5, x0, 3; SW x5, 0(x0); LW x6, 0(x0).
		prog := assemble(0x00300293, 0x00502023, 0x00002303)
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		word, ok := memory.Load(0, 4)
		Expect(ok).To(BeTrue())
		Expect(word).To(Equal(uint32(3)))
		Expect(em.RegFile().Read(6)).To(Equal(uint32(3)))
	})

	It("should sign-extend byte loads", func() {
		memory.Store(0, 0x80, 1)
		// LB x5, 0(x0).
		prog := assemble(0x00000283)
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		Expect(em.RegFile().Read(5)).To(Equal(uint32(0xFFFFFF80)))
	})

	It("should execute compressed instructions", func() {
		// C.ADDI x5, 1 twice.
		prog, err := loader.Load(strings.NewReader("85 02 85 02"))
		Expect(err).ToNot(HaveOccurred())
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		Expect(em.RegFile().Read(5)).To(Equal(uint32(2)))
		Expect(em.Retired()).To(Equal(uint64(2)))
	})

	It("should skip reserved compressed encodings without retiring", func() {
		// C.EBREAK then C.ADDI x5, 1.
		prog, err := loader.Load(strings.NewReader("02 90 85 02"))
		Expect(err).ToNot(HaveOccurred())
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		Expect(em.RegFile().Read(5)).To(Equal(uint32(1)))
		Expect(em.Retired()).To(Equal(uint64(1)))
	})

	It("should run floating-point arithmetic", func() {
		memory.Store(0, 0x3FC00000, 4) // 1.5f
		memory.Store(4, 0x40200000, 4) // 2.5f
		// FLW f1, 0(x0); FLW f2, 4(x0); FADD.S f3, f1, f2;
		// FSW f3, 8(x0).
		prog := assemble(0x00002087, 0x00402107, 0x002081D3, 0x00302427)
		em := emu.NewEmulator(prog, memory)

		em.Run(100)

		Expect(em.RegFile().ReadFP(3)).To(Equal(uint32(0x40800000)))
		word, ok := memory.Load(8, 4)
		Expect(ok).To(BeTrue())
		Expect(word).To(Equal(uint32(0x40800000)))
	})

	It("should stop at the step bound", func() {
		prog := assemble(0x00300293, 0x00428313, 0x006283B3)
		em := emu.NewEmulator(prog, memory)

		Expect(em.Run(2)).To(Equal(uint64(2)))
		Expect(em.Done()).To(BeFalse())
	})

	It("should reproduce a run after Reset", func() {
		prog := assemble(0x00300293, 0x00428313)
		em := emu.NewEmulator(prog, memory)

		em.Run(100)
		em.Reset()
		Expect(em.PC()).To(Equal(uint32(0)))
		Expect(em.RegFile().Read(5)).To(Equal(uint32(0)))

		em.Run(100)
		Expect(em.RegFile().Read(6)).To(Equal(uint32(7)))
	})
})
