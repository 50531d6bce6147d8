package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		hazardUnit *pipeline.HazardUnit
		decoder    *insts.Decoder
	)

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
		decoder = insts.NewDecoder()
	})

	idexFor := func(word uint32) *pipeline.IDEXLatch {
		return &pipeline.IDEXLatch{Valid: true, Inst: decoder.Decode(word)}
	}

	Describe("Forwarding detection", func() {
		It("should forward both sources from EX/MEM", func() {
			// ADD x6, x5, x5 behind ADDI x5, x0, 3.
			idex := idexFor(0x00528333)
			exmem := &pipeline.EXMEMLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00300293),
				ALUResult: 3,
			}
			memwb := &pipeline.MEMWBLatch{}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
			Expect(fwd.ForwardRs2).To(Equal(pipeline.ForwardFromEXMEM))
			Expect(hazardUnit.ForwardedValue(fwd.ForwardRs1, 0, exmem, memwb)).
				To(Equal(uint32(3)))
		})

		It("should forward from MEM/WB when EX/MEM does not match", func() {
			// SUB x5, x6, x7: x6 produced two instructions back.
			idex := idexFor(0x407302B3)
			exmem := &pipeline.EXMEMLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00300293), // writes x5
				ALUResult: 3,
			}
			memwb := &pipeline.MEMWBLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00100313), // ADDI x6, x0, 1
				ALUResult: 1,
			}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardRs1).To(Equal(pipeline.ForwardFromMEMWB))
			Expect(hazardUnit.ForwardedValue(fwd.ForwardRs1, 99, exmem, memwb)).
				To(Equal(uint32(1)))
		})

		It("should prefer EX/MEM over MEM/WB when both match", func() {
			// ADDI x6, x5, 4 with two pending writers of x5.
			idex := idexFor(0x00428313)
			exmem := &pipeline.EXMEMLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00300293),
				ALUResult: 3,
			}
			memwb := &pipeline.MEMWBLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00128293), // older ADDI x5
				ALUResult: 1,
			}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
		})

		It("should forward a loaded value from MEM/WB", func() {
			// ADD x6, x5, x5 two cycles behind LW x5, 0(x0).
			idex := idexFor(0x00528333)
			exmem := &pipeline.EXMEMLatch{}
			memwb := &pipeline.MEMWBLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00002283),
				ALUResult: 0,
				MemData:   16,
			}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardRs1).To(Equal(pipeline.ForwardFromMEMWB))
			Expect(hazardUnit.ForwardedValue(fwd.ForwardRs1, 0, exmem, memwb)).
				To(Equal(uint32(16)))
		})

		It("should never forward into the zero register", func() {
			// BNE x5, x0, -4: rs2 is x0.
			idex := idexFor(0xFE029EE3)
			exmem := &pipeline.EXMEMLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00000013), // ADDI x0, x0, 0
				ALUResult: 7,
			}
			memwb := &pipeline.MEMWBLatch{}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardRs2).To(Equal(pipeline.ForwardNone))
		})

		It("should not forward integer results to FP sources", func() {
			// FADD.S f1, f2, f3 behind an integer write of x2.
			idex := idexFor(0x003100D3)
			exmem := &pipeline.EXMEMLatch{
				Valid:     true,
				Inst:      decoder.Decode(0x00100113), // ADDI x2, x0, 1
				ALUResult: 1,
			}
			memwb := &pipeline.MEMWBLatch{}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardFPRs1).To(Equal(pipeline.ForwardNone))
			Expect(fwd.ForwardFPRs2).To(Equal(pipeline.ForwardNone))
		})

		It("should forward FP results, including f0", func() {
			// FADD.S f1, f0, f3 behind FCVT.S.W f0, x5.
			// FADD.S f1, f0, f3 -> funct7=0, rs2=3, rs1=0, rd=1.
			idex := idexFor(0x003000D3)
			exmem := &pipeline.EXMEMLatch{
				Valid:    true,
				Inst:     decoder.Decode(0xD0028053), // FCVT.S.W f0, x5
				FPResult: 0x40400000,
			}
			memwb := &pipeline.MEMWBLatch{}

			fwd := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(fwd.ForwardFPRs1).To(Equal(pipeline.ForwardFromEXMEM))
			Expect(hazardUnit.ForwardedFPValue(fwd.ForwardFPRs1, 0, exmem, memwb)).
				To(Equal(uint32(0x40400000)))
		})
	})

	Describe("Load-use detection", func() {
		It("should stall a consumer right behind a load", func() {
			// LW x5, 0(x0) in EX, ADD x6, x5, x5 in decode.
			idex := idexFor(0x00002283)
			next := decoder.Decode(0x00528333)

			Expect(hazardUnit.DetectLoadUseHazard(idex, next)).To(BeTrue())
		})

		It("should stall a store whose data comes from the load", func() {
			// LW x5, 0(x0) then SW x5, 12(x1).
			idex := idexFor(0x00002283)
			next := decoder.Decode(0x0050A623)

			Expect(hazardUnit.DetectLoadUseHazard(idex, next)).To(BeTrue())
		})

		It("should not stall behind non-load producers", func() {
			// ADDI x5, x0, 3 then ADD x6, x5, x5: forwarding covers it.
			idex := idexFor(0x00300293)
			next := decoder.Decode(0x00528333)

			Expect(hazardUnit.DetectLoadUseHazard(idex, next)).To(BeFalse())
		})

		It("should not stall independent instructions", func() {
			// LW x5, 0(x0) then ADDI x7, x6, -2.
			idex := idexFor(0x00002283)
			next := decoder.Decode(0xFFE30393)

			Expect(hazardUnit.DetectLoadUseHazard(idex, next)).To(BeFalse())
		})

		It("should stall an FP consumer behind FLW", func() {
			// FLW f1, 0(x2) then FADD.S f2, f1, f3.
			idex := idexFor(0x00012087)
			// FADD.S f2, f1, f3 -> funct7=0, rs2=3, rs1=1, rd=2.
			next := decoder.Decode(0x00308153)

			Expect(hazardUnit.DetectLoadUseHazard(idex, next)).To(BeTrue())
		})

		It("should not stall when the EX slot is empty", func() {
			idex := &pipeline.IDEXLatch{}
			next := decoder.Decode(0x00528333)

			Expect(hazardUnit.DetectLoadUseHazard(idex, next)).To(BeFalse())
		})
	})
})
