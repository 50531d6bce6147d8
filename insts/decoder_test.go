package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Register-immediate arithmetic", func() {
		// ADDI x5, x0, 3 -> 0x00300293
		// Encoding: imm12=3, rs1=0, funct3=000, rd=5, opcode=0010011
		It("should decode ADDI x5, x0, 3", func() {
			inst := decoder.Decode(0x00300293)

			Expect(inst.Opcode).To(Equal(insts.OpcodeOpImm))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(3)))
			Expect(inst.ALUOp).To(Equal(insts.ALUOpAdd))
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.ALUSrc).To(BeTrue())
			Expect(inst.MemRead).To(BeFalse())
			Expect(inst.MemWrite).To(BeFalse())
		})

		// ADDI x7, x6, -2 -> 0xFFE30393
		// Encoding: imm12=0xFFE (-2), rs1=6, funct3=000, rd=7
		It("should sign-extend a negative I-type immediate", func() {
			inst := decoder.Decode(0xFFE30393)

			Expect(inst.Rd).To(Equal(uint8(7)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(int32(-2)))
		})

		// SRAI x5, x6, 4 -> 0x40435293
		// Encoding: funct7=0100000, shamt=4, rs1=6, funct3=101, rd=5
		It("should decode SRAI x5, x6, 4", func() {
			inst := decoder.Decode(0x40435293)

			Expect(inst.ALUOp).To(Equal(insts.ALUOpSrai))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.ALUSrc).To(BeTrue())
		})
	})

	Describe("Register-register arithmetic", func() {
		// ADD x6, x5, x5 -> 0x00528333
		// Encoding: funct7=0000000, rs2=5, rs1=5, funct3=000, rd=6
		It("should decode ADD x6, x5, x5", func() {
			inst := decoder.Decode(0x00528333)

			Expect(inst.Opcode).To(Equal(insts.OpcodeOp))
			Expect(inst.ALUOp).To(Equal(insts.ALUOpAdd))
			Expect(inst.Rd).To(Equal(uint8(6)))
			Expect(inst.Rs1).To(Equal(uint8(5)))
			Expect(inst.Rs2).To(Equal(uint8(5)))
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.ALUSrc).To(BeFalse())
		})

		// SUB x5, x6, x7 -> 0x407302B3
		// Encoding: funct7=0100000, rs2=7, rs1=6, funct3=000, rd=5
		It("should decode SUB x5, x6, x7", func() {
			inst := decoder.Decode(0x407302B3)

			Expect(inst.ALUOp).To(Equal(insts.ALUOpSub))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(7)))
			Expect(inst.RegWrite).To(BeTrue())
		})

		// MUL x5, x6, x7 -> 0x027302B3
		// Encoding: funct7=0000001, rs2=7, rs1=6, funct3=000, rd=5
		It("should decode MUL from the M extension", func() {
			inst := decoder.Decode(0x027302B3)

			Expect(inst.ALUOp).To(Equal(insts.ALUOpMul))
			Expect(inst.RegWrite).To(BeTrue())
		})

		// DIV x5, x6, x7 -> 0x027342B3
		// Encoding: funct7=0000001, rs2=7, rs1=6, funct3=100, rd=5
		It("should decode DIV from the M extension", func() {
			inst := decoder.Decode(0x027342B3)

			Expect(inst.ALUOp).To(Equal(insts.ALUOpDiv))
			Expect(inst.RegWrite).To(BeTrue())
		})
	})

	Describe("Loads and stores", func() {
		// LW x5, 8(x1) -> 0x0080A283
		// Encoding: imm12=8, rs1=1, funct3=010, rd=5, opcode=0000011
		It("should decode LW x5, 8(x1)", func() {
			inst := decoder.Decode(0x0080A283)

			Expect(inst.Opcode).To(Equal(insts.OpcodeLoad))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(8)))
			Expect(inst.MemRead).To(BeTrue())
			Expect(inst.MemToReg).To(BeTrue())
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.ALUSrc).To(BeTrue())
			Expect(inst.MemReadType).To(Equal(insts.MemWord))
		})

		// LB x5, 0(x1) -> 0x00008283
		It("should select sign-extending byte access for LB", func() {
			inst := decoder.Decode(0x00008283)

			Expect(inst.MemReadType).To(Equal(insts.MemByte))
			Expect(inst.ALUOp).To(Equal(insts.ALUOpLb))
		})

		// LHU x5, 0(x1) -> 0x0000D283
		It("should select zero-extending halfword access for LHU", func() {
			inst := decoder.Decode(0x0000D283)

			Expect(inst.MemReadType).To(Equal(insts.MemHalfU))
			Expect(inst.ALUOp).To(Equal(insts.ALUOpLhu))
		})

		// SW x5, 12(x1) -> 0x0050A623
		// Encoding: imm[11:5]=0, rs2=5, rs1=1, funct3=010, imm[4:0]=12
		It("should decode SW x5, 12(x1) with the split S-type immediate", func() {
			inst := decoder.Decode(0x0050A623)

			Expect(inst.Opcode).To(Equal(insts.OpcodeStore))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(12)))
			Expect(inst.MemWrite).To(BeTrue())
			Expect(inst.RegWrite).To(BeFalse())
			Expect(inst.MemWriteType).To(Equal(insts.MemWord))
		})
	})

	Describe("Branches", func() {
		// BNE x5, x0, -4 -> 0xFE029EE3
		// Encoding: imm=-4 scattered over B-type fields, rs1=5, rs2=0
		It("should decode BNE with a negative B-type offset", func() {
			inst := decoder.Decode(0xFE029EE3)

			Expect(inst.Opcode).To(Equal(insts.OpcodeBranch))
			Expect(inst.Branch).To(BeTrue())
			Expect(inst.ALUOp).To(Equal(insts.ALUOpBne))
			Expect(inst.Rs1).To(Equal(uint8(5)))
			Expect(inst.Rs2).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(-4)))
			Expect(inst.RegWrite).To(BeFalse())
		})

		// BEQ x1, x2, 16 -> 0x00208863
		It("should decode BEQ with a positive B-type offset", func() {
			inst := decoder.Decode(0x00208863)

			Expect(inst.Branch).To(BeTrue())
			Expect(inst.ALUOp).To(Equal(insts.ALUOpBeq))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(16)))
		})
	})

	Describe("Jumps", func() {
		// JAL x1, +12 -> 0x00C000EF
		// Encoding: imm=12 scattered over J-type fields, rd=1
		It("should decode JAL x1, +12", func() {
			inst := decoder.Decode(0x00C000EF)

			Expect(inst.Opcode).To(Equal(insts.OpcodeJAL))
			Expect(inst.IsJump).To(BeTrue())
			Expect(inst.IsJALR).To(BeFalse())
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(12)))
		})

		// JALR x0, 0(x1) -> 0x00008067
		It("should decode JALR x0, 0(x1)", func() {
			inst := decoder.Decode(0x00008067)

			Expect(inst.IsJump).To(BeTrue())
			Expect(inst.IsJALR).To(BeTrue())
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(0)))
		})
	})

	Describe("Upper immediates", func() {
		// LUI x5, 0x12345 -> 0x123452B7
		It("should decode LUI with a shifted U-type immediate", func() {
			inst := decoder.Decode(0x123452B7)

			Expect(inst.Opcode).To(Equal(insts.OpcodeLUI))
			Expect(inst.UpperImm).To(BeTrue())
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.ALUOp).To(Equal(insts.ALUOpLui))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(0x12345000)))
		})

		// AUIPC x6, 0x1 -> 0x00001317
		It("should decode AUIPC as a PC-relative add", func() {
			inst := decoder.Decode(0x00001317)

			Expect(inst.Opcode).To(Equal(insts.OpcodeAUIPC))
			Expect(inst.UpperImm).To(BeTrue())
			Expect(inst.ALUOp).To(Equal(insts.ALUOpAdd))
			Expect(inst.Rd).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(int32(0x1000)))
		})
	})

	Describe("Floating point", func() {
		// FADD.S f1, f2, f3 -> 0x003100D3
		It("should decode FADD.S with FP sources and destination", func() {
			inst := decoder.Decode(0x003100D3)

			Expect(inst.Opcode).To(Equal(insts.OpcodeOpFP))
			Expect(inst.FPOp).To(Equal(insts.FPAdd))
			Expect(inst.FPRegWrite).To(BeTrue())
			Expect(inst.FPReadRs1).To(BeTrue())
			Expect(inst.FPReadRs2).To(BeTrue())
			Expect(inst.RegWrite).To(BeFalse())
		})

		// FCVT.W.S x5, f1 -> 0xC00082D3
		It("should decode FCVT.W.S into an integer destination", func() {
			inst := decoder.Decode(0xC00082D3)

			Expect(inst.FPOp).To(Equal(insts.FPCvtWS))
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.FPRegWrite).To(BeFalse())
			Expect(inst.FPReadRs1).To(BeTrue())
		})

		// FLW f1, 0(x2) -> 0x00012087
		It("should decode FLW with an integer base register", func() {
			inst := decoder.Decode(0x00012087)

			Expect(inst.Opcode).To(Equal(insts.OpcodeLoadFP))
			Expect(inst.FPRegWrite).To(BeTrue())
			Expect(inst.MemRead).To(BeTrue())
			Expect(inst.MemReadType).To(Equal(insts.MemFloat))
			Expect(inst.FPReadRs1).To(BeFalse())
			Expect(inst.Rs1).To(Equal(uint8(2)))
		})

		// FSW f1, 4(x2) -> 0x00112227
		It("should decode FSW reading rs2 from the FP file", func() {
			inst := decoder.Decode(0x00112227)

			Expect(inst.Opcode).To(Equal(insts.OpcodeStoreFP))
			Expect(inst.MemWrite).To(BeTrue())
			Expect(inst.FPReadRs2).To(BeTrue())
			Expect(inst.MemWriteType).To(Equal(insts.MemFloat))
			Expect(inst.Imm).To(Equal(int32(4)))
		})
	})

	Describe("Undefined encodings", func() {
		It("should decode an all-zero word as a NOP", func() {
			inst := decoder.Decode(0x00000000)

			Expect(inst.IsNOP()).To(BeTrue())
			Expect(inst.ALUOp).To(Equal(insts.ALUOp(0)))
		})

		It("should decode an unknown opcode as a NOP", func() {
			// Opcode 0x73 (SYSTEM) is outside the supported set.
			inst := decoder.Decode(0x00000073)

			Expect(inst.IsNOP()).To(BeTrue())
			Expect(inst.RegWrite).To(BeFalse())
			Expect(inst.MemWrite).To(BeFalse())
		})

		It("should reject a branch with a reserved funct3", func() {
			// Opcode 0x63, funct3=010 has no condition assigned.
			inst := decoder.Decode(0x0020A063)

			Expect(inst.IsNOP()).To(BeTrue())
		})
	})
})
