package insts

// signExtend sign-extends the low bits bits of v to 32 bits.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// generateImmediate produces the immediate for an instruction word based
// on its opcode family. Branch and jump immediates are byte offsets with
// the low bit forced to zero by the encoding. Shift immediates keep only
// the low five bits as the shift amount.
func generateImmediate(word uint32, opcode uint8) int32 {
	switch opcode {
	case OpcodeOpImm:
		funct3 := (word >> 12) & 0x7
		if funct3 == 1 || funct3 == 5 {
			// SLLI/SRLI/SRAI: shamt is bits [24:20].
			return int32((word >> 20) & 0x1F)
		}
		return signExtend(word>>20, 12)

	case OpcodeLoad, OpcodeLoadFP, OpcodeJALR:
		return signExtend(word>>20, 12)

	case OpcodeStore, OpcodeStoreFP:
		imm := ((word >> 25) << 5) | ((word >> 7) & 0x1F)
		return signExtend(imm, 12)

	case OpcodeBranch:
		// B-type: imm[12|10:5] in bits [31:25], imm[4:1|11] in bits [11:7].
		imm := ((word >> 31) << 12) |
			(((word >> 7) & 0x1) << 11) |
			(((word >> 25) & 0x3F) << 5) |
			(((word >> 8) & 0xF) << 1)
		return signExtend(imm, 13)

	case OpcodeJAL:
		// J-type: imm[20|10:1|11|19:12] in bits [31:12].
		imm := ((word >> 31) << 20) |
			(((word >> 12) & 0xFF) << 12) |
			(((word >> 20) & 0x1) << 11) |
			(((word >> 21) & 0x3FF) << 1)
		return signExtend(imm, 21)

	case OpcodeLUI, OpcodeAUIPC:
		return int32(word & 0xFFFFF000)

	default:
		return 0
	}
}
