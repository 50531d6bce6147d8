// Package insts provides RV32 instruction definitions and decoding.
//
// This package implements decoding of RV32IMF machine code, plus expansion
// of 16-bit compressed (C extension) encodings, into structured instruction
// representations. It supports:
//   - Integer register and immediate arithmetic: ADD, SUB, AND, OR, XOR,
//     SLT(U), shifts, and their immediate forms
//   - Multiply/divide (M extension): MUL, MULH(SU/U), DIV(U), REM(U)
//   - Loads and stores at byte, halfword, and word widths
//   - Control transfer: conditional branches, JAL, JALR
//   - Upper immediates: LUI, AUIPC
//   - Single-precision floating point (F extension) arithmetic, compares,
//     conversions, bit-level moves, and classification
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00700293) // ADDI t0, zero, 7
//	fmt.Printf("Opcode: %#x, Rd: %d, Imm: %d\n", inst.Opcode, inst.Rd, inst.Imm)
package insts
