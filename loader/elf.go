package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// maxImageBytes bounds the flattened instruction image so a bad
// segment address cannot balloon the allocation.
const maxImageBytes = 1 << 20

// LoadELF reads a little-endian RV32 ELF executable linked at address
// zero and returns its executable segments flattened into an
// instruction image.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}
	if f.Entry != 0 {
		return nil, fmt.Errorf("entry point is %#x, programs must be linked at address zero", f.Entry)
	}

	prog := &Program{}
	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD || phdr.Flags&elf.PF_X == 0 {
			continue
		}

		end := phdr.Vaddr + phdr.Filesz
		if end > maxImageBytes {
			return nil, fmt.Errorf("segment at %#x extends past the %d-byte image limit",
				phdr.Vaddr, maxImageBytes)
		}
		if int(end) > len(prog.bytes) {
			prog.bytes = append(prog.bytes, make([]byte, int(end)-len(prog.bytes))...)
		}

		n, err := phdr.ReadAt(prog.bytes[phdr.Vaddr:end], 0)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read segment at %#x: %w", phdr.Vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return nil, fmt.Errorf("short read for segment at %#x: got %d bytes, expected %d",
				phdr.Vaddr, n, phdr.Filesz)
		}
	}

	if len(prog.bytes) == 0 {
		return nil, fmt.Errorf("no executable segments")
	}
	if len(prog.bytes)%2 != 0 {
		return nil, fmt.Errorf("program has %d bytes, expected a whole number of halfwords",
			len(prog.bytes))
	}
	return prog, nil
}
