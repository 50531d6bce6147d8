package emu

// MemoryDevice is the data-memory capability shared by main memory and
// every cache level. Loads return the little-endian value zero-extended
// to 32 bits, with ok=false on failure. Alignment is enforced by the
// caller, not by the device.
type MemoryDevice interface {
	// Load reads width bytes (width in {1, 2, 4}) at addr.
	Load(addr uint32, width int) (uint32, bool)

	// Store writes the low width bytes of data at addr.
	Store(addr uint32, data uint32, width int) bool
}

// Memory is a flat byte-addressable backing store. An access fails iff
// addr+width exceeds the configured size.
type Memory struct {
	data []byte
}

// NewMemory creates a memory of the given size in bytes.
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Load reads a little-endian value of the given width.
func (m *Memory) Load(addr uint32, width int) (uint32, bool) {
	if int(addr)+width > len(m.data) {
		return 0, false
	}
	var value uint32
	for i := 0; i < width; i++ {
		value |= uint32(m.data[int(addr)+i]) << (8 * i)
	}
	return value, true
}

// Store writes a little-endian value of the given width.
func (m *Memory) Store(addr uint32, data uint32, width int) bool {
	if int(addr)+width > len(m.data) {
		return false
	}
	for i := 0; i < width; i++ {
		m.data[int(addr)+i] = byte(data >> (8 * i))
	}
	return true
}
