// Package cache provides the data-cache family using Akita cache
// components for tag and replacement bookkeeping. All variants are
// write-through with write-allocate and implement emu.MemoryDevice, so
// a cache layers transparently over main memory or another cache.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rv32sim/emu"
)

// Kind selects the cache organization.
type Kind string

// Cache organizations.
const (
	KindDirectMapped     Kind = "direct-mapped"
	KindFullyAssociative Kind = "fully-associative"
	KindSetAssociative   Kind = "set-associative"
)

// Config holds cache configuration parameters.
type Config struct {
	// Kind is the cache organization.
	Kind Kind `json:"kind"`
	// TotalSize in bytes. Must be a power of two.
	TotalSize int `json:"total_size"`
	// LineSize in bytes. Must be a power of two.
	LineSize int `json:"line_size"`
	// Ways is the associativity for set-associative caches.
	Ways int `json:"ways"`
}

// DefaultConfig returns a small 4-way set-associative configuration.
func DefaultConfig() Config {
	return Config{
		Kind:      KindSetAssociative,
		TotalSize: 1024,
		LineSize:  32,
		Ways:      4,
	}
}

// DefaultDirectMappedConfig returns a direct-mapped configuration.
func DefaultDirectMappedConfig() Config {
	return Config{
		Kind:      KindDirectMapped,
		TotalSize: 256,
		LineSize:  32,
	}
}

// Statistics holds cache access counters. The counters reflect access
// attempts: they are updated before the lower device reports success or
// failure.
type Statistics struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns hits/(hits+misses), or 0 when no accesses occurred.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a write-through, write-allocate cache over a lower memory
// device. The Akita cache directory owns the tag and LRU state; the
// cache owns the data bytes and the fill policy.
type Cache struct {
	config  Config
	numSets int
	ways    int

	directory *akitacache.DirectoryImpl

	// Data storage, indexed by setID*ways + wayID.
	dataStore [][]byte

	lower emu.MemoryDevice
	stats Statistics
}

// New creates a cache with the given configuration over the lower
// device. TotalSize, LineSize, and the derived set count must be powers
// of two.
func New(config Config, lower emu.MemoryDevice) (*Cache, error) {
	if !isPowerOfTwo(config.TotalSize) || !isPowerOfTwo(config.LineSize) {
		return nil, fmt.Errorf(
			"cache: total size %d and line size %d must be powers of two",
			config.TotalSize, config.LineSize)
	}

	numLines := config.TotalSize / config.LineSize
	var numSets, ways int
	switch config.Kind {
	case KindDirectMapped:
		numSets, ways = numLines, 1
	case KindFullyAssociative:
		numSets, ways = 1, numLines
	case KindSetAssociative:
		if config.Ways <= 0 || numLines%config.Ways != 0 {
			return nil, fmt.Errorf("cache: invalid associativity %d", config.Ways)
		}
		numSets, ways = numLines/config.Ways, config.Ways
	default:
		return nil, fmt.Errorf("cache: unknown kind %q", config.Kind)
	}
	if !isPowerOfTwo(numSets) {
		return nil, fmt.Errorf("cache: set count %d must be a power of two", numSets)
	}

	dataStore := make([][]byte, numLines)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.LineSize)
	}

	return &Cache{
		config:  config,
		numSets: numSets,
		ways:    ways,
		directory: akitacache.NewDirectory(
			numSets,
			ways,
			config.LineSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		lower:     lower,
	}, nil
}

// NewDirectMapped creates a direct-mapped cache.
func NewDirectMapped(totalSize, lineSize int, lower emu.MemoryDevice) (*Cache, error) {
	return New(Config{
		Kind:      KindDirectMapped,
		TotalSize: totalSize,
		LineSize:  lineSize,
	}, lower)
}

// NewFullyAssociative creates a fully associative cache with LRU
// replacement.
func NewFullyAssociative(totalSize, lineSize int, lower emu.MemoryDevice) (*Cache, error) {
	return New(Config{
		Kind:      KindFullyAssociative,
		TotalSize: totalSize,
		LineSize:  lineSize,
	}, lower)
}

// NewSetAssociative creates a k-way set-associative cache with per-set
// LRU replacement.
func NewSetAssociative(totalSize, lineSize, ways int, lower emu.MemoryDevice) (*Cache, error) {
	return New(Config{
		Kind:      KindSetAssociative,
		TotalSize: totalSize,
		LineSize:  lineSize,
		Ways:      ways,
	}, lower)
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the access counters.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.ways + block.WayID
}

func (c *Cache) lineBase(addr uint32) uint32 {
	return addr &^ uint32(c.config.LineSize-1)
}

// Load implements emu.MemoryDevice. On a miss the whole line is filled
// from the lower device one word at a time in ascending address order;
// if any word fails, the line is not installed and the load fails.
func (c *Cache) Load(addr uint32, width int) (uint32, bool) {
	lineBase := c.lineBase(addr)
	offset := addr - lineBase

	block := c.directory.Lookup(0, uint64(lineBase))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return extractData(c.dataStore[c.blockIndex(block)], offset, width), true
	}

	c.stats.Misses++
	block, ok := c.fillLine(lineBase)
	if !ok {
		return 0, false
	}
	return extractData(c.dataStore[c.blockIndex(block)], offset, width), true
}

// Store implements emu.MemoryDevice. Write-allocate: a miss fills the
// line first. The line's bytes are updated, then the store always
// writes through to the lower device with the original width; the
// store's success is the lower device's success.
func (c *Cache) Store(addr uint32, data uint32, width int) bool {
	lineBase := c.lineBase(addr)
	offset := addr - lineBase

	block := c.directory.Lookup(0, uint64(lineBase))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
	} else {
		c.stats.Misses++
		var ok bool
		block, ok = c.fillLine(lineBase)
		if !ok {
			return false
		}
	}

	storeData(c.dataStore[c.blockIndex(block)], offset, width, data)
	return c.lower.Store(addr, data, width)
}

// fillLine fetches a whole line from the lower device and installs it.
// The victim's data is overwritten only after every word load succeeds.
func (c *Cache) fillLine(lineBase uint32) (*akitacache.Block, bool) {
	lineData := make([]byte, c.config.LineSize)
	for off := 0; off < c.config.LineSize; off += 4 {
		word, ok := c.lower.Load(lineBase+uint32(off), 4)
		if !ok {
			return nil, false
		}
		storeData(lineData, uint32(off), 4, word)
	}

	victim := c.directory.FindVictim(uint64(lineBase))
	if victim == nil {
		return nil, false
	}
	copy(c.dataStore[c.blockIndex(victim)], lineData)
	victim.Tag = uint64(lineBase)
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)
	return victim, true
}

// Reset invalidates all lines and zeroes the counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// extractData extracts a little-endian value from a line buffer.
func extractData(data []byte, offset uint32, size int) uint32 {
	var result uint32
	for i := 0; i < size; i++ {
		result |= uint32(data[int(offset)+i]) << (i * 8)
	}
	return result
}

// storeData stores a little-endian value into a line buffer.
func storeData(data []byte, offset uint32, size int, value uint32) {
	for i := 0; i < size; i++ {
		data[int(offset)+i] = byte(value >> (i * 8))
	}
}
