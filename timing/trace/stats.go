// Package trace provides run statistics and the append-only trace
// recorder: per-cycle pipeline snapshots, the memory-access log, the
// register-change log, and RAW dependency records.
package trace

// Statistics aggregates counters across a simulation run.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Retired is the number of instructions that completed writeback.
	Retired uint64

	// StallCycles counts load-use bubbles inserted at decode.
	StallCycles uint64
	// FlushCycles counts redirects that flushed the younger stages.
	FlushCycles uint64

	// Instruction counts by type, tallied at decode.
	RType     uint64
	IType     uint64
	Loads     uint64
	Stores    uint64
	Branches  uint64
	Jumps     uint64
	UpperImms uint64

	// Conditional branch outcomes, judged against the actual result.
	BranchesTaken    uint64
	BranchesNotTaken uint64
	// Mispredictions counts branches whose predicted outcome or target
	// disagreed with the resolved one.
	Mispredictions uint64

	// Cache counters sampled from the data-memory device.
	CacheHits   uint64
	CacheMisses uint64

	// Memory accesses issued by the MEM stage.
	MemoryReads  uint64
	MemoryWrites uint64
}

// CPI returns cycles per retired instruction.
func (s Statistics) CPI() float64 {
	if s.Retired == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Retired)
}

// CacheHitRate returns hits/(hits+misses), or 0 when no accesses
// occurred.
func (s Statistics) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// Utilization returns retired instructions per cycle.
func (s Statistics) Utilization() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Retired) / float64(s.Cycles)
}
