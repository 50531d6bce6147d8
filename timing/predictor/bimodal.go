package predictor

// Bimodal is a table of 2-bit saturating counters indexed by
// (pc >> 2) mod table size. Counters start at 1, weakly not taken.
type Bimodal struct {
	table []uint8
	stats Statistics
}

// NewBimodal creates a bimodal predictor with the given table size.
func NewBimodal(tableSize int) *Bimodal {
	return &Bimodal{table: initialCounters(tableSize)}
}

// Predict predicts taken iff the counter for pc is 2 or 3.
func (p *Bimodal) Predict(pc, takenTarget uint32) (bool, uint32) {
	if p.predictTaken(pc) {
		return true, takenTarget
	}
	return false, pc + 4
}

// predictTaken reads the prediction implied by the current counter.
func (p *Bimodal) predictTaken(pc uint32) bool {
	return counterTaken(p.table[tableIndex(pc, len(p.table))])
}

// Update judges the pre-update prediction, then saturates the counter
// toward the actual outcome.
func (p *Bimodal) Update(pc, target uint32, actuallyTaken bool) {
	idx := tableIndex(pc, len(p.table))
	if counterTaken(p.table[idx]) == actuallyTaken {
		p.stats.Correct++
	} else {
		p.stats.Incorrect++
	}
	p.table[idx] = advanceCounter(p.table[idx], actuallyTaken)
}

// Reset restores all counters to weakly not taken and zeroes the
// accuracy counters.
func (p *Bimodal) Reset() {
	p.table = initialCounters(len(p.table))
	p.stats = Statistics{}
}

// Stats returns the accuracy counters.
func (p *Bimodal) Stats() Statistics {
	return p.stats
}
