package predictor

// GShare indexes a 2-bit counter table by the branch PC XORed with a
// global history register of historyBits bits.
type GShare struct {
	table       []uint8
	history     uint32
	historyMask uint32
	stats       Statistics
}

// NewGShare creates a GShare predictor with the given table size and
// global history length.
func NewGShare(tableSize, historyBits int) *GShare {
	return &GShare{
		table:       initialCounters(tableSize),
		historyMask: (1 << historyBits) - 1,
	}
}

func (p *GShare) index(pc uint32) uint32 {
	return ((pc >> 2) ^ (p.history & p.historyMask)) % uint32(len(p.table))
}

// Predict predicts taken iff the counter selected by PC and history is
// 2 or 3.
func (p *GShare) Predict(pc, takenTarget uint32) (bool, uint32) {
	if p.predictTaken(pc) {
		return true, takenTarget
	}
	return false, pc + 4
}

// predictTaken reads the prediction implied by the current state.
func (p *GShare) predictTaken(pc uint32) bool {
	return counterTaken(p.table[p.index(pc)])
}

// Update judges the pre-update prediction, saturates the counter, then
// shifts the actual outcome into the global history.
func (p *GShare) Update(pc, target uint32, actuallyTaken bool) {
	idx := p.index(pc)
	if counterTaken(p.table[idx]) == actuallyTaken {
		p.stats.Correct++
	} else {
		p.stats.Incorrect++
	}
	p.table[idx] = advanceCounter(p.table[idx], actuallyTaken)

	p.history <<= 1
	if actuallyTaken {
		p.history |= 1
	}
	p.history &= p.historyMask
}

// Reset restores counters and history to their initial values and
// zeroes the accuracy counters.
func (p *GShare) Reset() {
	p.table = initialCounters(len(p.table))
	p.history = 0
	p.stats = Statistics{}
}

// Stats returns the accuracy counters.
func (p *GShare) Stats() Statistics {
	return p.stats
}
