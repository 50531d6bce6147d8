package predictor

// AlwaysNotTaken predicts every branch as not taken.
type AlwaysNotTaken struct {
	stats Statistics
}

// NewAlwaysNotTaken creates an always-not-taken predictor.
func NewAlwaysNotTaken() *AlwaysNotTaken {
	return &AlwaysNotTaken{}
}

// Predict always predicts not taken.
func (p *AlwaysNotTaken) Predict(pc, takenTarget uint32) (bool, uint32) {
	return false, pc + 4
}

// Update counts the prediction as correct iff the branch was not taken.
func (p *AlwaysNotTaken) Update(pc, target uint32, actuallyTaken bool) {
	if actuallyTaken {
		p.stats.Incorrect++
	} else {
		p.stats.Correct++
	}
}

// Reset zeroes the accuracy counters.
func (p *AlwaysNotTaken) Reset() {
	p.stats = Statistics{}
}

// Stats returns the accuracy counters.
func (p *AlwaysNotTaken) Stats() Statistics {
	return p.stats
}

// AlwaysTaken predicts every branch as taken.
type AlwaysTaken struct {
	stats Statistics
}

// NewAlwaysTaken creates an always-taken predictor.
func NewAlwaysTaken() *AlwaysTaken {
	return &AlwaysTaken{}
}

// Predict always predicts taken.
func (p *AlwaysTaken) Predict(pc, takenTarget uint32) (bool, uint32) {
	return true, takenTarget
}

// Update counts the prediction as correct iff the branch was taken.
func (p *AlwaysTaken) Update(pc, target uint32, actuallyTaken bool) {
	if actuallyTaken {
		p.stats.Correct++
	} else {
		p.stats.Incorrect++
	}
}

// Reset zeroes the accuracy counters.
func (p *AlwaysTaken) Reset() {
	p.stats = Statistics{}
}

// Stats returns the accuracy counters.
func (p *AlwaysTaken) Stats() Statistics {
	return p.stats
}
