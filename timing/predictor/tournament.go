package predictor

// Tournament combines a bimodal and a GShare predictor with a per-PC
// 2-bit selector table. Selector values 0 and 1 prefer bimodal, 2 and 3
// prefer GShare. Selectors start at 1, weakly bimodal.
type Tournament struct {
	bimodal  *Bimodal
	gshare   *GShare
	selector []uint8
	stats    Statistics
}

// NewTournament creates a tournament predictor. tableSize is shared by
// both sub-predictors and the selector table.
func NewTournament(tableSize, historyBits int) *Tournament {
	return &Tournament{
		bimodal:  NewBimodal(tableSize),
		gshare:   NewGShare(tableSize, historyBits),
		selector: initialCounters(tableSize),
	}
}

// usesGShare reports whether the selector currently prefers GShare for
// the branch at pc.
func (p *Tournament) usesGShare(pc uint32) bool {
	return counterTaken(p.selector[tableIndex(pc, len(p.selector))])
}

// Predict queries both sub-predictors without updating them and reports
// the one the selector prefers.
func (p *Tournament) Predict(pc, takenTarget uint32) (bool, uint32) {
	var taken bool
	if p.usesGShare(pc) {
		taken = p.gshare.predictTaken(pc)
	} else {
		taken = p.bimodal.predictTaken(pc)
	}
	if taken {
		return true, takenTarget
	}
	return false, pc + 4
}

// Update judges the used sub-prediction for accuracy, updates both
// sub-predictors, and nudges the selector toward the sub-predictor that
// was right when exactly one of them was.
func (p *Tournament) Update(pc, target uint32, actuallyTaken bool) {
	bimodalPred := p.bimodal.predictTaken(pc)
	gsharePred := p.gshare.predictTaken(pc)

	used := bimodalPred
	if p.usesGShare(pc) {
		used = gsharePred
	}
	if used == actuallyTaken {
		p.stats.Correct++
	} else {
		p.stats.Incorrect++
	}

	p.bimodal.Update(pc, target, actuallyTaken)
	p.gshare.Update(pc, target, actuallyTaken)

	bimodalRight := bimodalPred == actuallyTaken
	gshareRight := gsharePred == actuallyTaken
	if bimodalRight == gshareRight {
		return
	}
	idx := tableIndex(pc, len(p.selector))
	p.selector[idx] = advanceCounter(p.selector[idx], gshareRight)
}

// Reset restores both sub-predictors and the selector table and zeroes
// the accuracy counters.
func (p *Tournament) Reset() {
	p.bimodal.Reset()
	p.gshare.Reset()
	p.selector = initialCounters(len(p.selector))
	p.stats = Statistics{}
}

// Stats returns the accuracy counters for the predictions actually
// used.
func (p *Tournament) Stats() Statistics {
	return p.stats
}
