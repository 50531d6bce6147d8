// Package predictor provides the branch predictor family for the
// timing simulation: static always-taken / always-not-taken predictors,
// a 2-bit bimodal predictor, GShare, and a tournament hybrid.
package predictor

import "fmt"

// Kind selects a predictor variant.
type Kind string

// Predictor variants.
const (
	KindAlwaysNotTaken Kind = "always-not-taken"
	KindAlwaysTaken    Kind = "always-taken"
	KindBimodal        Kind = "bimodal"
	KindGShare         Kind = "gshare"
	KindTournament     Kind = "tournament"
)

// Config holds branch predictor configuration parameters.
type Config struct {
	// Kind is the predictor variant.
	Kind Kind `json:"kind"`
	// TableSize is the number of 2-bit counters (and selector entries).
	TableSize int `json:"table_size"`
	// HistoryBits is the global history length for GShare.
	HistoryBits int `json:"history_bits"`
}

// DefaultConfig returns a 256-entry GShare configuration with 8 bits of
// global history.
func DefaultConfig() Config {
	return Config{
		Kind:        KindGShare,
		TableSize:   256,
		HistoryBits: 8,
	}
}

// Statistics holds prediction accuracy counters.
type Statistics struct {
	Correct   uint64
	Incorrect uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Statistics) Accuracy() float64 {
	total := s.Correct + s.Incorrect
	if total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(total) * 100.0
}

// Predictor is the branch prediction capability consulted at decode and
// trained at execute.
type Predictor interface {
	// Predict returns whether the branch at pc is predicted taken and
	// the predicted next PC: takenTarget when taken, pc+4 otherwise.
	// Predict does not advance predictor state.
	Predict(pc, takenTarget uint32) (bool, uint32)

	// Update first judges the prediction implied by the current state
	// against the actual outcome for the accuracy counters, then
	// advances the internal state.
	Update(pc, target uint32, actuallyTaken bool)

	// Reset restores initial state and zeroes the accuracy counters.
	Reset()

	// Stats returns the accuracy counters.
	Stats() Statistics
}

// New creates a predictor for the given configuration.
func New(config Config) (Predictor, error) {
	switch config.Kind {
	case KindAlwaysNotTaken:
		return NewAlwaysNotTaken(), nil
	case KindAlwaysTaken:
		return NewAlwaysTaken(), nil
	case KindBimodal:
		return NewBimodal(config.TableSize), nil
	case KindGShare:
		return NewGShare(config.TableSize, config.HistoryBits), nil
	case KindTournament:
		return NewTournament(config.TableSize, config.HistoryBits), nil
	default:
		return nil, fmt.Errorf("predictor: unknown kind %q", config.Kind)
	}
}

// tableIndex maps a branch PC to a counter table slot.
func tableIndex(pc uint32, size int) uint32 {
	return (pc >> 2) % uint32(size)
}

// counterTaken reports the taken prediction of a 2-bit counter.
func counterTaken(counter uint8) bool {
	return counter >= 2
}

// advanceCounter saturates a 2-bit counter toward the outcome.
func advanceCounter(counter uint8, taken bool) uint8 {
	if taken {
		if counter < 3 {
			return counter + 1
		}
		return counter
	}
	if counter > 0 {
		return counter - 1
	}
	return counter
}

// initialCounters allocates a counter table initialized to 1, the
// weakly-not-taken state.
func initialCounters(size int) []uint8 {
	table := make([]uint8, size)
	for i := range table {
		table[i] = 1
	}
	return table
}
