package trace

import (
	"fmt"
	"io"
)

// DefaultDependencyWindow is the cycle window within which RAW
// dependencies are reported.
const DefaultDependencyWindow = 10

// StageSnapshot captures the observable state of one pipeline latch at
// the end of a cycle.
type StageSnapshot struct {
	Valid bool
	PC    uint32
	// Disassembly is the rendered instruction, empty when invalid.
	Disassembly string
	// Datum is the ALU result or writeback value where meaningful.
	Datum uint32
}

// CycleSnapshot is the per-cycle pipeline snapshot published to the
// trace and to any viewer.
type CycleSnapshot struct {
	Cycle uint64
	Stall bool
	Flush bool

	IFID  StageSnapshot
	IDEX  StageSnapshot
	EXMEM StageSnapshot
	MEMWB StageSnapshot
}

// MemoryAccess records one data-memory access issued by the MEM stage.
type MemoryAccess struct {
	Cycle    uint64
	Addr     uint32
	Width    int
	IsWrite  bool
	Value    uint32
	CacheHit bool
}

// RegisterChange records one integer register write at writeback.
type RegisterChange struct {
	Cycle uint64
	Reg   uint8
	Old   uint32
	New   uint32
	// PC is the instruction that produced the value.
	PC uint32
}

// Dependency records a read-after-write dependency observed at decode.
type Dependency struct {
	Reg           uint8
	ProducerPC    uint32
	ConsumerPC    uint32
	ProducerCycle uint64
	ConsumerCycle uint64
}

// retirement remembers a recently retired register writer for
// dependency matching.
type retirement struct {
	pc    uint32
	rd    uint8
	cycle uint64
}

// Recorder accumulates the per-cycle snapshots and the access, change,
// and dependency logs. Records grow monotonically until Clear.
type Recorder struct {
	window uint64

	snapshots   []CycleSnapshot
	memAccesses []MemoryAccess
	regChanges  []RegisterChange
	deps        []Dependency

	recent []retirement
}

// NewRecorder creates a recorder with the given RAW dependency window
// in cycles. A window of 0 uses DefaultDependencyWindow.
func NewRecorder(window int) *Recorder {
	if window <= 0 {
		window = DefaultDependencyWindow
	}
	return &Recorder{window: uint64(window)}
}

// AppendSnapshot appends the end-of-cycle pipeline snapshot.
func (r *Recorder) AppendSnapshot(snap CycleSnapshot) {
	r.snapshots = append(r.snapshots, snap)
}

// RecordMemoryAccess appends one memory access record.
func (r *Recorder) RecordMemoryAccess(access MemoryAccess) {
	r.memAccesses = append(r.memAccesses, access)
}

// RecordRegisterChange appends one register change record.
func (r *Recorder) RecordRegisterChange(change RegisterChange) {
	r.regChanges = append(r.regChanges, change)
}

// RecordRetirement notes that the instruction at pc wrote register rd
// in the given cycle, for later dependency matching.
func (r *Recorder) RecordRetirement(pc uint32, rd uint8, cycle uint64) {
	if rd == 0 {
		return
	}
	r.recent = append(r.recent, retirement{pc: pc, rd: rd, cycle: cycle})
	r.prune(cycle)
}

// RecordDependencies reports RAW dependencies for the instruction at pc
// decoding in the given cycle with sources rs1 and rs2. Producers
// outside the window are ignored.
func (r *Recorder) RecordDependencies(pc uint32, rs1, rs2 uint8, cycle uint64) {
	r.prune(cycle)
	for _, ret := range r.recent {
		if ret.rd != rs1 && ret.rd != rs2 {
			continue
		}
		r.deps = append(r.deps, Dependency{
			Reg:           ret.rd,
			ProducerPC:    ret.pc,
			ConsumerPC:    pc,
			ProducerCycle: ret.cycle,
			ConsumerCycle: cycle,
		})
	}
}

func (r *Recorder) prune(cycle uint64) {
	cutoff := uint64(0)
	if cycle > r.window {
		cutoff = cycle - r.window
	}
	keep := r.recent[:0]
	for _, ret := range r.recent {
		if ret.cycle >= cutoff {
			keep = append(keep, ret)
		}
	}
	r.recent = keep
}

// Snapshots returns the per-cycle pipeline snapshots.
func (r *Recorder) Snapshots() []CycleSnapshot {
	return r.snapshots
}

// MemoryAccesses returns the memory access log.
func (r *Recorder) MemoryAccesses() []MemoryAccess {
	return r.memAccesses
}

// RegisterChanges returns the register change log.
func (r *Recorder) RegisterChanges() []RegisterChange {
	return r.regChanges
}

// Dependencies returns the RAW dependency records.
func (r *Recorder) Dependencies() []Dependency {
	return r.deps
}

// Clear discards all recorded data.
func (r *Recorder) Clear() {
	r.snapshots = nil
	r.memAccesses = nil
	r.regChanges = nil
	r.deps = nil
	r.recent = nil
}

// WriteLog renders the per-cycle pipeline snapshots as a text log.
func (r *Recorder) WriteLog(w io.Writer) error {
	for _, snap := range r.snapshots {
		flags := ""
		if snap.Stall {
			flags += " [stall]"
		}
		if snap.Flush {
			flags += " [flush]"
		}
		if _, err := fmt.Fprintf(w, "cycle %d%s\n", snap.Cycle, flags); err != nil {
			return err
		}
		stages := [4]struct {
			name string
			snap StageSnapshot
		}{
			{"IF/ID", snap.IFID},
			{"ID/EX", snap.IDEX},
			{"EX/MEM", snap.EXMEM},
			{"MEM/WB", snap.MEMWB},
		}
		for _, stage := range stages {
			var err error
			if stage.snap.Valid {
				_, err = fmt.Fprintf(w, "  %-7s pc=0x%08x  %s\n",
					stage.name, stage.snap.PC, stage.snap.Disassembly)
			} else {
				_, err = fmt.Fprintf(w, "  %-7s -\n", stage.name)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
