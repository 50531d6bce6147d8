package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/predictor"
	"github.com/sarchlab/rv32sim/timing/trace"
)

// InstructionSource supplies instruction fetch. A loaded program
// implements it over its flat instruction image.
type InstructionSource interface {
	// Read16 returns the halfword at pc, false when pc is outside the
	// image.
	Read16(pc uint32) (uint16, bool)

	// Read32 returns the word at pc, false when any part of it is
	// outside the image.
	Read32(pc uint32) (uint32, bool)

	// MaxPC returns the first address past the instruction image.
	MaxPC() uint32
}

// cacheSampler is satisfied by the data cache; a plain memory device
// does not implement it and cache counters stay zero.
type cacheSampler interface {
	Stats() cache.Statistics
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithPredictor sets the branch predictor. The default is
// always-not-taken.
func WithPredictor(pred predictor.Predictor) Option {
	return func(p *Pipeline) {
		p.predictor = pred
	}
}

// WithRecorder attaches a trace recorder that receives per-cycle
// snapshots and the access, change, and dependency logs.
func WithRecorder(rec *trace.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = rec
	}
}

// WithDebug enables per-cycle debug output on w.
func WithDebug(w io.Writer) Option {
	return func(p *Pipeline) {
		p.debug = w
	}
}

// Pipeline is the in-order 5-stage pipeline. Each Tick advances one
// cycle, running the stages in reverse order so that every latch is
// consumed before it is overwritten.
type Pipeline struct {
	program InstructionSource
	dataMem emu.MemoryDevice
	cache   cacheSampler

	decoder   *insts.Decoder
	regFile   *emu.RegFile
	alu       *emu.ALU
	fpu       *emu.FPU
	hazard    *HazardUnit
	predictor predictor.Predictor
	recorder  *trace.Recorder
	debug     io.Writer
	errOut    io.Writer

	pc    uint32
	cycle uint64

	ifid  IFIDLatch
	idex  IDEXLatch
	exmem EXMEMLatch
	memwb MEMWBLatch

	// Start-of-cycle snapshots used for forwarding.
	exmemPrev EXMEMLatch
	memwbPrev MEMWBLatch

	stallFlag bool
	flushFlag bool

	// Per-cycle bookkeeping for the trace snapshot.
	stalledThisCycle bool
	flushedThisCycle bool

	// prevCacheHits is the hit-counter sample before the most recent
	// data access, for per-access hit attribution.
	prevCacheHits uint64

	stats trace.Statistics
}

// New creates a pipeline fetching from program and accessing data
// through dataMem, which may be a cache or a bare memory.
func New(program InstructionSource, dataMem emu.MemoryDevice, opts ...Option) *Pipeline {
	p := &Pipeline{
		program:   program,
		dataMem:   dataMem,
		decoder:   insts.NewDecoder(),
		regFile:   emu.NewRegFile(),
		alu:       emu.NewALU(),
		fpu:       emu.NewFPU(),
		hazard:    NewHazardUnit(),
		predictor: predictor.NewAlwaysNotTaken(),
		errOut:    os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	if sampler, ok := dataMem.(cacheSampler); ok {
		p.cache = sampler
	}
	return p
}

// RegFile exposes the architectural integer and floating-point
// registers.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// PC returns the current fetch program counter.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// Cycle returns the number of cycles simulated so far.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Done reports whether the program is fully drained: fetch has passed
// the end of the instruction image and no instruction remains in
// flight.
func (p *Pipeline) Done() bool {
	return p.pc >= p.program.MaxPC() &&
		!p.ifid.Valid && !p.idex.Valid && !p.exmem.Valid && !p.memwb.Valid
}

// Run ticks the pipeline until the program drains or maxCycles elapse.
// It returns the number of cycles simulated.
func (p *Pipeline) Run(maxCycles uint64) uint64 {
	start := p.cycle
	for !p.Done() && p.cycle-start < maxCycles {
		p.Tick()
	}
	return p.cycle - start
}

// Tick advances the pipeline by one cycle. Stages run writeback first
// and fetch last; forwarding reads the EX/MEM and MEM/WB latches as
// they stood at the start of the cycle.
func (p *Pipeline) Tick() {
	p.exmemPrev = p.exmem
	p.memwbPrev = p.memwb
	p.stalledThisCycle = p.stallFlag
	p.flushedThisCycle = false

	p.writeback()
	p.memory()
	p.execute()
	p.decode()
	p.fetch()

	if p.stallFlag && !(p.idex.Valid && p.idex.Inst.MemRead) {
		p.stallFlag = false
	}

	p.stats.Cycles++
	p.cycle++
	p.captureSnapshot()

	if p.debug != nil {
		p.writeDebug()
	}
}

// fetch reads the next instruction into IF/ID. It holds during a
// load-use stall. A redirect from decode or execute has already
// updated the PC by the time fetch runs.
func (p *Pipeline) fetch() {
	if p.flushFlag {
		// Decode redirected this cycle; squash the fetch and pick up
		// the new target next cycle.
		p.flushFlag = false
		p.ifid.Clear()
		return
	}
	if p.stallFlag {
		return
	}
	if p.pc >= p.program.MaxPC() {
		p.ifid.Clear()
		return
	}

	half, ok := p.program.Read16(p.pc)
	if !ok {
		p.ifid.Clear()
		return
	}

	if insts.IsCompressed(half) {
		expanded := p.decoder.Expand(half)
		pc := p.pc
		p.pc += 2
		if expanded == insts.ExpandedNone {
			// Reserved or unsupported compressed encoding: skip it.
			p.ifid.Clear()
			return
		}
		p.ifid = IFIDLatch{
			Valid:           true,
			PC:              pc,
			InstructionWord: expanded,
			IsCompressed:    true,
			CompressedRaw:   half,
		}
		return
	}

	word, ok := p.program.Read32(p.pc)
	if !ok {
		p.ifid.Clear()
		p.pc += 4
		return
	}
	pc := p.pc
	p.pc += 4
	if word == 0 {
		p.ifid.Clear()
		return
	}
	p.ifid = IFIDLatch{Valid: true, PC: pc, InstructionWord: word}
}

// decode decodes IF/ID into ID/EX, reading register operands, checking
// the load-use hazard against the instruction that just entered EX, and
// querying the branch predictor.
func (p *Pipeline) decode() {
	if p.flushFlag {
		// Execute redirected this cycle; everything younger is wrong
		// path.
		p.flushFlag = false
		p.ifid.Clear()
		p.idex.Clear()
		return
	}
	if !p.ifid.Valid {
		p.idex.Clear()
		return
	}

	inst := p.decoder.Decode(p.ifid.InstructionWord)
	inst.IsCompressed = p.ifid.IsCompressed
	inst.CompressedRaw = p.ifid.CompressedRaw

	if p.hazard.DetectLoadUseHazard(&p.idex, inst) {
		p.stallFlag = true
		p.stalledThisCycle = true
		p.stats.StallCycles++
		p.idex.Clear()
		return
	}

	p.tallyInstruction(inst)

	pc := p.ifid.PC
	latch := IDEXLatch{Valid: true, PC: pc, Inst: inst}
	if inst.FPReadRs1 {
		latch.FPRs1Value = p.regFile.ReadFP(inst.Rs1)
	} else {
		latch.Rs1Value = p.regFile.Read(inst.Rs1)
	}
	if inst.FPReadRs2 {
		latch.FPRs2Value = p.regFile.ReadFP(inst.Rs2)
	} else {
		latch.Rs2Value = p.regFile.Read(inst.Rs2)
	}

	if p.recorder != nil {
		rs1, rs2 := uint8(0), uint8(0)
		if inst.UsesIntRs1() {
			rs1 = inst.Rs1
		}
		if inst.UsesIntRs2() {
			rs2 = inst.Rs2
		}
		if rs1 != 0 || rs2 != 0 {
			p.recorder.RecordDependencies(pc, rs1, rs2, p.cycle)
		}
	}

	if inst.Branch {
		takenTarget := pc + uint32(inst.Imm)
		predTaken, predTarget := p.predictor.Predict(pc, takenTarget)
		latch.PredictedTaken = predTaken
		latch.PredictedTarget = predTarget
		if predTaken {
			// Fetch consumes the flush this cycle and resumes from the
			// predicted target next cycle.
			p.redirect(predTarget)
		}
	}

	p.idex = latch
}

// tallyInstruction counts the decoded instruction by class.
func (p *Pipeline) tallyInstruction(inst *insts.Instruction) {
	switch {
	case inst.Opcode == insts.OpcodeOp:
		p.stats.RType++
	case inst.Opcode == insts.OpcodeOpImm:
		p.stats.IType++
	case inst.MemRead:
		p.stats.Loads++
	case inst.MemWrite:
		p.stats.Stores++
	case inst.Branch:
		p.stats.Branches++
	case inst.IsJump:
		p.stats.Jumps++
	case inst.UpperImm:
		p.stats.UpperImms++
	}
}

// instructionSize returns the fetch width of the instruction in bytes.
func instructionSize(inst *insts.Instruction) uint32 {
	if inst.IsCompressed {
		return 2
	}
	return 4
}

// execute runs the instruction in ID/EX through the ALU or FPU,
// resolves branches and jumps, and writes EX/MEM.
func (p *Pipeline) execute() {
	if !p.idex.Valid {
		p.exmem.Clear()
		return
	}

	inst := p.idex.Inst
	pc := p.idex.PC
	fwd := p.hazard.DetectForwarding(&p.idex, &p.exmemPrev, &p.memwbPrev)

	rs1Value := p.hazard.ForwardedValue(fwd.ForwardRs1, p.idex.Rs1Value, &p.exmemPrev, &p.memwbPrev)
	rs2Value := p.hazard.ForwardedValue(fwd.ForwardRs2, p.idex.Rs2Value, &p.exmemPrev, &p.memwbPrev)
	fpRs1Value := p.hazard.ForwardedFPValue(fwd.ForwardFPRs1, p.idex.FPRs1Value, &p.exmemPrev, &p.memwbPrev)
	fpRs2Value := p.hazard.ForwardedFPValue(fwd.ForwardFPRs2, p.idex.FPRs2Value, &p.exmemPrev, &p.memwbPrev)

	latch := EXMEMLatch{Valid: true, PC: pc, Inst: inst}

	switch {
	case inst.FPOp != insts.FPNone:
		a := fpRs1Value
		if !inst.FPReadRs1 {
			// Conversions from and moves of integer values read rs1
			// from the integer file.
			a = rs1Value
		}
		result := p.fpu.Execute(a, fpRs2Value, inst.FPOp)
		if inst.FPRegWrite {
			latch.FPResult = result
		} else {
			latch.ALUResult = result
		}

	case inst.IsJump:
		target := pc + uint32(inst.Imm)
		if inst.IsJALR {
			target = (rs1Value + uint32(inst.Imm)) &^ 1
		}
		latch.ALUResult = pc + instructionSize(inst)
		p.redirect(target)

	case inst.Branch:
		_, taken := p.alu.Execute(rs1Value, rs2Value, inst.ALUOp)
		takenTarget := pc + uint32(inst.Imm)
		actualTarget := pc + instructionSize(inst)
		if taken {
			actualTarget = takenTarget
			p.stats.BranchesTaken++
		} else {
			p.stats.BranchesNotTaken++
		}

		mispredicted := taken != p.idex.PredictedTaken ||
			(taken && actualTarget != p.idex.PredictedTarget)
		p.predictor.Update(pc, takenTarget, taken)
		if mispredicted {
			p.stats.Mispredictions++
			p.redirect(actualTarget)
		}

	default:
		a := rs1Value
		if inst.UpperImm {
			// LUI ignores the first operand; AUIPC adds the PC.
			a = pc
		}
		b := rs2Value
		if inst.ALUSrc || inst.UpperImm {
			b = uint32(inst.Imm)
		}
		result, _ := p.alu.Execute(a, b, inst.ALUOp)
		latch.ALUResult = result
	}

	if inst.MemWrite {
		if inst.MemWriteType == insts.MemFloat {
			latch.FPStoreValue = fpRs2Value
		} else {
			latch.StoreValue = rs2Value
		}
	}

	p.exmem = latch
}

// redirect steers fetch to target and flushes the younger stages.
func (p *Pipeline) redirect(target uint32) {
	p.pc = target
	p.flushFlag = true
	p.flushedThisCycle = true
	p.stats.FlushCycles++
}

// memory performs the data access for the instruction in EX/MEM and
// writes MEM/WB.
func (p *Pipeline) memory() {
	if !p.exmem.Valid {
		p.memwb.Clear()
		return
	}

	inst := p.exmem.Inst
	latch := MEMWBLatch{
		Valid:     true,
		PC:        p.exmem.PC,
		Inst:      inst,
		ALUResult: p.exmem.ALUResult,
		FPResult:  p.exmem.FPResult,
	}

	switch {
	case inst.MemRead:
		addr := p.exmem.ALUResult
		width := inst.MemReadType.Width()
		value := uint32(0)
		hit := false
		if addr%uint32(width) != 0 {
			fmt.Fprintf(p.errOut, "misaligned load of width %d at %#x (pc %#x)\n",
				width, addr, p.exmem.PC)
		} else {
			raw, ok := p.dataMem.Load(addr, width)
			hit = p.accessHit()
			if ok {
				value = extendLoad(raw, inst.MemReadType)
			} else {
				fmt.Fprintf(p.errOut, "load of width %d at %#x failed (pc %#x)\n",
					width, addr, p.exmem.PC)
			}
		}
		if inst.MemReadType == insts.MemFloat {
			latch.MemFPData = value
		} else {
			latch.MemData = value
		}
		p.stats.MemoryReads++
		p.recordAccess(addr, width, false, value, hit)

	case inst.MemWrite:
		addr := p.exmem.ALUResult
		width := inst.MemWriteType.Width()
		value := p.exmem.StoreValue
		if inst.MemWriteType == insts.MemFloat {
			value = p.exmem.FPStoreValue
		}
		hit := false
		if addr%uint32(width) != 0 {
			fmt.Fprintf(p.errOut, "misaligned store of width %d at %#x (pc %#x)\n",
				width, addr, p.exmem.PC)
		} else {
			ok := p.dataMem.Store(addr, value, width)
			hit = p.accessHit()
			if !ok {
				fmt.Fprintf(p.errOut, "store of width %d at %#x failed (pc %#x)\n",
					width, addr, p.exmem.PC)
			}
		}
		p.stats.MemoryWrites++
		p.recordAccess(addr, width, true, value, hit)
	}

	p.memwb = latch
}

// accessHit reports whether the access that just completed hit in the
// cache, by comparing the hit counter against the previous sample.
func (p *Pipeline) accessHit() bool {
	if p.cache == nil {
		return false
	}
	hits := p.cache.Stats().Hits
	hit := hits > p.prevCacheHits
	p.prevCacheHits = hits
	return hit
}

// extendLoad applies the sign or zero extension the load type calls
// for.
func extendLoad(raw uint32, t insts.MemAccess) uint32 {
	switch t {
	case insts.MemByte:
		return uint32(int32(int8(raw)))
	case insts.MemHalf:
		return uint32(int32(int16(raw)))
	default:
		return raw
	}
}

// recordAccess appends one memory access to the trace recorder.
func (p *Pipeline) recordAccess(addr uint32, width int, isWrite bool, value uint32, hit bool) {
	if p.recorder == nil {
		return
	}
	p.recorder.RecordMemoryAccess(trace.MemoryAccess{
		Cycle:    p.cycle,
		Addr:     addr,
		Width:    width,
		IsWrite:  isWrite,
		Value:    value,
		CacheHit: hit,
	})
}

// writeback retires the instruction in MEM/WB into the register files.
func (p *Pipeline) writeback() {
	if !p.memwb.Valid {
		return
	}

	inst := p.memwb.Inst
	if inst.RegWrite && inst.Rd != 0 {
		old := p.regFile.Read(inst.Rd)
		value := p.memwb.WritebackValue()
		p.regFile.Write(inst.Rd, value)
		if p.recorder != nil {
			p.recorder.RecordRegisterChange(trace.RegisterChange{
				Cycle: p.cycle,
				Reg:   inst.Rd,
				Old:   old,
				New:   value,
				PC:    p.memwb.PC,
			})
			p.recorder.RecordRetirement(p.memwb.PC, inst.Rd, p.cycle)
		}
	}
	if inst.FPRegWrite && inst.Rd != 0 {
		p.regFile.WriteFP(inst.Rd, p.memwb.FPWritebackValue())
	}
	p.stats.Retired++
}

// Stats returns the run statistics with the cache counters sampled from
// the data-memory device.
func (p *Pipeline) Stats() trace.Statistics {
	stats := p.stats
	if p.cache != nil {
		cs := p.cache.Stats()
		stats.CacheHits = cs.Hits
		stats.CacheMisses = cs.Misses
	}
	return stats
}

// Reset returns the pipeline to its initial state. The program and
// data-memory bindings are kept; register file, predictor, and
// statistics are cleared.
func (p *Pipeline) Reset() {
	p.pc = 0
	p.cycle = 0
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.exmemPrev.Clear()
	p.memwbPrev.Clear()
	p.stallFlag = false
	p.flushFlag = false
	p.stats = trace.Statistics{}
	p.prevCacheHits = 0
	p.regFile.Reset()
	p.predictor.Reset()
	if p.recorder != nil {
		p.recorder.Clear()
	}
}

// captureSnapshot publishes the end-of-cycle latch contents to the
// trace recorder.
func (p *Pipeline) captureSnapshot() {
	if p.recorder == nil {
		return
	}
	snap := trace.CycleSnapshot{
		Cycle: p.cycle - 1,
		Stall: p.stalledThisCycle,
		Flush: p.flushedThisCycle,
	}
	if p.ifid.Valid {
		inst := p.decoder.Decode(p.ifid.InstructionWord)
		inst.IsCompressed = p.ifid.IsCompressed
		inst.CompressedRaw = p.ifid.CompressedRaw
		snap.IFID = trace.StageSnapshot{
			Valid:       true,
			PC:          p.ifid.PC,
			Disassembly: inst.Disassemble(),
		}
	}
	if p.idex.Valid {
		snap.IDEX = trace.StageSnapshot{
			Valid:       true,
			PC:          p.idex.PC,
			Disassembly: p.idex.Inst.Disassemble(),
		}
	}
	if p.exmem.Valid {
		snap.EXMEM = trace.StageSnapshot{
			Valid:       true,
			PC:          p.exmem.PC,
			Disassembly: p.exmem.Inst.Disassemble(),
			Datum:       p.exmem.ALUResult,
		}
	}
	if p.memwb.Valid {
		datum := p.memwb.WritebackValue()
		if p.memwb.Inst.FPRegWrite {
			datum = p.memwb.FPWritebackValue()
		}
		snap.MEMWB = trace.StageSnapshot{
			Valid:       true,
			PC:          p.memwb.PC,
			Disassembly: p.memwb.Inst.Disassemble(),
			Datum:       datum,
		}
	}
	p.recorder.AppendSnapshot(snap)
}

// writeDebug prints a one-line cycle summary to the debug writer.
func (p *Pipeline) writeDebug() {
	flags := ""
	if p.stalledThisCycle {
		flags += " stall"
	}
	if p.flushedThisCycle {
		flags += " flush"
	}
	stage := func(valid bool, pc uint32) string {
		if !valid {
			return "-"
		}
		return fmt.Sprintf("%#x", pc)
	}
	fmt.Fprintf(p.debug, "cycle %d pc=%#x if/id=%s id/ex=%s ex/mem=%s mem/wb=%s%s\n",
		p.cycle-1, p.pc,
		stage(p.ifid.Valid, p.ifid.PC),
		stage(p.idex.Valid, p.idex.PC),
		stage(p.exmem.Valid, p.exmem.PC),
		stage(p.memwb.Valid, p.memwb.PC),
		flags)
}
