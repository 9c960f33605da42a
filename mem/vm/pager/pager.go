// Package pager replays memory traces against a fixed number of page frames
// and counts page faults and dirty-page writebacks.
package pager

import (
	"sync"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Hook positions of the pager.
var (
	// HookPosPageHit is triggered when the referenced page is resident.
	HookPosPageHit = &hooking.HookPos{Name: "PageHit"}

	// HookPosPageFault is triggered after a missing page has been loaded.
	HookPosPageFault = &hooking.HookPos{Name: "PageFault"}

	// HookPosPageEvict is triggered when a resident page is thrown out to
	// make room. It fires before the fault of the same access.
	HookPosPageEvict = &hooking.HookPos{Name: "PageEvict"}
)

// An AccessEvent is the hook item of every pager hook.
type AccessEvent struct {
	Tick    uint64
	Address uint64
	Page    uint64
	Frame   int
	IsWrite bool
}

// FaultDetail is the hook detail of HookPosPageFault.
type FaultDetail struct {
	// Cold is true when the page went to a frame that was never used.
	Cold bool
}

// Eviction is the hook detail of HookPosPageEvict.
type Eviction struct {
	Page  uint64
	Frame int
	Dirty bool
}

// Outcome tells how an access was served.
type Outcome int

// Possible outcomes of an access.
const (
	Hit Outcome = iota
	ColdFault
	EvictingFault
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case ColdFault:
		return "cold fault"
	case EvictingFault:
		return "evicting fault"
	default:
		return "unknown"
	}
}

// An AccessSource yields the accesses of a trace. Err reports why the source
// stopped, if it was not simply exhausted.
type AccessSource interface {
	Next() (vm.Access, bool)
	Err() error
}

// A Pager owns the frames and the page table of one simulation run.
type Pager struct {
	hooking.HookableBase

	config       Config
	log2PageSize uint64
	frames       *vm.FrameTable
	pageTable    vm.PageTable
	victimFinder replacement.VictimFinder

	// lock guards the tick, the frames, the page table, and the counters.
	// Hooks are invoked after it is released.
	lock  sync.Mutex
	tick  uint64
	stats Stats
}

// State is a consistent copy of the pager internals.
type State struct {
	Tick          uint64
	ResidentPages int
	DirtyPages    int
	Frames        []vm.Frame
}

// Config returns the configuration of the run.
func (p *Pager) Config() Config {
	return p.config
}

// Frames returns the frame table. It must not be read while another
// goroutine is running the pager; use Snapshot instead.
func (p *Pager) Frames() *vm.FrameTable {
	return p.frames
}

// PageTable returns the page table.
func (p *Pager) PageTable() vm.PageTable {
	return p.pageTable
}

// VictimFinder returns the replacement policy in use.
func (p *Pager) VictimFinder() replacement.VictimFinder {
	return p.victimFinder
}

// Tick returns the logical time, which equals the number of accesses served.
func (p *Pager) Tick() uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.tick
}

// Stats returns a snapshot of the counters. It is safe to call while another
// goroutine is running the pager.
func (p *Pager) Stats() Stats {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.stats
}

// Snapshot copies the frame table and the logical time.
func (p *Pager) Snapshot() State {
	p.lock.Lock()
	defer p.lock.Unlock()

	return State{
		Tick:          p.tick,
		ResidentPages: p.pageTable.Len(),
		DirtyPages:    p.frames.NumDirty(),
		Frames:        p.frames.Snapshot(),
	}
}

// Report returns the configuration together with the current counters.
func (p *Pager) Report() RunReport {
	return RunReport{
		Config:    p.config,
		NumFrames: p.frames.NumFrames(),
		Stats:     p.Stats(),
	}
}

// Run serves every access of the source.
func (p *Pager) Run(src AccessSource) (RunReport, error) {
	for {
		access, ok := src.Next()
		if !ok {
			break
		}

		p.Access(access.Address, access.IsWrite)
	}

	if err := src.Err(); err != nil {
		return RunReport{}, err
	}

	return p.Report(), nil
}

// served is what one access did to the pager.
type served struct {
	outcome  Outcome
	event    AccessEvent
	evicted  bool
	eviction Eviction
}

// Access serves one memory reference. Addresses wrap around the 32-bit
// virtual address space.
func (p *Pager) Access(addr uint64, isWrite bool) Outcome {
	addr &= vm.AddressMask

	p.lock.Lock()
	s := p.serve(addr, isWrite)
	p.lock.Unlock()

	if s.outcome == Hit {
		p.invoke(HookPosPageHit, s.event, nil)
		return Hit
	}

	if s.evicted {
		p.invoke(HookPosPageEvict, s.event, s.eviction)
	}

	p.invoke(HookPosPageFault, s.event,
		FaultDetail{Cold: s.outcome == ColdFault})

	return s.outcome
}

func (p *Pager) serve(addr uint64, isWrite bool) served {
	p.tick++

	s := served{
		outcome: Hit,
		event: AccessEvent{
			Tick:    p.tick,
			Address: addr,
			Page:    vm.PageNumber(addr, p.log2PageSize),
			IsWrite: isWrite,
		},
	}

	frame, found := p.pageTable.Lookup(s.event.Page)
	if found {
		p.frames.Touch(frame, p.tick, isWrite)
		p.countAccess(isWrite, Hit, false)

		s.event.Frame = frame

		return s
	}

	p.fault(&s)

	return s
}

func (p *Pager) fault(s *served) {
	s.outcome = ColdFault

	target, free := p.frames.FirstFree()
	if !free {
		s.outcome = EvictingFault
		target = p.victimFinder.FindVictim(p.frames)
	}

	s.event.Frame = target

	if p.frames.IsPresent(target) {
		oldPage, modified := p.frames.EvictInfo(target)
		p.pageTable.Unbind(oldPage)

		s.evicted = true
		s.eviction = Eviction{
			Page:  oldPage,
			Frame: target,
			Dirty: modified,
		}
	}

	p.frames.Load(target, s.event.Page, p.tick, s.event.IsWrite)
	p.pageTable.Bind(s.event.Page, target)
	p.countAccess(s.event.IsWrite, s.outcome, s.eviction.Dirty)
}

func (p *Pager) countAccess(isWrite bool, outcome Outcome, writeback bool) {
	p.stats.TotalAccesses++
	if isWrite {
		p.stats.Writes++
	} else {
		p.stats.Reads++
	}

	switch outcome {
	case Hit:
		p.stats.Hits++
	case ColdFault:
		p.stats.Faults++
		p.stats.ColdFaults++
	case EvictingFault:
		p.stats.Faults++
		p.stats.Evictions++
	}

	if writeback {
		p.stats.Writebacks++
	}
}

func (p *Pager) invoke(pos *hooking.HookPos, event AccessEvent, detail any) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   event,
		Detail: detail,
	})
}
