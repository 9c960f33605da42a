package pager

import (
	"math/rand"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// A Builder can build a Pager.
type Builder struct {
	config       Config
	victimFinder replacement.VictimFinder
	rand         *rand.Rand
	hooks        []hooking.Hook
}

// MakeBuilder creates a builder with 4 KB pages, 16 KB of memory, LRU
// replacement, and a sparse page table.
func MakeBuilder() Builder {
	return Builder{
		config: Config{
			Policy:       replacement.LRU,
			PageSizeKB:   4,
			MemorySizeKB: 16,
			PageTable:    vm.SparsePageTable,
		},
	}
}

// WithConfig replaces the whole configuration.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// WithPolicy sets the replacement policy by name.
func (b Builder) WithPolicy(name string) Builder {
	b.config.Policy = name
	return b
}

// WithTraceName sets the name of the trace, which is only echoed in reports.
func (b Builder) WithTraceName(name string) Builder {
	b.config.TraceName = name
	return b
}

// WithPageSizeKB sets the page size. It must be a power of two.
func (b Builder) WithPageSizeKB(kb uint64) Builder {
	b.config.PageSizeKB = kb
	return b
}

// WithMemorySizeKB sets the size of the physical memory.
func (b Builder) WithMemorySizeKB(kb uint64) Builder {
	b.config.MemorySizeKB = kb
	return b
}

// WithPageTable sets how the page table is organized.
func (b Builder) WithPageTable(kind vm.PageTableKind) Builder {
	b.config.PageTable = kind
	return b
}

// WithVictimFinder overrides the replacement policy named in the
// configuration.
func (b Builder) WithVictimFinder(f replacement.VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// WithRand makes the random policy draw from the given generator instead of
// the process-wide one.
func (b Builder) WithRand(r *rand.Rand) Builder {
	b.rand = r
	return b
}

// WithHook registers a hook on the pager once it is built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Build validates the configuration and returns a pager with empty frames.
func (b Builder) Build() (*Pager, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	numFrames, _ := b.config.NumFrames()
	log2PageSize, _ := vm.Log2PageSize(b.config.PageSizeBytes())

	pageTable, err := vm.NewPageTable(
		b.config.PageTable, log2PageSize, numFrames)
	if err != nil {
		return nil, err
	}

	victimFinder, err := b.buildVictimFinder()
	if err != nil {
		return nil, err
	}

	p := &Pager{
		config:       b.config,
		log2PageSize: log2PageSize,
		frames:       vm.NewFrameTable(numFrames),
		pageTable:    pageTable,
		victimFinder: victimFinder,
	}

	if p.config.PageTable == "" {
		p.config.PageTable = vm.SparsePageTable
	}

	for _, hook := range b.hooks {
		p.AcceptHook(hook)
	}

	return p, nil
}

func (b Builder) validate() error {
	if b.victimFinder != nil {
		return b.config.validateGeometry()
	}

	return b.config.Validate()
}

func (b Builder) buildVictimFinder() (replacement.VictimFinder, error) {
	if b.victimFinder != nil {
		return b.victimFinder, nil
	}

	f, err := replacement.ByName(b.config.Policy)
	if err != nil {
		return nil, err
	}

	if r, ok := f.(*replacement.RandomVictimFinder); ok && b.rand != nil {
		r.WithRand(b.rand)
	}

	return f, nil
}
