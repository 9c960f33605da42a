package pager

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Config describes one simulation run. Sizes are in kilobytes.
type Config struct {
	Policy       string           `json:"policy" msgpack:"policy"`
	TraceName    string           `json:"trace" msgpack:"trace"`
	PageSizeKB   uint64           `json:"page_size_kb" msgpack:"page_size_kb"`
	MemorySizeKB uint64           `json:"memory_size_kb" msgpack:"memory_size_kb"`
	PageTable    vm.PageTableKind `json:"page_table" msgpack:"page_table"`
}

// PageSizeBytes returns the page size in bytes.
func (c Config) PageSizeBytes() uint64 {
	return c.PageSizeKB * 1024
}

// MemorySizeBytes returns the physical memory size in bytes.
func (c Config) MemorySizeBytes() uint64 {
	return c.MemorySizeKB * 1024
}

// NumFrames returns how many frames the physical memory holds.
func (c Config) NumFrames() (int, error) {
	return vm.NumFrames(c.MemorySizeBytes(), c.PageSizeBytes())
}

// Validate checks the geometry, the page table kind, and the policy name.
func (c Config) Validate() error {
	if err := c.validateGeometry(); err != nil {
		return err
	}

	if _, err := replacement.Canonical(c.Policy); err != nil {
		return err
	}

	return nil
}

func (c Config) validateGeometry() error {
	if _, err := vm.Log2PageSize(c.PageSizeKB); err != nil {
		return fmt.Errorf("%w: page size of %d KB is not a power of two",
			vm.ErrInvalidConfiguration, c.PageSizeKB)
	}

	if _, err := c.NumFrames(); err != nil {
		return err
	}

	if c.PageTable != "" && !isKnownPageTable(c.PageTable) {
		return fmt.Errorf("%w: unknown page table kind %q",
			vm.ErrInvalidConfiguration, c.PageTable)
	}

	return nil
}

func isKnownPageTable(kind vm.PageTableKind) bool {
	for _, k := range vm.PageTableKinds() {
		if k == kind {
			return true
		}
	}

	return false
}
