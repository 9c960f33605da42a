// Package vm provides the models for address translation and physical frame
// bookkeeping used by the pager.
package vm

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidConfiguration is returned when the memory geometry cannot be
// simulated, for example a page size that is not a power of two.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// AddressBits is the width of the virtual address space traces are replayed
// against.
const AddressBits = 32

// AddressMask keeps the bits of an address that fall inside the virtual
// address space.
const AddressMask = 1<<AddressBits - 1

// Log2PageSize returns the number of offset bits of a page of the given size.
func Log2PageSize(pageSizeBytes uint64) (uint64, error) {
	if pageSizeBytes == 0 || pageSizeBytes&(pageSizeBytes-1) != 0 {
		return 0, fmt.Errorf("%w: page size %d is not a power of two",
			ErrInvalidConfiguration, pageSizeBytes)
	}

	return uint64(bits.TrailingZeros64(pageSizeBytes)), nil
}

// PageNumber returns the virtual page that contains the address.
func PageNumber(addr uint64, log2PageSize uint64) uint64 {
	return addr >> log2PageSize
}

// NumFrames returns how many page frames fit in a physical memory of the given
// size. Memory that does not fill a whole page is dropped.
func NumFrames(memorySizeBytes, pageSizeBytes uint64) (int, error) {
	if _, err := Log2PageSize(pageSizeBytes); err != nil {
		return 0, err
	}

	n := memorySizeBytes / pageSizeBytes
	if n == 0 {
		return 0, fmt.Errorf("%w: memory of %d bytes holds no %d-byte page",
			ErrInvalidConfiguration, memorySizeBytes, pageSizeBytes)
	}

	return int(n), nil
}
