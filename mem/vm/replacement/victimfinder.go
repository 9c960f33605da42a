// Package replacement provides the policies that choose which frame to evict
// when physical memory is full.
package replacement

import (
	"errors"
	"fmt"
)

// ErrUnknownPolicy is returned when no replacement policy has the requested
// name.
var ErrUnknownPolicy = errors.New("unknown replacement policy")

// Frames is the view of the frame table a VictimFinder works on.
type Frames interface {
	NumFrames() int
	LastAccessTime(index int) uint64
	ReferenceBit(index int) bool
	ClearReferenceBit(index int)
}

// A VictimFinder decides which frame should be evicted. It is only called
// when every frame holds a page.
type VictimFinder interface {
	FindVictim(frames Frames) int
}

// Canonical policy names.
const (
	LRU          = "lru"
	FIFO         = "fifo"
	Random       = "rand"
	SecondChance = "2a"
)

var aliases = map[string]string{
	LRU:             LRU,
	FIFO:            FIFO,
	Random:          Random,
	"random":        Random,
	SecondChance:    SecondChance,
	"second-chance": SecondChance,
	"clock":         SecondChance,
}

// Names returns the canonical names of all the policies.
func Names() []string {
	return []string{LRU, FIFO, Random, SecondChance}
}

// Canonical resolves an alias to the canonical policy name.
func Canonical(name string) (string, error) {
	canonical, ok := aliases[name]
	if !ok {
		return "", fmt.Errorf("%w: %q (want one of %v)",
			ErrUnknownPolicy, name, Names())
	}

	return canonical, nil
}

// ByName creates a fresh victim finder for the named policy.
func ByName(name string) (VictimFinder, error) {
	canonical, err := Canonical(name)
	if err != nil {
		return nil, err
	}

	switch canonical {
	case LRU:
		return NewLRUVictimFinder(), nil
	case FIFO:
		return NewFIFOVictimFinder(), nil
	case Random:
		return NewRandomVictimFinder(), nil
	default:
		return NewSecondChanceVictimFinder(), nil
	}
}

// LRUVictimFinder evicts the least recently used frame.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the frame with the oldest access. Ties go to the lowest
// index.
func (e *LRUVictimFinder) FindVictim(frames Frames) int {
	victim := 0
	for i := 1; i < frames.NumFrames(); i++ {
		if frames.LastAccessTime(i) < frames.LastAccessTime(victim) {
			victim = i
		}
	}

	return victim
}

// FIFOVictimFinder evicts frames in round-robin order, regardless of how they
// were accessed.
type FIFOVictimFinder struct {
	cursor int
}

// NewFIFOVictimFinder returns a FIFO evictor starting at frame 0.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the frame under the cursor and advances it.
func (e *FIFOVictimFinder) FindVictim(frames Frames) int {
	victim := e.cursor
	e.cursor = (e.cursor + 1) % frames.NumFrames()

	return victim
}

// Cursor returns the frame the next eviction will pick.
func (e *FIFOVictimFinder) Cursor() int {
	return e.cursor
}
