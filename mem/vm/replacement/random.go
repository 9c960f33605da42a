package replacement

import (
	"math/rand"
	"sync"
	"time"
)

var (
	processRandLock sync.Mutex
	processRand     = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func processIntn(n int) int {
	processRandLock.Lock()
	defer processRandLock.Unlock()

	return processRand.Intn(n)
}

// RandomVictimFinder evicts a uniformly chosen frame. Unless a generator is
// given, it draws from a process-wide generator seeded once at startup, so
// runs are not reproducible.
type RandomVictimFinder struct {
	rand *rand.Rand
}

// NewRandomVictimFinder returns an evictor that uses the process-wide
// generator.
func NewRandomVictimFinder() *RandomVictimFinder {
	return &RandomVictimFinder{}
}

// WithRand makes the evictor draw from the given generator instead.
func (e *RandomVictimFinder) WithRand(r *rand.Rand) *RandomVictimFinder {
	e.rand = r
	return e
}

// FindVictim returns a random frame index.
func (e *RandomVictimFinder) FindVictim(frames Frames) int {
	if e.rand != nil {
		return e.rand.Intn(frames.NumFrames())
	}

	return processIntn(frames.NumFrames())
}
