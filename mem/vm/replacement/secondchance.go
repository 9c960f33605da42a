package replacement

// SecondChanceVictimFinder implements the clock algorithm. A frame with its
// reference bit set is spared once: the bit is cleared and the hand moves on.
type SecondChanceVictimFinder struct {
	hand      int
	lastSteps int
}

// NewSecondChanceVictimFinder returns a clock evictor with the hand at
// frame 0.
func NewSecondChanceVictimFinder() *SecondChanceVictimFinder {
	return &SecondChanceVictimFinder{}
}

// FindVictim sweeps from the hand until it meets a frame whose reference bit
// is clear. The hand stops right after the victim.
func (e *SecondChanceVictimFinder) FindVictim(frames Frames) int {
	n := frames.NumFrames()
	e.lastSteps = 0

	for {
		e.lastSteps++

		current := e.hand
		e.hand = (e.hand + 1) % n

		if !frames.ReferenceBit(current) {
			return current
		}

		frames.ClearReferenceBit(current)

		if e.lastSteps > 2*n {
			panic("clock sweep did not terminate")
		}
	}
}

// Hand returns the frame the next sweep starts from.
func (e *SecondChanceVictimFinder) Hand() int {
	return e.hand
}

// LastSteps returns how many frames the last sweep examined.
func (e *SecondChanceVictimFinder) LastSteps() int {
	return e.lastSteps
}
