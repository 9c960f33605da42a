package vm

// A Frame is a slot of physical memory that can hold one page.
type Frame struct {
	PageNumber     uint64
	LastAccessTime uint64
	Modified       bool
	Present        bool
	ReferenceBit   bool
}

// A FrameTable holds all the frames of the simulated physical memory.
type FrameTable struct {
	frames []Frame
}

// NewFrameTable creates a FrameTable with numFrames empty frames.
func NewFrameTable(numFrames int) *FrameTable {
	if numFrames <= 0 {
		panic("frame table must have at least one frame")
	}

	return &FrameTable{
		frames: make([]Frame, numFrames),
	}
}

// NumFrames returns the capacity of the table.
func (t *FrameTable) NumFrames() int {
	return len(t.frames)
}

// Frame returns a copy of the frame at the given index.
func (t *FrameTable) Frame(index int) Frame {
	return t.frames[index]
}

// IsPresent tells if the frame holds a page.
func (t *FrameTable) IsPresent(index int) bool {
	return t.frames[index].Present
}

// FirstFree returns the lowest-index frame that has never been used.
func (t *FrameTable) FirstFree() (int, bool) {
	for i := range t.frames {
		if !t.frames[i].Present {
			return i, true
		}
	}

	return 0, false
}

// Load places a page into the frame, replacing whatever was there.
func (t *FrameTable) Load(index int, page uint64, time uint64, isWrite bool) {
	t.frames[index] = Frame{
		PageNumber:     page,
		LastAccessTime: time,
		Modified:       isWrite,
		Present:        true,
		ReferenceBit:   true,
	}
}

// Touch records a hit on the frame.
func (t *FrameTable) Touch(index int, time uint64, isWrite bool) {
	f := &t.frames[index]
	f.LastAccessTime = time
	f.ReferenceBit = true
	f.Modified = f.Modified || isWrite
}

// EvictInfo returns the resident page and whether it has to be written back.
func (t *FrameTable) EvictInfo(index int) (page uint64, modified bool) {
	f := t.frames[index]
	return f.PageNumber, f.Modified
}

// LastAccessTime returns the tick of the latest access to the frame.
func (t *FrameTable) LastAccessTime(index int) uint64 {
	return t.frames[index].LastAccessTime
}

// ReferenceBit returns the reference bit of the frame.
func (t *FrameTable) ReferenceBit(index int) bool {
	return t.frames[index].ReferenceBit
}

// ClearReferenceBit gives the frame its second chance.
func (t *FrameTable) ClearReferenceBit(index int) {
	t.frames[index].ReferenceBit = false
}

// NumPresent counts the frames that hold a page.
func (t *FrameTable) NumPresent() int {
	n := 0
	for i := range t.frames {
		if t.frames[i].Present {
			n++
		}
	}

	return n
}

// NumDirty counts the resident pages that were written since they were
// loaded.
func (t *FrameTable) NumDirty() int {
	n := 0
	for i := range t.frames {
		if t.frames[i].Present && t.frames[i].Modified {
			n++
		}
	}

	return n
}

// Snapshot returns a copy of all the frames.
func (t *FrameTable) Snapshot() []Frame {
	frames := make([]Frame, len(t.frames))
	copy(frames, t.frames)

	return frames
}
