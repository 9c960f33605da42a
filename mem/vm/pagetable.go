package vm

import (
	"fmt"
	"math/bits"
)

// A PageTable tells which frame, if any, currently holds a virtual page.
type PageTable interface {
	// Lookup returns the frame that holds the page. The bool return value
	// indicates if the page is resident.
	Lookup(page uint64) (frame int, found bool)

	// Bind records that the page now lives in the frame. The page must not
	// be bound already.
	Bind(page uint64, frame int)

	// Unbind removes the entry of a resident page.
	Unbind(page uint64)

	// Len returns the number of resident pages.
	Len() int
}

// PageTableKind selects how the page table is organized. All kinds give the
// same answers for the same frame occupancy.
type PageTableKind string

// Supported page table organizations.
const (
	SparsePageTable   PageTableKind = "sparse"
	DensePageTable    PageTableKind = "dense"
	TwoLevelPageTable PageTableKind = "2level"
	InvertedPageTable PageTableKind = "inverted"
)

// PageTableKinds lists the supported organizations.
func PageTableKinds() []PageTableKind {
	return []PageTableKind{
		SparsePageTable,
		DensePageTable,
		TwoLevelPageTable,
		InvertedPageTable,
	}
}

// NewPageTable creates an empty page table of the given kind. The inverted
// table is sized by numFrames; the others by the address space.
func NewPageTable(
	kind PageTableKind,
	log2PageSize uint64,
	numFrames int,
) (PageTable, error) {
	if log2PageSize > AddressBits {
		return nil, fmt.Errorf("%w: pages of 2^%d bytes exceed the address space",
			ErrInvalidConfiguration, log2PageSize)
	}

	numPages := uint64(1) << (AddressBits - log2PageSize)

	switch kind {
	case SparsePageTable, "":
		return newSparsePageTable(), nil
	case DensePageTable:
		if numPages > maxDensePages {
			return nil, fmt.Errorf(
				"%w: a dense page table needs pages of at least 1 KB",
				ErrInvalidConfiguration)
		}

		return newDensePageTable(numPages), nil
	case TwoLevelPageTable:
		return newTwoLevelPageTable(numPages), nil
	case InvertedPageTable:
		return newInvertedPageTable(numFrames), nil
	default:
		return nil, fmt.Errorf("%w: unknown page table kind %q",
			ErrInvalidConfiguration, kind)
	}
}

type sparsePageTable struct {
	entries map[uint64]int
}

func newSparsePageTable() *sparsePageTable {
	return &sparsePageTable{entries: make(map[uint64]int)}
}

func (t *sparsePageTable) Lookup(page uint64) (int, bool) {
	frame, found := t.entries[page]
	return frame, found
}

func (t *sparsePageTable) Bind(page uint64, frame int) {
	if _, found := t.entries[page]; found {
		panic("page exist")
	}

	t.entries[page] = frame
}

func (t *sparsePageTable) Unbind(page uint64) {
	if _, found := t.entries[page]; !found {
		panic("page does not exist")
	}

	delete(t.entries, page)
}

func (t *sparsePageTable) Len() int {
	return len(t.entries)
}

const (
	absentFrame   = -1
	maxDensePages = 1 << (AddressBits - 10)
)

// densePageTable keeps one slot per virtual page of the address space.
type densePageTable struct {
	entries []int32
	count   int
}

func newDensePageTable(numPages uint64) *densePageTable {
	t := &densePageTable{entries: make([]int32, numPages)}
	for i := range t.entries {
		t.entries[i] = absentFrame
	}

	return t
}

func (t *densePageTable) Lookup(page uint64) (int, bool) {
	if page >= uint64(len(t.entries)) || t.entries[page] == absentFrame {
		return 0, false
	}

	return int(t.entries[page]), true
}

func (t *densePageTable) Bind(page uint64, frame int) {
	if page >= uint64(len(t.entries)) {
		panic("page outside of the address space")
	}

	if t.entries[page] != absentFrame {
		panic("page exist")
	}

	t.entries[page] = int32(frame)
	t.count++
}

func (t *densePageTable) Unbind(page uint64) {
	if _, found := t.Lookup(page); !found {
		panic("page does not exist")
	}

	t.entries[page] = absentFrame
	t.count--
}

func (t *densePageTable) Len() int {
	return t.count
}

const (
	log2SecondLevelSize = 10
	secondLevelMask     = 1<<log2SecondLevelSize - 1
)

type secondLevelTable struct {
	entries [1 << log2SecondLevelSize]int32
	count   int
}

// twoLevelPageTable splits the page number into a directory index and a
// second-level index. Second-level tables exist only while they hold pages.
type twoLevelPageTable struct {
	directory []*secondLevelTable
	count     int
}

func newTwoLevelPageTable(numPages uint64) *twoLevelPageTable {
	dirSize := numPages >> log2SecondLevelSize
	if dirSize == 0 {
		dirSize = 1
	}

	return &twoLevelPageTable{
		directory: make([]*secondLevelTable, dirSize),
	}
}

func (t *twoLevelPageTable) split(page uint64) (dir uint64, index uint64) {
	return page >> log2SecondLevelSize, page & secondLevelMask
}

func (t *twoLevelPageTable) Lookup(page uint64) (int, bool) {
	dir, index := t.split(page)
	if dir >= uint64(len(t.directory)) || t.directory[dir] == nil {
		return 0, false
	}

	frame := t.directory[dir].entries[index]
	if frame == absentFrame {
		return 0, false
	}

	return int(frame), true
}

func (t *twoLevelPageTable) Bind(page uint64, frame int) {
	dir, index := t.split(page)
	if dir >= uint64(len(t.directory)) {
		panic("page outside of the address space")
	}

	table := t.directory[dir]
	if table == nil {
		table = &secondLevelTable{}
		for i := range table.entries {
			table.entries[i] = absentFrame
		}
		t.directory[dir] = table
	}

	if table.entries[index] != absentFrame {
		panic("page exist")
	}

	table.entries[index] = int32(frame)
	table.count++
	t.count++
}

func (t *twoLevelPageTable) Unbind(page uint64) {
	if _, found := t.Lookup(page); !found {
		panic("page does not exist")
	}

	dir, index := t.split(page)
	table := t.directory[dir]
	table.entries[index] = absentFrame
	table.count--
	t.count--

	if table.count == 0 {
		t.directory[dir] = nil
	}
}

func (t *twoLevelPageTable) Len() int {
	return t.count
}

// invertedPageTable has one entry per frame. A hash anchor table chains the
// frames whose pages hash to the same bucket.
type invertedPageTable struct {
	pages   []uint64
	valid   []bool
	next    []int
	anchors []int
	mask    uint64
	count   int
}

func newInvertedPageTable(numFrames int) *invertedPageTable {
	if numFrames <= 0 {
		panic("inverted page table must have at least one frame")
	}

	numBuckets := 1 << bits.Len(uint(numFrames-1))

	t := &invertedPageTable{
		pages:   make([]uint64, numFrames),
		valid:   make([]bool, numFrames),
		next:    make([]int, numFrames),
		anchors: make([]int, numBuckets),
		mask:    uint64(numBuckets - 1),
	}

	for i := range t.anchors {
		t.anchors[i] = absentFrame
	}

	return t
}

func (t *invertedPageTable) bucket(page uint64) uint64 {
	h := page * 0x9E3779B97F4A7C15
	return (h >> 32) & t.mask
}

func (t *invertedPageTable) Lookup(page uint64) (int, bool) {
	for f := t.anchors[t.bucket(page)]; f != absentFrame; f = t.next[f] {
		if t.pages[f] == page {
			return f, true
		}
	}

	return 0, false
}

func (t *invertedPageTable) Bind(page uint64, frame int) {
	if _, found := t.Lookup(page); found {
		panic("page exist")
	}

	if t.valid[frame] {
		panic("frame already holds a page")
	}

	b := t.bucket(page)
	t.pages[frame] = page
	t.valid[frame] = true
	t.next[frame] = t.anchors[b]
	t.anchors[b] = frame
	t.count++
}

func (t *invertedPageTable) Unbind(page uint64) {
	b := t.bucket(page)

	prev := absentFrame
	for f := t.anchors[b]; f != absentFrame; f = t.next[f] {
		if t.pages[f] != page {
			prev = f
			continue
		}

		if prev == absentFrame {
			t.anchors[b] = t.next[f]
		} else {
			t.next[prev] = t.next[f]
		}

		t.valid[f] = false
		t.next[f] = absentFrame
		t.count--

		return
	}

	panic("page does not exist")
}

func (t *invertedPageTable) Len() int {
	return t.count
}
