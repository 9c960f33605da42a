package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FrameTable", func() {
	var frames *FrameTable

	BeforeEach(func() {
		frames = NewFrameTable(4)
	})

	It("should start with every frame free", func() {
		Expect(frames.NumFrames()).To(Equal(4))
		Expect(frames.NumPresent()).To(Equal(0))

		index, ok := frames.FirstFree()
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(0))
	})

	It("should panic without frames", func() {
		Expect(func() { NewFrameTable(0) }).To(Panic())
	})

	It("should load a page", func() {
		frames.Load(1, 0x42, 7, true)

		f := frames.Frame(1)
		Expect(f.Present).To(BeTrue())
		Expect(f.PageNumber).To(Equal(uint64(0x42)))
		Expect(f.LastAccessTime).To(Equal(uint64(7)))
		Expect(f.Modified).To(BeTrue())
		Expect(f.ReferenceBit).To(BeTrue())
		Expect(frames.IsPresent(1)).To(BeTrue())
		Expect(frames.IsPresent(0)).To(BeFalse())
	})

	It("should find the first free frame in index order", func() {
		frames.Load(0, 1, 1, false)
		frames.Load(2, 2, 2, false)

		index, ok := frames.FirstFree()
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(1))
	})

	It("should report no free frame when full", func() {
		for i := 0; i < 4; i++ {
			frames.Load(i, uint64(i), uint64(i+1), false)
		}

		_, ok := frames.FirstFree()
		Expect(ok).To(BeFalse())
	})

	It("should keep the dirty flag on a read hit", func() {
		frames.Load(0, 1, 1, true)
		frames.Touch(0, 5, false)

		f := frames.Frame(0)
		Expect(f.Modified).To(BeTrue())
		Expect(f.LastAccessTime).To(Equal(uint64(5)))
	})

	It("should set the dirty flag on a write hit", func() {
		frames.Load(0, 1, 1, false)
		frames.Touch(0, 2, true)

		Expect(frames.Frame(0).Modified).To(BeTrue())
		Expect(frames.NumDirty()).To(Equal(1))
	})

	It("should set the reference bit on touch", func() {
		frames.Load(0, 1, 1, false)
		frames.ClearReferenceBit(0)
		Expect(frames.ReferenceBit(0)).To(BeFalse())

		frames.Touch(0, 2, false)
		Expect(frames.ReferenceBit(0)).To(BeTrue())
	})

	It("should return the evicted page before it is overwritten", func() {
		frames.Load(3, 0x10, 1, true)

		page, modified := frames.EvictInfo(3)
		Expect(page).To(Equal(uint64(0x10)))
		Expect(modified).To(BeTrue())

		frames.Load(3, 0x11, 2, false)
		page, modified = frames.EvictInfo(3)
		Expect(page).To(Equal(uint64(0x11)))
		Expect(modified).To(BeFalse())
	})

	It("should copy the frames on snapshot", func() {
		frames.Load(1, 0x20, 5, true)

		snapshot := frames.Snapshot()
		frames.Load(1, 0x21, 6, false)

		Expect(snapshot).To(HaveLen(frames.NumFrames()))
		Expect(snapshot[1].PageNumber).To(Equal(uint64(0x20)))
		Expect(snapshot[1].Modified).To(BeTrue())
	})
})
