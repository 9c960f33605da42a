package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("LRUVictimFinder", func() {
	var (
		frames *sliceFrames
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		frames = newSliceFrames(4)
		finder = NewLRUVictimFinder()
	})

	It("should pick the oldest frame", func() {
		frames.frames[0].lastAccess = 9
		frames.frames[1].lastAccess = 4
		frames.frames[2].lastAccess = 2
		frames.frames[3].lastAccess = 7

		Expect(finder.FindVictim(frames)).To(Equal(2))
	})

	It("should break ties with the lowest index", func() {
		frames.frames[0].lastAccess = 5
		frames.frames[1].lastAccess = 3
		frames.frames[2].lastAccess = 8
		frames.frames[3].lastAccess = 3

		Expect(finder.FindVictim(frames)).To(Equal(1))
	})

	It("should pick frame 0 when nothing was accessed", func() {
		Expect(finder.FindVictim(frames)).To(Equal(0))
	})
})

var _ = Describe("FIFOVictimFinder", func() {
	It("should visit frames in round-robin order", func() {
		frames := newSliceFrames(3)
		finder := NewFIFOVictimFinder()

		var order []int
		for i := 0; i < 7; i++ {
			order = append(order, finder.FindVictim(frames))
		}

		Expect(order).To(Equal([]int{0, 1, 2, 0, 1, 2, 0}))
		Expect(finder.Cursor()).To(Equal(1))
	})

	It("should ignore access history", func() {
		frames := newSliceFrames(2)
		finder := NewFIFOVictimFinder()
		frames.frames[0].lastAccess = 100

		Expect(finder.FindVictim(frames)).To(Equal(0))
	})
})

var _ = Describe("SecondChanceVictimFinder", func() {
	var (
		mockCtrl *gomock.Controller
		finder   *SecondChanceVictimFinder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		finder = NewSecondChanceVictimFinder()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pick the frame under the hand if its bit is clear", func() {
		frames := newSliceFrames(3)

		Expect(finder.FindVictim(frames)).To(Equal(0))
		Expect(finder.Hand()).To(Equal(1))
		Expect(finder.LastSteps()).To(Equal(1))
	})

	It("should spare referenced frames once", func() {
		frames := newSliceFrames(3)
		frames.frames[0].refBit = true
		frames.frames[1].refBit = true

		Expect(finder.FindVictim(frames)).To(Equal(2))
		Expect(frames.cleared).To(Equal([]int{0, 1}))
		Expect(finder.Hand()).To(Equal(0))
	})

	It("should wrap around when every bit is set", func() {
		frames := newSliceFrames(4)
		for i := range frames.frames {
			frames.frames[i].refBit = true
		}

		Expect(finder.FindVictim(frames)).To(Equal(0))
		Expect(finder.LastSteps()).To(BeNumerically("<=", 2*4))
		Expect(finder.Hand()).To(Equal(1))
	})

	It("should clear the bit through the frame view", func() {
		frames := NewMockFrames(mockCtrl)
		frames.EXPECT().NumFrames().Return(2).AnyTimes()
		gomock.InOrder(
			frames.EXPECT().ReferenceBit(0).Return(true),
			frames.EXPECT().ClearReferenceBit(0),
			frames.EXPECT().ReferenceBit(1).Return(false),
		)

		Expect(finder.FindVictim(frames)).To(Equal(1))
	})

	It("should finish every sweep within two rounds", func() {
		frames := newSliceFrames(5)
		for round := 0; round < 50; round++ {
			for i := range frames.frames {
				frames.frames[i].refBit = (round+i)%3 != 0
			}

			finder.FindVictim(frames)
			Expect(finder.LastSteps()).To(BeNumerically("<=", 2*5))
		}
	})
})

var _ = Describe("ByName", func() {
	DescribeTable("known names",
		func(name string, sample VictimFinder) {
			finder, err := ByName(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(finder).To(BeAssignableToTypeOf(sample))
		},
		Entry("lru", "lru", &LRUVictimFinder{}),
		Entry("fifo", "fifo", &FIFOVictimFinder{}),
		Entry("rand", "rand", &RandomVictimFinder{}),
		Entry("random", "random", &RandomVictimFinder{}),
		Entry("2a", "2a", &SecondChanceVictimFinder{}),
		Entry("second-chance", "second-chance", &SecondChanceVictimFinder{}),
		Entry("clock", "clock", &SecondChanceVictimFinder{}),
	)

	It("should reject unknown names", func() {
		_, err := ByName("optimal")
		Expect(err).To(MatchError(ErrUnknownPolicy))
	})

	It("should give every run its own state", func() {
		a, _ := ByName("fifo")
		b, _ := ByName("fifo")
		frames := newSliceFrames(2)

		a.FindVictim(frames)
		Expect(b.FindVictim(frames)).To(Equal(0))
	})
})
