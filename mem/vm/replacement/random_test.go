package replacement

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RandomVictimFinder", func() {
	It("should stay within the frame range", func() {
		frames := newSliceFrames(5)
		finder := NewRandomVictimFinder()

		for i := 0; i < 1000; i++ {
			victim := finder.FindVictim(frames)
			Expect(victim).To(BeNumerically(">=", 0))
			Expect(victim).To(BeNumerically("<", 5))
		}
	})

	It("should eventually pick every frame", func() {
		frames := newSliceFrames(4)
		finder := NewRandomVictimFinder()

		seen := map[int]bool{}
		for i := 0; i < 2000; i++ {
			seen[finder.FindVictim(frames)] = true
		}

		Expect(seen).To(HaveLen(4))
	})

	It("should follow an injected generator", func() {
		frames := newSliceFrames(8)
		a := NewRandomVictimFinder().WithRand(rand.New(rand.NewSource(42)))
		b := NewRandomVictimFinder().WithRand(rand.New(rand.NewSource(42)))

		for i := 0; i < 20; i++ {
			Expect(a.FindVictim(frames)).To(Equal(b.FindVictim(frames)))
		}
	})
})
