package vm

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	for _, kind := range PageTableKinds() {
		kind := kind

		Context(string(kind), func() {
			var table PageTable

			BeforeEach(func() {
				var err error
				table, err = NewPageTable(kind, 12, 8)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should not find a page that was never bound", func() {
				_, found := table.Lookup(5)
				Expect(found).To(BeFalse())
				Expect(table.Len()).To(Equal(0))
			})

			It("should find a bound page", func() {
				table.Bind(5, 3)

				frame, found := table.Lookup(5)
				Expect(found).To(BeTrue())
				Expect(frame).To(Equal(3))
				Expect(table.Len()).To(Equal(1))
			})

			It("should forget an unbound page", func() {
				table.Bind(5, 3)
				table.Unbind(5)

				_, found := table.Lookup(5)
				Expect(found).To(BeFalse())
				Expect(table.Len()).To(Equal(0))
			})

			It("should rebind a frame to a new page", func() {
				table.Bind(5, 3)
				table.Unbind(5)
				table.Bind(0xfffff, 3)

				frame, found := table.Lookup(0xfffff)
				Expect(found).To(BeTrue())
				Expect(frame).To(Equal(3))
			})

			It("should panic when binding a page twice", func() {
				table.Bind(5, 3)
				Expect(func() { table.Bind(5, 4) }).To(Panic())
			})

			It("should panic when unbinding an absent page", func() {
				Expect(func() { table.Unbind(5) }).To(Panic())
			})

			It("should keep pages that share a second-level table apart", func() {
				table.Bind(0x400, 0)
				table.Bind(0x401, 1)
				table.Unbind(0x400)

				frame, found := table.Lookup(0x401)
				Expect(found).To(BeTrue())
				Expect(frame).To(Equal(1))
			})
		})
	}

	It("should agree with the sparse table on random operations", func() {
		const numFrames = 16

		rng := rand.New(rand.NewSource(1))
		tables := map[PageTableKind]PageTable{}
		for _, kind := range PageTableKinds() {
			t, err := NewPageTable(kind, 12, numFrames)
			Expect(err).NotTo(HaveOccurred())
			tables[kind] = t
		}

		resident := make([]int64, numFrames)
		for i := range resident {
			resident[i] = -1
		}

		for step := 0; step < 5000; step++ {
			page := uint64(rng.Intn(64))
			frame := rng.Intn(numFrames)

			_, found := tables[SparsePageTable].Lookup(page)
			if !found {
				for _, t := range tables {
					if resident[frame] >= 0 {
						t.Unbind(uint64(resident[frame]))
					}
					t.Bind(page, frame)
				}
				resident[frame] = int64(page)
			}

			for p := uint64(0); p < 64; p++ {
				wantFrame, wantFound := tables[SparsePageTable].Lookup(p)
				for kind, t := range tables {
					gotFrame, gotFound := t.Lookup(p)
					Expect(gotFound).To(Equal(wantFound), string(kind))
					if wantFound {
						Expect(gotFrame).To(Equal(wantFrame), string(kind))
					}
				}
			}
		}
	})

	It("should reject unknown kinds", func() {
		_, err := NewPageTable("hashed", 12, 4)
		Expect(err).To(MatchError(ErrInvalidConfiguration))
	})

	It("should refuse a dense table for tiny pages", func() {
		_, err := NewPageTable(DensePageTable, 4, 4)
		Expect(err).To(MatchError(ErrInvalidConfiguration))
	})

	It("should default to the sparse table", func() {
		table, err := NewPageTable("", 12, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(table).To(BeAssignableToTypeOf(&sparsePageTable{}))
	})
})
