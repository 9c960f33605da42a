package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/pager"
)

func get(m *Monitor, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	m.Router().ServeHTTP(rec, req)

	return rec
}

func twoFramePager() *pager.Pager {
	p, err := pager.MakeBuilder().
		WithPolicy("lru").
		WithPageSizeKB(4).
		WithMemorySizeKB(8).
		Build()
	Expect(err).NotTo(HaveOccurred())

	p.Access(0x0000, true)
	p.Access(0x1000, false)
	p.Access(0x2000, false)

	return p
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should refuse reserved ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should list progress bars until they complete", func() {
		bar := m.CreateProgressBar("trace", 100)
		bar.SetFinished(40)
		other := m.CreateProgressBar("other", 10)

		rec := get(m, "/api/progress")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var bars []ProgressBarState
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(2))
		Expect(bars[0].Name).To(Equal("trace"))
		Expect(bars[0].Finished).To(Equal(uint64(40)))
		Expect(bars[0].ID).NotTo(Equal(bars[1].ID))

		m.CompleteProgressBar(other)

		rec = get(m, "/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
	})

	It("should answer 404 when no pager is registered", func() {
		Expect(get(m, "/api/stats").Code).To(Equal(http.StatusNotFound))
		Expect(get(m, "/api/pager").Code).To(Equal(http.StatusNotFound))
	})

	It("should report the counters of the pager", func() {
		m.RegisterPager(twoFramePager())

		rec := get(m, "/api/stats")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp struct {
			NumFrames int         `json:"num_frames"`
			Stats     pager.Stats `json:"stats"`
			HitRatio  float64     `json:"hit_ratio"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.NumFrames).To(Equal(2))
		Expect(rsp.Stats.Faults).To(Equal(uint64(3)))
		Expect(rsp.Stats.Writebacks).To(Equal(uint64(1)))
		Expect(rsp.HitRatio).To(BeZero())
	})

	It("should serialize the pager state", func() {
		m.RegisterPager(twoFramePager())

		rec := get(m, "/api/pager")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should report a single frame", func() {
		m.RegisterPager(twoFramePager())

		rec := get(m, "/api/pager/frame/0")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var frame vm.Frame
		Expect(json.Unmarshal(rec.Body.Bytes(), &frame)).To(Succeed())
		Expect(frame.PageNumber).To(Equal(uint64(2)))
		Expect(frame.Present).To(BeTrue())

		Expect(get(m, "/api/pager/frame/2").Code).
			To(Equal(http.StatusBadRequest))
		Expect(get(m, "/api/pager/frame/x").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should report resource usage", func() {
		rec := get(m, "/api/resource")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should collect a CPU profile", func() {
		m.profileDuration = 10 * time.Millisecond

		rec := get(m, "/api/profile")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("{"))
	})

	It("should serve the web page", func() {
		rec := get(m, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should serve on a random port", func() {
		Expect(m.URL()).To(BeEmpty())
		Expect(m.OpenBrowser()).To(HaveOccurred())

		Expect(m.StartServer()).To(Succeed())
		defer m.StopServer()

		Expect(m.URL()).To(HavePrefix("http://localhost:"))

		rsp, err := http.Get(m.URL() + "/api/progress")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
