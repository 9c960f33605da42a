package trace

import (
	"log"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem/vm/pager"
)

// Table names used by the DB tracer.
const (
	PageFaultTable    = "page_faults"
	PageEvictionTable = "page_evictions"
)

// PageFaultEntry is a row of the page fault table.
type PageFaultEntry struct {
	RunID   string
	Tick    uint64
	Address uint64
	Page    uint64
	Frame   int
	IsWrite bool
	Cold    bool
}

// PageEvictionEntry is a row of the page eviction table.
type PageEvictionEntry struct {
	RunID string
	Tick  uint64
	Page  uint64
	Frame int
	Dirty bool
}

// A tracer is a hook that writes the faults and evictions of a pager into a
// log.
type tracer struct {
	logger *log.Logger
}

// NewLogTracer creates a tracer that logs one line per fault and per eviction.
func NewLogTracer(logger *log.Logger) hooking.Hook {
	t := new(tracer)
	t.logger = logger

	return t
}

// Func logs the event if it is a fault or an eviction.
func (t *tracer) Func(ctx hooking.HookCtx) {
	event, ok := ctx.Item.(pager.AccessEvent)
	if !ok {
		return
	}

	switch ctx.Pos {
	case pager.HookPosPageFault:
		op := "R"
		if event.IsWrite {
			op = "W"
		}

		t.logger.Printf("fault, %d, 0x%x, %s, %d, %d\n",
			event.Tick, event.Address, op, event.Page, event.Frame)
	case pager.HookPosPageEvict:
		eviction := ctx.Detail.(pager.Eviction)

		t.logger.Printf("evict, %d, %d, %d, %t\n",
			event.Tick, eviction.Page, eviction.Frame, eviction.Dirty)
	}
}

// A dbTracer is a hook that records the faults and evictions of a pager into
// a database using the data recorder.
type dbTracer struct {
	runID        string
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a tracer that records into the given recorder. Rows
// are tagged with runID.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	runID string,
) hooking.Hook {
	t := &dbTracer{
		runID:        runID,
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(PageFaultTable, PageFaultEntry{})
	t.dataRecorder.CreateTable(PageEvictionTable, PageEvictionEntry{})

	return t
}

// Func records the event if it is a fault or an eviction.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	event, ok := ctx.Item.(pager.AccessEvent)
	if !ok {
		return
	}

	switch ctx.Pos {
	case pager.HookPosPageFault:
		detail, _ := ctx.Detail.(pager.FaultDetail)

		t.dataRecorder.InsertData(PageFaultTable, PageFaultEntry{
			RunID:   t.runID,
			Tick:    event.Tick,
			Address: event.Address,
			Page:    event.Page,
			Frame:   event.Frame,
			IsWrite: event.IsWrite,
			Cold:    detail.Cold,
		})
	case pager.HookPosPageEvict:
		eviction := ctx.Detail.(pager.Eviction)

		t.dataRecorder.InsertData(PageEvictionTable, PageEvictionEntry{
			RunID: t.runID,
			Tick:  event.Tick,
			Page:  eviction.Page,
			Frame: eviction.Frame,
			Dirty: eviction.Dirty,
		})
	}
}
