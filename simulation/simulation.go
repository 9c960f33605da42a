// Package simulation wires a pager run together with the services around it:
// recording, tracing, and monitoring.
package simulation

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/pager"
	"github.com/sarchlab/vmsim/monitoring"
)

// RunSummaryTable is the table that holds one row per recorded run.
const RunSummaryTable = "run_summary"

// RunSummaryEntry is a row of the run summary table.
type RunSummaryEntry struct {
	RunID         string
	Trace         string
	Policy        string
	PageTable     string
	PageSizeKB    uint64
	MemorySizeKB  uint64
	NumFrames     int
	TotalAccesses uint64
	Reads         uint64
	Writes        uint64
	Hits          uint64
	Faults        uint64
	ColdFaults    uint64
	Evictions     uint64
	Writebacks    uint64
	Truncated     bool
}

// progressUpdateInterval is the number of records between two progress bar
// updates.
const progressUpdateInterval = 4096

// A Simulation provides the services around one pager run.
type Simulation struct {
	id         string
	pager      *pager.Pager
	traceFile  *trace.File
	outputFile string

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Pager returns the pager of the run.
func (s *Simulation) Pager() *pager.Pager {
	return s.pager
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// when recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// OutputFile returns the database file of the run, if recording is on.
func (s *Simulation) OutputFile() string {
	return s.outputFile
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Result is the outcome of a run.
type Result struct {
	pager.RunReport

	// Truncated tells that the trace ended at a record that could not be
	// parsed.
	Truncated bool `json:"truncated" msgpack:"truncated"`
}

// Run replays the trace file named by the configuration. The file opened by
// Build is used for the first run; later runs open it again.
func (s *Simulation) Run() (Result, error) {
	f := s.traceFile
	s.traceFile = nil

	if f == nil {
		var err error

		f, err = trace.Open(s.pager.Config().TraceName)
		if err != nil {
			return Result{}, err
		}
	}
	defer f.Close()

	return s.RunReader(f.Reader, f.Size())
}

// RunReader replays an already opened trace. The size, in bytes, drives the
// progress bar and may be zero when unknown.
func (s *Simulation) RunReader(r *trace.Reader, size int64) (Result, error) {
	src := &progressSource{reader: r}

	if s.monitor != nil {
		src.bar = s.monitor.CreateProgressBar(
			s.pager.Config().TraceName, uint64(size))
		defer s.monitor.CompleteProgressBar(src.bar)
	}

	report, err := s.pager.Run(src)
	if err != nil {
		s.discardRecording()
		return Result{}, err
	}

	result := Result{
		RunReport: report,
		Truncated: r.Malformed(),
	}

	s.recordSummary(result)

	return result, nil
}

func (s *Simulation) recordSummary(result Result) {
	if s.dataRecorder == nil {
		return
	}

	c := result.Config
	st := result.Stats

	s.dataRecorder.InsertData(RunSummaryTable, RunSummaryEntry{
		RunID:         s.id,
		Trace:         c.TraceName,
		Policy:        c.Policy,
		PageTable:     string(c.PageTable),
		PageSizeKB:    c.PageSizeKB,
		MemorySizeKB:  c.MemorySizeKB,
		NumFrames:     result.NumFrames,
		TotalAccesses: st.TotalAccesses,
		Reads:         st.Reads,
		Writes:        st.Writes,
		Hits:          st.Hits,
		Faults:        st.Faults,
		ColdFaults:    st.ColdFaults,
		Evictions:     st.Evictions,
		Writebacks:    st.Writebacks,
		Truncated:     result.Truncated,
	})
	s.dataRecorder.Flush()
}

// discardRecording deletes the database of a run that failed, so that no
// partial results are left behind.
func (s *Simulation) discardRecording() {
	if s.dataRecorder == nil {
		return
	}

	s.dataRecorder.Close()
	s.dataRecorder = nil

	if err := os.Remove(s.outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to remove %s: %s\n", s.outputFile, err)
	}

	s.outputFile = ""
}

// Terminate flushes the recording, closes the trace, and stops the
// monitoring server.
func (s *Simulation) Terminate() {
	if s.traceFile != nil {
		s.traceFile.Close()
		s.traceFile = nil
	}

	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}
}

// StripExtension removes the database extension from a file name.
func StripExtension(name string) string {
	return strings.TrimSuffix(name, datarecording.FileExtension)
}

// progressSource feeds the pager and moves the progress bar along.
type progressSource struct {
	reader *trace.Reader
	bar    *monitoring.ProgressBar
}

func (s *progressSource) Next() (vm.Access, bool) {
	access, ok := s.reader.Next()

	if s.bar != nil && (!ok || s.reader.Records()%progressUpdateInterval == 0) {
		s.bar.SetFinished(uint64(s.reader.BytesRead()))
	}

	return access, ok
}

func (s *progressSource) Err() error {
	return s.reader.Err()
}
