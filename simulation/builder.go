package simulation

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm/pager"
	"github.com/sarchlab/vmsim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	config         pager.Config
	recordOn       bool
	outputFileName string
	traceLogger    *log.Logger
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
}

// MakeBuilder creates a new builder. Recording and monitoring are off by
// default.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the run to simulate.
func (b Builder) WithConfig(config pager.Config) Builder {
	b.config = config
	return b
}

// WithRecording records the faults, the evictions, and a run summary into a
// SQLite database.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It turns recording on.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordOn = true
	b.outputFileName = filename

	return b
}

// WithTraceLogger logs every fault and eviction into the logger.
func (b Builder) WithTraceLogger(logger *log.Logger) Builder {
	b.traceLogger = logger
	return b
}

// WithMonitoring starts the monitoring server when the simulation is built.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() error {
	if !b.monitorOn && b.monitorPort != 0 {
		return errors.New("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		return errors.New("browser cannot be opened when monitoring is disabled")
	}

	return nil
}

// Build builds the simulation and opens the trace named by the
// configuration. Nothing is created on disk or on the network when the
// configuration is invalid or the trace cannot be opened.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	p, err := pager.MakeBuilder().WithConfig(b.config).Build()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:    xid.New().String(),
		pager: p,
	}

	if b.config.TraceName != "" {
		f, err := trace.Open(b.config.TraceName)
		if err != nil {
			return nil, err
		}

		s.traceFile = f
	}

	if b.recordOn {
		if err := b.startRecording(s); err != nil {
			s.Terminate()
			return nil, err
		}

		p.AcceptHook(trace.NewDBTracer(s.dataRecorder, s.id))
	}

	if b.traceLogger != nil {
		p.AcceptHook(trace.NewLogTracer(b.traceLogger))
	}

	if b.monitorOn {
		if err := b.startMonitoring(s); err != nil {
			s.discardRecording()
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) startRecording(s *Simulation) error {
	name := b.outputFileName
	if name == "" {
		name = "vmsim_run_" + s.id
	}

	file := StripExtension(name) + datarecording.FileExtension
	if _, err := os.Stat(file); err == nil {
		return fmt.Errorf("file %s already exists", file)
	}

	s.outputFile = file
	s.dataRecorder = datarecording.NewDataRecorder(file)
	s.dataRecorder.CreateTable(RunSummaryTable, RunSummaryEntry{})

	return nil
}

func (b Builder) startMonitoring(s *Simulation) error {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterPager(s.pager)

	if err := s.monitor.StartServer(); err != nil {
		return err
	}

	if b.openBrowser {
		if err := s.monitor.OpenBrowser(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %s\n", err)
		}
	}

	return nil
}
