package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/pager"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <policy> <trace-file> <page-size-kb> <memory-size-kb>",
		Short: "Replay a trace and report page faults and writebacks.",
		Long: "Replay a trace and report page faults and writebacks. " +
			"The policy is one of " + fmt.Sprint(replacement.Names()) + ".",
		Args: cobra.ExactArgs(4),
		RunE: runSimulation,
	}

	runCmd.Flags().String("page-table", string(vm.SparsePageTable),
		fmt.Sprintf("Page table organization %v", vm.PageTableKinds()))
	runCmd.Flags().String("format", formatText,
		"Report format: text, json, or msgpack")
	runCmd.Flags().String("record", "",
		"Record the run into the given SQLite database")
	runCmd.Flags().Bool("record-auto", false,
		"Record the run into a database with a generated name")
	runCmd.Flags().Bool("trace-log", false,
		"Log every fault and eviction to stderr")
	runCmd.Flags().Bool("monitor", false,
		"Serve the progress of the run over HTTP")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring server, random if not set")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring page in a browser, implies --monitor")

	return runCmd
}

func parseRunArgs(args []string, kind vm.PageTableKind) (pager.Config, error) {
	pageSize, err := parseKB("page size", args[2])
	if err != nil {
		return pager.Config{}, err
	}

	memorySize, err := parseKB("memory size", args[3])
	if err != nil {
		return pager.Config{}, err
	}

	config := pager.Config{
		Policy:       args[0],
		TraceName:    args[1],
		PageSizeKB:   pageSize,
		MemorySizeKB: memorySize,
		PageTable:    kind,
	}

	return config, config.Validate()
}

func parseKB(what, arg string) (uint64, error) {
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number of KB",
			vm.ErrInvalidConfiguration, what, arg)
	}

	return v, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	opts, err := loadRunOptions(cmd)
	if err != nil {
		return err
	}

	config, err := parseRunArgs(args, opts.pageTable)
	if err != nil {
		return err
	}

	b := simulation.MakeBuilder().WithConfig(config)

	switch {
	case opts.recordAuto:
		b = b.WithRecording()
	case opts.record != "":
		b = b.WithOutputFileName(opts.record)
	}

	if opts.traceLog {
		b = b.WithTraceLogger(log.New(cmd.ErrOrStderr(), "", 0))
	}

	if opts.monitor {
		b = b.WithMonitoring().WithMonitorPort(opts.monitorPort)
		if opts.openBrowser {
			b = b.WithBrowser()
		}
	}

	s, err := b.Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	result, err := s.Run()
	if err != nil {
		return err
	}

	if result.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"Warning: trace ended at a malformed record after %d accesses\n",
			result.Stats.TotalAccesses)
	}

	return writeReport(cmd.OutOrStdout(), opts.format, result)
}
