package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/spf13/cobra"
)

// Environment variables that provide defaults for the flags of the same
// meaning.
const (
	envPageTable   = "VMSIM_PAGE_TABLE"
	envFormat      = "VMSIM_FORMAT"
	envRecord      = "VMSIM_RECORD"
	envMonitorPort = "VMSIM_MONITOR_PORT"
)

type runOptions struct {
	pageTable   vm.PageTableKind
	format      string
	record      string
	recordAuto  bool
	traceLog    bool
	monitor     bool
	monitorPort int
	openBrowser bool
}

// stringOption returns the flag value when the flag is given, then the
// environment variable, then the flag default.
func stringOption(cmd *cobra.Command, flag, env string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}

	if v, ok := os.LookupEnv(env); ok {
		return v
	}

	v, _ := cmd.Flags().GetString(flag)

	return v
}

func intOption(cmd *cobra.Command, flag, env string) (int, error) {
	if cmd.Flags().Changed(flag) {
		return cmd.Flags().GetInt(flag)
	}

	if v, ok := os.LookupEnv(env); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s=%q is not a port number", env, v)
		}

		return n, nil
	}

	return cmd.Flags().GetInt(flag)
}

func loadRunOptions(cmd *cobra.Command) (runOptions, error) {
	opts := runOptions{
		pageTable: vm.PageTableKind(
			stringOption(cmd, "page-table", envPageTable)),
		format: stringOption(cmd, "format", envFormat),
		record: stringOption(cmd, "record", envRecord),
	}

	opts.recordAuto, _ = cmd.Flags().GetBool("record-auto")
	opts.traceLog, _ = cmd.Flags().GetBool("trace-log")
	opts.monitor, _ = cmd.Flags().GetBool("monitor")
	opts.openBrowser, _ = cmd.Flags().GetBool("open-browser")

	port, err := intOption(cmd, "monitor-port", envMonitorPort)
	if err != nil {
		return runOptions{}, err
	}

	opts.monitorPort = port

	if opts.openBrowser {
		opts.monitor = true
	}

	if opts.recordAuto && cmd.Flags().Changed("record") {
		return runOptions{}, errors.New("--record and --record-auto cannot be combined")
	}

	if err := checkFormat(opts.format); err != nil {
		return runOptions{}, err
	}

	return opts, nil
}
