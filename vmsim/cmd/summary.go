package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/pager"
	"github.com/sarchlab/vmsim/simulation"
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary <db-file>",
		Short: "List the runs recorded in a database.",
		Args:  cobra.ExactArgs(1),
		RunE:  listSummaries,
	}

	summaryCmd.Flags().String("policy", "", "Only list runs of the policy")
	summaryCmd.Flags().Int("limit", 0, "List at most this many runs")
	summaryCmd.Flags().String("format", formatText, "Output format: text or json")

	return summaryCmd
}

func listSummaries(cmd *cobra.Command, args []string) error {
	file := simulation.StripExtension(args[0]) + datarecording.FileExtension
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("cannot open %s: %w", file, err)
	}

	format, _ := cmd.Flags().GetString("format")
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown output format %q, expecting %s or %s",
			format, formatText, formatJSON)
	}

	reader, err := datarecording.NewReader(file)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(simulation.RunSummaryTable, simulation.RunSummaryEntry{})

	params := datarecording.QueryParams{OrderBy: "rowid"}
	params.Limit, _ = cmd.Flags().GetInt("limit")

	if policy, _ := cmd.Flags().GetString("policy"); policy != "" {
		params.Where = "Policy = ?"
		params.Args = []any{policy}
	}

	results, total, err := reader.Query(
		context.Background(), simulation.RunSummaryTable, params)
	if err != nil {
		return err
	}

	entries := make([]simulation.RunSummaryEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, *r.(*simulation.RunSummaryEntry))
	}

	if format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(entries)
	}

	return writeSummaryTable(cmd.OutOrStdout(), entries, total)
}

func writeSummaryTable(
	w io.Writer,
	entries []simulation.RunSummaryEntry,
	total int,
) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "RUN\tTRACE\tPOLICY\tPAGE KB\tMEMORY KB\tFRAMES\t"+
		"ACCESSES\tFAULTS\tWRITEBACKS\tHIT RATIO")

	for _, e := range entries {
		hitRatio := pager.Stats{
			TotalAccesses: e.TotalAccesses,
			Hits:          e.Hits,
		}.HitRatio()

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.4f\n",
			e.RunID, e.Trace, e.Policy, e.PageSizeKB, e.MemorySizeKB,
			e.NumFrames, e.TotalAccesses, e.Faults, e.Writebacks, hitRatio)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if total > len(entries) {
		_, err := fmt.Fprintf(w, "(%d of %d runs)\n", len(entries), total)
		return err
	}

	return nil
}
