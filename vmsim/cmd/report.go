package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/simulation"
	"github.com/vmihailenco/msgpack/v5"
)

// Supported report formats.
const (
	formatText    = "text"
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatMsgpack:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, expecting %s, %s, or %s",
			format, formatText, formatJSON, formatMsgpack)
	}
}

func writeReport(w io.Writer, format string, result simulation.Result) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	case formatMsgpack:
		return msgpack.NewEncoder(w).Encode(result)
	default:
		return writeTextReport(w, result)
	}
}

func writeTextReport(w io.Writer, result simulation.Result) error {
	c := result.Config
	s := result.Stats

	_, err := fmt.Fprintf(w,
		"Input file: %s\n"+
			"Memory size: %d KB\n"+
			"Page size: %d KB\n"+
			"Replacement policy: %s\n"+
			"Total accesses: %d\n"+
			"Pages read: %d\n"+
			"Pages written: %d\n",
		c.TraceName,
		c.MemorySizeKB,
		c.PageSizeKB,
		c.Policy,
		s.TotalAccesses,
		s.Faults,
		s.Writebacks)

	return err
}
