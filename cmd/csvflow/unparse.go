package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/carlodf/csvflow/record"
	"github.com/carlodf/csvflow/unparse"
)

var (
	unparseDelimiter string
	unparseHeader    bool
)

func newUnparseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unparse <rows.json>",
		Short: "Render a JSON array of row objects as CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnparse,
	}
	cmd.Flags().StringVar(&unparseDelimiter, "delimiter", "", "field delimiter (default: comma)")
	cmd.Flags().BoolVar(&unparseHeader, "header", true, "emit a header row from the first object's keys")
	return cmd
}

func runUnparse(cmd *cobra.Command, args []string) error {
	path := args[0]
	entry := log.WithField("file", path)
	entry.Info("unparse starting")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("%s: expected a top-level JSON array of row objects", path)
	}

	cfg := unparse.Config{Header: unparse.Bool(unparseHeader)}
	if unparseDelimiter != "" {
		cfg.Delimiter = []rune(unparseDelimiter)[0]
	}
	sw := unparse.NewStreamWriter(cmd.OutOrStdout(), cfg)

	var columns []string
	rows := 0
	for dec.More() {
		var row map[string]any
		if err := dec.Decode(&row); err != nil {
			return fmt.Errorf("decode row %d: %w", rows, err)
		}
		if columns == nil {
			columns = sortedKeys(row)
			if err := sw.WriteHeader(columns); err != nil {
				return err
			}
		}
		values := make([]record.Value, len(columns))
		for i, c := range columns {
			values[i] = record.StringValue(jsonScalarToString(row[c]))
		}
		if err := sw.WriteRow(values); err != nil {
			return fmt.Errorf("write row %d: %w", rows, err)
		}
		rows++
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows\n", rows)
	entry.WithField("rows", rows).Info("unparse complete")
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonScalarToString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
