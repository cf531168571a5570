package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiihann/abcbench/abclog"
)

func newParseCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "parse <log>",
		Short: "Extract stats and time deltas from a saved ABC transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open log: %w", err)
				}
				defer f.Close()

				in = f
			}

			sum, err := abclog.Parse(in, nil)
			if err != nil {
				return err
			}

			return printSummary(cmd.OutOrStdout(), sum, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false,
		"Output the summary as JSON")

	return cmd
}

func printSummary(w io.Writer, sum abclog.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(sum)
	}

	fmt.Fprintf(w, "lines: %d\n", sum.Lines)

	for i, p := range sum.Pairs() {
		fmt.Fprintf(w, "stats %d: and = %d lev = %d\n", i+1, p[0], p[1])
	}

	for i, d := range sum.Deltas {
		fmt.Fprintf(w, "time %d: %g s\n", i+1, d)
	}

	return nil
}
