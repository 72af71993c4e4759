package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/justice-collab/disruption-cli/internal/ingest"
	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
	"github.com/justice-collab/disruption-cli/internal/reform"
)

var reformsCmd = &cobra.Command{
	Use:   "reforms",
	Short: "Track first-time reform adoption across the panel",
	Long: `Walk every county's documents in chronological order and report the
first occurrence of each policy topic and each cataloged reform
position, with statewide-first flags and adoption ranks.

Examples:
  # All reform events
  reforms --policies coded_policies.csv

  # One county's adoption history
  reforms --policies coded_policies.csv --county "Harris County"

  # Statewide pioneers only, as CSV
  reforms --policies coded_policies.csv --statewide-first --format csv`,
	RunE: runReforms,
}

func init() {
	f := reformsCmd.Flags()
	f.String("policies", "", "coded policy panel CSV (required)")
	f.String("county", "", "restrict to one county")
	f.Bool("statewide-first", false, "only events that were first in the state")
	f.String("format", "table", "output format: table or csv")
	f.String("output", "", "output file path (default: stdout)")
	_ = reformsCmd.MarkFlagRequired("policies")

	rootCmd.AddCommand(reformsCmd)
}

func runReforms(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("policies")
	county, _ := cmd.Flags().GetString("county")
	statewideOnly, _ := cmd.Flags().GetBool("statewide-first")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "csv" {
		return eris.Errorf("reforms: --format must be table or csv (got %q)", format)
	}

	records, _, err := ingest.LoadPolicies(input)
	if err != nil {
		return err
	}
	events := reform.Track(panel.New(records))

	if county != "" {
		county = ingest.CanonicalUnit(county)
	}
	events = filterReforms(events, county, statewideOnly)
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "No reform events matched.")
		return nil
	}

	w := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "reforms: create output file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	if format == "csv" {
		return writeReformCSV(w, events)
	}
	writeReformTable(w, events)
	return nil
}

func filterReforms(events []model.NovelReformEvent, county string, statewideOnly bool) []model.NovelReformEvent {
	var out []model.NovelReformEvent
	for _, ev := range events {
		if county != "" && ev.Unit != county {
			continue
		}
		if statewideOnly && !ev.StatewideFirst {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func writeReformTable(w *os.File, events []model.NovelReformEvent) {
	fmt.Fprintf(w, "%-25s %6s %-15s %-30s %5s %5s\n",
		"County", "Year", "Type", "Reform", "First", "Rank")
	fmt.Fprintln(w, strings.Repeat("-", 92))
	for i := range events {
		ev := &events[i]
		name := ev.Unit
		if len(name) > 25 {
			name = name[:22] + "..."
		}
		first := ""
		if ev.StatewideFirst {
			first = "*"
		}
		fmt.Fprintf(w, "%-25s %6d %-15s %-30s %5s %5s\n",
			name, ev.Year, ev.ReformType, ev.ReformName, first, strconv.Itoa(ev.AdoptionRank))
	}
}
