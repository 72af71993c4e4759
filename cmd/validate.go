package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/justice-collab/disruption-cli/internal/ingest"
	"github.com/justice-collab/disruption-cli/internal/panel"
	"github.com/justice-collab/disruption-cli/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <county> <year>",
	Short: "Show the evidence behind one county-year",
	Long: `Build the evidence report for a single county-year: document counts,
new-policy samples, topic distributions before and after, named
administrations, and the ideology change against all prior years.

Example:
  validate "Harris County" 2017 --policies coded_policies.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("policies", "", "coded policy panel CSV (required)")
	_ = validateCmd.MarkFlagRequired("policies")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("policies")

	year, err := strconv.Atoi(args[1])
	if err != nil {
		return eris.Wrapf(err, "validate: parse year %q", args[1])
	}

	records, _, err := ingest.LoadPolicies(input)
	if err != nil {
		return err
	}

	v, err := report.Validate(panel.New(records), ingest.CanonicalUnit(args[0]), year)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
