package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/justice-collab/disruption-cli/internal/detect"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	Long: `Print the configuration after merging defaults, the config file, and
DISRUPT_* environment variables, along with the detector weight sum.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return eris.Wrap(err, "config show: encode")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "config show: close encoder")
		}

		fmt.Printf("# weight sum: %g\n", detect.WeightSum(cfg.Detector))
		if err := detect.ValidateConfig(cfg.Detector); err != nil {
			fmt.Printf("# detector config INVALID: %v\n", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
