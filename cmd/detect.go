package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justice-collab/disruption-cli/internal/config"
	"github.com/justice-collab/disruption-cli/internal/detect"
	"github.com/justice-collab/disruption-cli/internal/election"
	"github.com/justice-collab/disruption-cli/internal/ingest"
	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
	"github.com/justice-collab/disruption-cli/internal/reform"
	"github.com/justice-collab/disruption-cli/internal/summary"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Score policy disruption for every qualifying county-year",
	Long: `Run the full disruption pipeline over a coded policy panel.

Each county-year with enough documents gets five signals (ideology
velocity, novelty index, topic shift, margin reversal, administration
transition), normalized across the panel and combined into a weighted
composite score with a severity classification and an ideological
direction. Novel reform adoption and election context are attached,
and a one-row-per-county summary is produced.

Examples:
  # Score a panel with default parameters
  detect --policies coded_policies.csv

  # Custom threshold and window, write CSVs to a directory
  detect --policies coded_policies.csv --min-docs 5 --lookback 3 --output-dir results/

  # Attach election context and persist the run
  detect --policies coded_policies.csv --elections elections.xlsx --save

  # Custom signal weights (velocity,novelty,topic,margin,transition)
  detect --policies coded_policies.csv --weights 0.4,0.2,0.2,0.1,0.1`,
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.String("policies", "", "coded policy panel CSV (required)")
	f.String("elections", "", "election/tenure table (CSV or XLSX)")
	f.Int("min-docs", 0, "minimum documents per county-year (overrides config)")
	f.Int("lookback", 0, "baseline window in years (overrides config)")
	f.String("norm", "", "normalization method: minmax or zscore (overrides config)")
	f.Int("concurrency", 0, "parallel signal workers (overrides config)")
	f.String("weights", "", "comma-separated signal weights: velocity,novelty,topic,margin,transition")
	f.String("output-dir", "", "directory for output CSVs (default: print to stdout)")
	f.String("format", "table", "stdout format: table or csv")
	f.Bool("save", false, "persist the run and its results to the store")
	_ = detectCmd.MarkFlagRequired("policies")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "detect"))

	input, _ := cmd.Flags().GetString("policies")
	electionsPath, _ := cmd.Flags().GetString("elections")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" {
		return eris.Errorf("detect: --format must be table or csv (got %q)", format)
	}

	detectorCfg, err := applyDetectorOverrides(cmd, cfg.Detector)
	if err != nil {
		return err
	}
	if err := detect.ValidateConfig(detectorCfg); err != nil {
		return err
	}

	records, _, err := ingest.LoadPolicies(input)
	if err != nil {
		return err
	}
	p := panel.New(records)

	det, err := detect.New(p, detectorCfg)
	if err != nil {
		return err
	}
	disruptions, err := det.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "detect: run")
	}
	if len(disruptions) == 0 {
		fmt.Fprintln(os.Stderr, "No county-year met the document threshold; nothing to score.")
		return nil
	}

	reforms := reform.Track(p)

	if electionsPath != "" {
		events, err := ingest.LoadElections(electionsPath)
		if err != nil {
			log.Warn("election table could not be loaded; continuing without election context",
				zap.String("path", electionsPath),
				zap.Error(err),
			)
		} else {
			election.Link(disruptions, events)
		}
	}

	summaries := summary.Aggregate(disruptions, reforms)
	result := &model.DetectionResult{
		Disruptions: disruptions,
		Reforms:     reforms,
		Summaries:   summaries,
	}

	if outputDir != "" {
		if err := writeResultDir(outputDir, result); err != nil {
			return err
		}
		fmt.Printf("Wrote %d disruption rows, %d reform events, %d county summaries to %s\n",
			len(disruptions), len(reforms), len(summaries), outputDir)
	} else {
		switch format {
		case "csv":
			if err := writeDisruptionCSV(os.Stdout, disruptions); err != nil {
				return err
			}
		default:
			writeSummaryTable(os.Stdout, summaries)
		}
	}

	if save {
		if err := saveRun(ctx, input, electionsPath, detectorCfg, result); err != nil {
			return err
		}
	}

	printDetectSummary(disruptions)
	return nil
}

// applyDetectorOverrides returns a copy of the base config with CLI
// flag overrides applied.
func applyDetectorOverrides(cmd *cobra.Command, base config.DetectorConfig) (config.DetectorConfig, error) {
	c := base

	if v, _ := cmd.Flags().GetInt("min-docs"); v > 0 {
		c.MinDocs = v
	}
	if v, _ := cmd.Flags().GetInt("lookback"); v > 0 {
		c.Lookback = v
	}
	if v, _ := cmd.Flags().GetString("norm"); v != "" {
		c.NormMethod = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		c.Concurrency = v
	}
	if v, _ := cmd.Flags().GetString("weights"); v != "" {
		weights, err := parseWeights(v)
		if err != nil {
			return c, err
		}
		c.VelocityWeight = weights[0]
		c.NoveltyWeight = weights[1]
		c.TopicShiftWeight = weights[2]
		c.MarginWeight = weights[3]
		c.TransitionWeight = weights[4]
	}

	return c, nil
}

// parseWeights parses the five comma-separated signal weights in the
// order velocity, novelty, topic, margin, transition.
func parseWeights(s string) ([5]float64, error) {
	var weights [5]float64
	parts := splitAndTrim(s)
	if len(parts) != 5 {
		return weights, eris.Errorf("detect: --weights needs 5 values, got %d", len(parts))
	}
	for i, part := range parts {
		w, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return weights, eris.Wrapf(err, "detect: parse weight %q", part)
		}
		weights[i] = w
	}
	return weights, nil
}

func saveRun(ctx context.Context, input, electionsPath string, detectorCfg config.DetectorConfig, result *model.DetectionResult) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, model.RunParams{
		PoliciesPath:  input,
		ElectionsPath: electionsPath,
		MinDocs:       detectorCfg.MinDocs,
		Lookback:      detectorCfg.Lookback,
		NormMethod:    detectorCfg.NormMethod,

		VelocityWeight:   detectorCfg.VelocityWeight,
		NoveltyWeight:    detectorCfg.NoveltyWeight,
		TopicShiftWeight: detectorCfg.TopicShiftWeight,
		MarginWeight:     detectorCfg.MarginWeight,
		TransitionWeight: detectorCfg.TransitionWeight,
	})
	if err != nil {
		return eris.Wrap(err, "detect: create run")
	}

	if err := st.SaveResult(ctx, run.ID, result); err != nil {
		if updateErr := st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed); updateErr != nil {
			zap.L().Warn("could not mark run failed", zap.String("run_id", run.ID), zap.Error(updateErr))
		}
		return eris.Wrap(err, "detect: save result")
	}

	fmt.Printf("Saved run %s\n", run.ID)
	return nil
}

func writeResultDir(dir string, result *model.DetectionResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "detect: create output dir %s", dir)
	}

	writers := []struct {
		name  string
		write func(*os.File) error
	}{
		{"policy_disruptions.csv", func(f *os.File) error { return writeDisruptionCSV(f, result.Disruptions) }},
		{"novel_reforms.csv", func(f *os.File) error { return writeReformCSV(f, result.Reforms) }},
		{"disruption_summary.csv", func(f *os.File) error { return writeSummaryCSV(f, result.Summaries) }},
	}

	for _, w := range writers {
		path := filepath.Join(dir, w.name)
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "detect: create %s", path)
		}
		if err := w.write(f); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "detect: close %s", path)
		}
	}
	return nil
}

func writeDisruptionCSV(w *os.File, records []model.DisruptionRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"county", "year", "score", "classification", "direction",
		"ideology_velocity", "novelty_index", "topic_shift", "margin_reversal", "transition",
		"norm_velocity", "norm_novelty", "norm_topic_shift", "norm_margin",
		"n_documents", "n_new_policies", "top_topics",
		"election_year", "winner_name", "challenger_won",
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "detect: write CSV header")
	}

	for i := range records {
		r := &records[i]
		electionYear, winner, challengerWon := "", "", ""
		if r.Election != nil {
			electionYear = strconv.Itoa(r.Election.ElectionYear)
			winner = r.Election.WinnerName
			challengerWon = fmt.Sprintf("%v", r.Election.ChallengerWon)
		}
		row := []string{
			r.Unit,
			strconv.Itoa(r.Year),
			fmt.Sprintf("%.4f", r.Score),
			string(r.Classification),
			string(r.Direction),
			fmt.Sprintf("%.4f", r.Signals.IdeologyVelocity),
			fmt.Sprintf("%.4f", r.Signals.NoveltyIndex),
			fmt.Sprintf("%.4f", r.Signals.TopicShift),
			fmt.Sprintf("%.4f", r.Signals.MarginReversal),
			strconv.Itoa(r.Signals.Transition),
			fmt.Sprintf("%.4f", r.Normalized.IdeologyVelocity),
			fmt.Sprintf("%.4f", r.Normalized.NoveltyIndex),
			fmt.Sprintf("%.4f", r.Normalized.TopicShift),
			fmt.Sprintf("%.4f", r.Normalized.MarginReversal),
			strconv.Itoa(r.Signals.DocumentCount),
			strconv.Itoa(r.Signals.NewPolicyCount),
			strings.Join(r.Signals.TopTopics, ";"),
			electionYear,
			winner,
			challengerWon,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "detect: write CSV row")
		}
	}
	return nil
}

func writeReformCSV(w *os.File, events []model.NovelReformEvent) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"county", "year", "reform_type", "reform_name",
		"document_id", "ideology_score", "statewide_first", "adoption_rank",
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "detect: write reforms header")
	}

	for i := range events {
		ev := &events[i]
		ideology := ""
		if ev.IdeologyScore != nil {
			ideology = fmt.Sprintf("%.4f", *ev.IdeologyScore)
		}
		row := []string{
			ev.Unit,
			strconv.Itoa(ev.Year),
			string(ev.ReformType),
			ev.ReformName,
			ev.DocumentID,
			ideology,
			fmt.Sprintf("%v", ev.StatewideFirst),
			strconv.Itoa(ev.AdoptionRank),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "detect: write reforms row")
		}
	}
	return nil
}

func writeSummaryCSV(w *os.File, summaries []model.UnitSummary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"county", "unit_years", "disruptions", "major_disruptions",
		"most_disruptive_year", "max_score", "dominant_direction",
		"first_disruption", "novel_reforms",
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "detect: write summary header")
	}

	for i := range summaries {
		s := &summaries[i]
		first := ""
		if s.FirstDisruption != nil {
			first = strconv.Itoa(*s.FirstDisruption)
		}
		row := []string{
			s.Unit,
			strconv.Itoa(s.UnitYears),
			strconv.Itoa(s.Disruptions),
			strconv.Itoa(s.MajorDisruptions),
			strconv.Itoa(s.MostDisruptiveYear),
			fmt.Sprintf("%.4f", s.MaxScore),
			string(s.DominantDirection),
			first,
			strconv.Itoa(s.NovelReforms),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "detect: write summary row")
		}
	}
	return nil
}

func writeSummaryTable(w *os.File, summaries []model.UnitSummary) {
	fmt.Fprintf(w, "%-25s %6s %8s %6s %10s %8s %-12s\n",
		"County", "Years", "Disrupt", "Major", "Peak Year", "Max", "Direction")
	fmt.Fprintln(w, strings.Repeat("-", 82))
	for i := range summaries {
		s := &summaries[i]
		name := s.Unit
		if len(name) > 25 {
			name = name[:22] + "..."
		}
		fmt.Fprintf(w, "%-25s %6d %8d %6d %10d %8.3f %-12s\n",
			name, s.UnitYears, s.Disruptions, s.MajorDisruptions,
			s.MostDisruptiveYear, s.MaxScore, s.DominantDirection)
	}
}

func printDetectSummary(records []model.DisruptionRecord) {
	counts := make(map[model.Classification]int)
	for i := range records {
		counts[records[i].Classification]++
	}
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("County-years scored: %d\n", len(records))
	for _, class := range []model.Classification{
		model.ClassMajor, model.ClassSignificant, model.ClassModerate,
		model.ClassMinor, model.ClassStable,
	} {
		fmt.Printf("%-24s %d\n", string(class)+":", counts[class])
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
