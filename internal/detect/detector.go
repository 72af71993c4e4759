package detect

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/justice-collab/disruption-cli/internal/config"
	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
	"github.com/justice-collab/disruption-cli/internal/signal"
)

// Detector runs the two-phase disruption pipeline over an immutable
// panel: parallel per-unit-year signal computation, then a full-column
// normalization barrier, then scoring and classification.
type Detector struct {
	panel *panel.Panel
	cfg   config.DetectorConfig
}

// New creates a Detector. The config is validated eagerly so a bad
// weight set fails before any computation starts.
func New(p *panel.Panel, cfg config.DetectorConfig) (*Detector, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Detector{panel: p, cfg: cfg}, nil
}

// Run scores every qualifying unit-year and returns the classified
// records ordered by unit ascending, year ascending. The ordering and
// every value are deterministic for a given panel and config.
func (d *Detector) Run(ctx context.Context) ([]model.DisruptionRecord, error) {
	pairs := d.panel.QualifyingPairs(d.cfg.MinDocs)
	if len(pairs) == 0 {
		zap.L().Info("detect: no unit-years cleared the document threshold",
			zap.Int("min_docs", d.cfg.MinDocs),
		)
		return nil, nil
	}

	// Phase 1: raw signals. Each task writes only to its own slot, so
	// results are position-stable regardless of scheduling.
	raw := make([]model.UnitYearSignals, len(pairs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			raw[i] = signal.Compute(d.panel, pair.Unit, pair.Year, d.cfg.Lookback)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase 2: normalization barrier. Directional signals normalize on
	// magnitude; direction is preserved separately via the label.
	method := NormMethod(d.cfg.NormMethod)
	velocity := NormalizeColumn(column(raw, func(s *model.UnitYearSignals) float64 {
		return math.Abs(s.IdeologyVelocity)
	}), method)
	novelty := NormalizeColumn(column(raw, func(s *model.UnitYearSignals) float64 {
		return s.NoveltyIndex
	}), method)
	topicShift := NormalizeColumn(column(raw, func(s *model.UnitYearSignals) float64 {
		return math.Abs(s.TopicShift)
	}), method)
	margin := NormalizeColumn(column(raw, func(s *model.UnitYearSignals) float64 {
		return math.Abs(s.MarginReversal)
	}), method)

	records := make([]model.DisruptionRecord, len(raw))
	for i := range raw {
		norm := model.NormalizedSignals{
			IdeologyVelocity: velocity[i],
			NoveltyIndex:     novelty[i],
			TopicShift:       topicShift[i],
			MarginReversal:   margin[i],
		}

		// The transition signal is binary and enters unnormalized.
		score := d.cfg.VelocityWeight*norm.IdeologyVelocity +
			d.cfg.NoveltyWeight*norm.NoveltyIndex +
			d.cfg.TopicShiftWeight*norm.TopicShift +
			d.cfg.MarginWeight*norm.MarginReversal +
			d.cfg.TransitionWeight*float64(raw[i].Transition)

		records[i] = model.DisruptionRecord{
			Unit:           raw[i].Unit,
			Year:           raw[i].Year,
			Signals:        raw[i],
			Normalized:     norm,
			Score:          score,
			Classification: Classify(score),
			Direction:      DirectionOf(raw[i].IdeologyVelocity),
		}
	}

	zap.L().Info("detect: scoring complete",
		zap.Int("unit_years", len(records)),
		zap.Int("major", countClass(records, model.ClassMajor)),
		zap.Int("significant", countClass(records, model.ClassSignificant)),
	)

	return records, nil
}

func column(raw []model.UnitYearSignals, extract func(*model.UnitYearSignals) float64) []float64 {
	col := make([]float64, len(raw))
	for i := range raw {
		col[i] = extract(&raw[i])
	}
	return col
}

func countClass(records []model.DisruptionRecord, class model.Classification) int {
	n := 0
	for i := range records {
		if records[i].Classification == class {
			n++
		}
	}
	return n
}
