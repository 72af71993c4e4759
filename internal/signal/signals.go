// Package signal computes the five per-unit-year disruption signals.
// Every function is a pure read of the immutable panel, so all pairs
// can be computed independently and in parallel.
package signal

import (
	"math"
	"sort"

	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
)

// reversalNoiseFloor is the minimum net-leniency magnitude either
// period must exceed before a sign flip counts as a reversal.
const reversalNoiseFloor = 0.05

// IdeologyVelocity returns the change in mean ideology score between
// the current year and the baseline window [year-lookback, year).
// Positive values indicate a progressive shift. Missing data on either
// side yields 0, not an error.
func IdeologyVelocity(p *panel.Panel, unit string, year, lookback int) float64 {
	current, okCur := meanIdeology(p.UnitYear(unit, year))
	prior, okPrior := meanIdeology(p.Window(unit, year-lookback, year))
	if !okCur || !okPrior {
		return 0
	}
	return current - prior
}

// NoveltyIndex returns the fraction of current-year documents flagged
// as introducing new policy.
func NoveltyIndex(p *panel.Panel, unit string, year int) float64 {
	recs := p.UnitYear(unit, year)
	if len(recs) == 0 {
		return 0
	}
	return float64(countNewPolicies(recs)) / float64(len(recs))
}

// TopicShift returns the Jensen-Shannon distance between the topic
// frequency distributions of the current year and the baseline window,
// over the union of topics observed in either period. Zero when either
// period has no topic-tagged documents.
func TopicShift(p *panel.Panel, unit string, year, lookback int) float64 {
	current := topicCounts(p.UnitYear(unit, year))
	prior := topicCounts(p.Window(unit, year-lookback, year))
	if len(current) == 0 || len(prior) == 0 {
		return 0
	}

	topics := topicUnion(current, prior)
	return jensenShannon(frequencies(current, topics), frequencies(prior, topics))
}

// MarginReversal measures change in net leniency across the extensive
// and intensive margins. The score is the sum of absolute net-leniency
// changes; the two flags mark sign reversals that clear the noise
// floor on at least one side.
func MarginReversal(p *panel.Panel, unit string, year, lookback int) (score float64, extensive, intensive bool) {
	current := p.UnitYear(unit, year)
	prior := p.Window(unit, year-lookback, year)
	if len(current) == 0 || len(prior) == 0 {
		return 0, false, false
	}

	extPrior := netLeniency(prior, extensiveMargin)
	extCurrent := netLeniency(current, extensiveMargin)
	intPrior := netLeniency(prior, intensiveMargin)
	intCurrent := netLeniency(current, intensiveMargin)

	extensive = signFlipped(extPrior, extCurrent)
	intensive = signFlipped(intPrior, intCurrent)
	score = math.Abs(extCurrent-extPrior) + math.Abs(intCurrent-intPrior)
	return score, extensive, intensive
}

// TransitionSignal returns 1 when the current year names at least one
// administration absent from the baseline window, else 0. An empty
// baseline window yields 0, like the other window-based signals. The
// "not_mentioned" sentinel is excluded from both sets.
func TransitionSignal(p *panel.Panel, unit string, year, lookback int) int {
	baseline := p.Window(unit, year-lookback, year)
	if len(baseline) == 0 {
		return 0
	}
	current := administrationSet(p.UnitYear(unit, year))
	prior := administrationSet(baseline)
	for name := range current {
		if !prior[name] {
			return 1
		}
	}
	return 0
}

// Compute evaluates all five signals plus the descriptive fields for
// one (unit, year) pair.
func Compute(p *panel.Panel, unit string, year, lookback int) model.UnitYearSignals {
	marginScore, extRev, intRev := MarginReversal(p, unit, year, lookback)

	current := p.UnitYear(unit, year)
	s := model.UnitYearSignals{
		Unit:              unit,
		Year:              year,
		IdeologyVelocity:  IdeologyVelocity(p, unit, year, lookback),
		NoveltyIndex:      NoveltyIndex(p, unit, year),
		TopicShift:        TopicShift(p, unit, year, lookback),
		MarginReversal:    marginScore,
		Transition:        TransitionSignal(p, unit, year, lookback),
		ExtensiveReversal: extRev,
		IntensiveReversal: intRev,
		DocumentCount:     len(current),
		NewPolicyCount:    countNewPolicies(current),
		TopTopics:         topTopics(current, 3),
	}
	if m, ok := meanIdeology(current); ok {
		s.MeanIdeology = &m
	}
	if m, ok := meanIdeology(p.Window(unit, year-lookback, year)); ok {
		s.PriorMeanIdeology = &m
	}
	return s
}

func meanIdeology(recs []model.PolicyRecord) (float64, bool) {
	var sum float64
	var n int
	for i := range recs {
		if recs[i].HasIdeology() {
			sum += *recs[i].IdeologyScore
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func countNewPolicies(recs []model.PolicyRecord) int {
	n := 0
	for i := range recs {
		if recs[i].PolicyChange == model.PolicyChangeNew {
			n++
		}
	}
	return n
}

func topicCounts(recs []model.PolicyRecord) map[string]int {
	counts := make(map[string]int)
	for i := range recs {
		if recs[i].PrimaryTopic != "" {
			counts[recs[i].PrimaryTopic]++
		}
	}
	return counts
}

// topicUnion returns the union of observed topics in sorted order so
// distribution vectors are built identically on every run.
func topicUnion(a, b map[string]int) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var topics []string
	for t := range a {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	for t := range b {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)
	return topics
}

func frequencies(counts map[string]int, topics []string) []float64 {
	var total int
	for _, t := range topics {
		total += counts[t]
	}
	dist := make([]float64, len(topics))
	if total == 0 {
		return dist
	}
	for i, t := range topics {
		dist[i] = float64(counts[t]) / float64(total)
	}
	return dist
}

type marginFn func(r *model.PolicyRecord) (lenient, punitive bool)

func extensiveMargin(r *model.PolicyRecord) (bool, bool) {
	return r.ExtensiveLenient, r.ExtensivePunitive
}

func intensiveMargin(r *model.PolicyRecord) (bool, bool) {
	return r.IntensiveLenient, r.IntensivePunitive
}

// netLeniency is (lenient count - punitive count) / total documents in
// the period, for one margin.
func netLeniency(recs []model.PolicyRecord, margin marginFn) float64 {
	if len(recs) == 0 {
		return 0
	}
	var lenient, punitive int
	for i := range recs {
		l, p := margin(&recs[i])
		if l {
			lenient++
		}
		if p {
			punitive++
		}
	}
	return float64(lenient-punitive) / float64(len(recs))
}

func signFlipped(prior, current float64) bool {
	if prior*current >= 0 {
		return false
	}
	return math.Abs(prior) > reversalNoiseFloor || math.Abs(current) > reversalNoiseFloor
}

func administrationSet(recs []model.PolicyRecord) map[string]bool {
	set := make(map[string]bool)
	for i := range recs {
		if name := recs[i].Administration; name != "" && name != model.AdministrationNotMentioned {
			set[name] = true
		}
	}
	return set
}

// topTopics returns up to n topics by descending frequency, ties broken
// alphabetically.
func topTopics(recs []model.PolicyRecord, n int) []string {
	counts := topicCounts(recs)
	if len(counts) == 0 {
		return nil
	}
	topics := make([]string, 0, len(counts))
	for t := range counts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}
