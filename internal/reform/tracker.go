// Package reform tracks first-time adoption of policy topics and
// cataloged policy positions across the panel.
package reform

import (
	"sort"

	"go.uber.org/zap"

	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
)

// catalogEntry maps a coded position field to the reform it triggers
// when the field holds the trigger stance.
type catalogEntry struct {
	name    string
	trigger model.PositionStance
	value   func(*model.PolicyRecord) model.PositionStance
}

// positionCatalog is the fixed set of trigger-flag reforms. Unlike
// topics, position reforms never receive a statewide-first flag.
var positionCatalog = []catalogEntry{
	{"diversion_support", model.StanceYes, func(r *model.PolicyRecord) model.PositionStance { return r.SupportsDiversion }},
	{"alternatives_support", model.StanceYes, func(r *model.PolicyRecord) model.PositionStance { return r.SupportsAlternatives }},
	{"bail_reform", model.StanceReformOriented, func(r *model.PolicyRecord) model.PositionStance { return r.BailPosition }},
	{"enhancement_limits", model.StanceMinimize, func(r *model.PolicyRecord) model.PositionStance { return r.EnhancementsPosition }},
	{"racial_justice_high", model.StanceHigh, func(r *model.PolicyRecord) model.PositionStance { return r.RacialJusticeLevel }},
}

// Track walks every unit of the panel in chronological order and emits
// one event per first occurrence of a topic or cataloged position for
// that unit. Units are visited in lexicographic order, so when two
// units adopt the same topic in the same year the lexicographically
// smaller unit takes the statewide-first flag.
func Track(p *panel.Panel) []model.NovelReformEvent {
	var events []model.NovelReformEvent
	statewideSeen := make(map[string]bool) // topic -> already claimed

	for _, unit := range p.Units() {
		seenTopics := make(map[string]bool)
		seenPositions := make(map[string]bool)

		for _, rec := range p.Unit(unit) {
			if topic := rec.PrimaryTopic; topic != "" && !seenTopics[topic] {
				seenTopics[topic] = true
				statewideFirst := !statewideSeen[topic]
				statewideSeen[topic] = true
				events = append(events, model.NovelReformEvent{
					Unit:           unit,
					Year:           rec.Year,
					ReformType:     model.ReformTopic,
					ReformName:     topic,
					DocumentID:     rec.DocumentID,
					IdeologyScore:  rec.IdeologyScore,
					StatewideFirst: statewideFirst,
				})
			}

			for _, entry := range positionCatalog {
				if entry.value(&rec) != entry.trigger || seenPositions[entry.name] {
					continue
				}
				seenPositions[entry.name] = true
				events = append(events, model.NovelReformEvent{
					Unit:          unit,
					Year:          rec.Year,
					ReformType:    model.ReformPosition,
					ReformName:    entry.name,
					DocumentID:    rec.DocumentID,
					IdeologyScore: rec.IdeologyScore,
				})
			}
		}
	}

	assignAdoptionRanks(events)

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Year != events[j].Year {
			return events[i].Year < events[j].Year
		}
		return events[i].Unit < events[j].Unit
	})

	zap.L().Info("reform: tracking complete",
		zap.Int("events", len(events)),
		zap.Int("units", len(p.Units())),
	)

	return events
}

// assignAdoptionRanks sets each event's AdoptionRank to the dense rank
// of its year among all events sharing the reform name: the earliest
// adoption year ranks 1, and same-year adopters share a rank.
func assignAdoptionRanks(events []model.NovelReformEvent) {
	yearsByReform := make(map[string][]int)
	for i := range events {
		yearsByReform[events[i].ReformName] = append(yearsByReform[events[i].ReformName], events[i].Year)
	}

	rankByReformYear := make(map[string]map[int]int, len(yearsByReform))
	for name, years := range yearsByReform {
		sort.Ints(years)
		ranks := make(map[int]int)
		rank := 0
		for idx, y := range years {
			if idx == 0 || y != years[idx-1] {
				rank++
			}
			ranks[y] = rank
		}
		rankByReformYear[name] = ranks
	}

	for i := range events {
		events[i].AdoptionRank = rankByReformYear[events[i].ReformName][events[i].Year]
	}
}

// ForUnit returns the number of events belonging to the given unit.
func ForUnit(events []model.NovelReformEvent, unit string) int {
	n := 0
	for i := range events {
		if events[i].Unit == unit {
			n++
		}
	}
	return n
}
