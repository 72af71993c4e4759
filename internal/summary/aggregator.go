// Package summary reduces the per-unit-year disruption table and the
// novel-reform events into one row per unit.
package summary

import (
	"sort"

	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/reform"
)

// Aggregate produces one UnitSummary per unit present in the
// disruption table, sorted by max disruption score descending with
// unit name as the tie-break. Units without any scored unit-year do
// not appear: they were excluded by the document threshold and are
// absent from every output table.
func Aggregate(records []model.DisruptionRecord, reforms []model.NovelReformEvent) []model.UnitSummary {
	byUnit := make(map[string][]model.DisruptionRecord)
	var units []string
	for _, rec := range records {
		if _, ok := byUnit[rec.Unit]; !ok {
			units = append(units, rec.Unit)
		}
		byUnit[rec.Unit] = append(byUnit[rec.Unit], rec)
	}
	sort.Strings(units)

	summaries := make([]model.UnitSummary, 0, len(units))
	for _, unit := range units {
		summaries = append(summaries, summarizeUnit(unit, byUnit[unit], reforms))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].MaxScore != summaries[j].MaxScore {
			return summaries[i].MaxScore > summaries[j].MaxScore
		}
		return summaries[i].Unit < summaries[j].Unit
	})
	return summaries
}

// summarizeUnit reduces one unit's records, which arrive in ascending
// year order from the detector.
func summarizeUnit(unit string, recs []model.DisruptionRecord, reforms []model.NovelReformEvent) model.UnitSummary {
	s := model.UnitSummary{
		Unit:         unit,
		UnitYears:    len(recs),
		NovelReforms: reform.ForUnit(reforms, unit),
	}

	maxIdx := 0
	for i, rec := range recs {
		if rec.Classification != model.ClassStable {
			s.Disruptions++
			if s.FirstDisruption == nil {
				year := rec.Year
				s.FirstDisruption = &year
			}
		}
		if rec.Classification == model.ClassMajor {
			s.MajorDisruptions++
		}
		if rec.Score > recs[maxIdx].Score {
			maxIdx = i
		}
	}
	s.MostDisruptiveYear = recs[maxIdx].Year
	s.MaxScore = recs[maxIdx].Score
	s.DominantDirection = dominantDirection(recs)
	return s
}

// dominantDirection returns the most common non-neutral direction, or
// neutral when the unit has none. A progressive/traditional tie breaks
// progressive-first; the choice is arbitrary but fixed so repeat runs
// agree.
func dominantDirection(recs []model.DisruptionRecord) model.Direction {
	var progressive, traditional int
	for i := range recs {
		switch recs[i].Direction {
		case model.DirectionProgressive:
			progressive++
		case model.DirectionTraditional:
			traditional++
		}
	}
	switch {
	case progressive == 0 && traditional == 0:
		return model.DirectionNeutral
	case traditional > progressive:
		return model.DirectionTraditional
	default:
		return model.DirectionProgressive
	}
}
