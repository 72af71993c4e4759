// Package election joins disruption records to the external
// election/tenure table. Linking is purely additive context: a missing
// table or a missing match never fails the pipeline.
package election

import (
	"strings"

	"go.uber.org/zap"

	"github.com/justice-collab/disruption-cli/internal/model"
)

// countySuffix is tolerated on the panel side: the election table
// commonly stores bare county names.
const countySuffix = " County"

// Link attaches election context to every record whose unit has a
// tenure covering the record's year. When multiple tenures match, the
// one with the latest election year wins. Records without a match are
// left untouched. Returns the number of records linked.
func Link(records []model.DisruptionRecord, events []model.ElectionEvent) int {
	if len(events) == 0 {
		return 0
	}

	byUnit := make(map[string][]model.ElectionEvent)
	for _, ev := range events {
		byUnit[ev.Unit] = append(byUnit[ev.Unit], ev)
	}

	linked := 0
	for i := range records {
		candidates := byUnit[records[i].Unit]
		if candidates == nil {
			candidates = byUnit[strings.TrimSuffix(records[i].Unit, countySuffix)]
		}

		best := pickTenure(candidates, records[i].Year)
		if best == nil {
			continue
		}
		records[i].Election = &model.ElectionContext{
			ElectionYear:  best.ElectionYear,
			WinnerName:    best.WinnerName,
			Margin:        best.Margin,
			Close5pp:      best.Close5pp,
			Close10pp:     best.Close10pp,
			Close15pp:     best.Close15pp,
			ChallengerWon: best.Incumbency == model.IncumbencyChallenger,
			Incumbency:    best.Incumbency,
		}
		linked++
	}

	zap.L().Info("election: linking complete",
		zap.Int("records", len(records)),
		zap.Int("linked", linked),
	)

	return linked
}

// pickTenure returns the event whose tenure covers the year, preferring
// the latest election year among matches.
func pickTenure(events []model.ElectionEvent, year int) *model.ElectionEvent {
	var best *model.ElectionEvent
	for i := range events {
		ev := &events[i]
		if year < ev.TenureStart || year > ev.TenureEnd {
			continue
		}
		if best == nil || ev.ElectionYear >= best.ElectionYear {
			best = ev
		}
	}
	return best
}
