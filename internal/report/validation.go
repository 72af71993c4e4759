// Package report builds evidence summaries for manual review of a
// detected disruption.
package report

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
)

// SampleDocument is one supporting document cited in a report.
type SampleDocument struct {
	DocumentID    string   `json:"document_id"`
	PrimaryTopic  string   `json:"primary_topic,omitempty"`
	IdeologyScore *float64 `json:"ideology_score,omitempty"`
}

// Validation summarizes the quantitative and qualitative evidence
// behind one unit-year, for human review of a flagged disruption.
type Validation struct {
	Unit string `json:"unit"`
	Year int    `json:"year"`

	DocumentCount  int      `json:"n_documents"`
	NewPolicyCount int      `json:"n_new_policies"`
	IdeologyChange *float64 `json:"ideology_change,omitempty"` // vs all prior years

	CurrentTopics   map[string]int `json:"current_topics,omitempty"`
	PriorTopics     map[string]int `json:"prior_topics,omitempty"`
	Administrations map[string]int `json:"administrations,omitempty"`

	SampleNewPolicies []SampleDocument `json:"sample_new_policies,omitempty"`
}

// maxSampleDocs caps the cited new-policy documents.
const maxSampleDocs = 3

// Validate builds the evidence report for one unit-year. Unlike the
// scoring baseline window, the ideology comparison here spans all
// prior years of the unit.
func Validate(p *panel.Panel, unit string, year int) (*Validation, error) {
	current := p.UnitYear(unit, year)
	if len(current) == 0 {
		return nil, eris.Errorf("report: no documents for %s in %d", unit, year)
	}
	prior := priorRecords(p, unit, year)

	v := &Validation{
		Unit:            unit,
		Year:            year,
		DocumentCount:   len(current),
		CurrentTopics:   topicTally(current),
		PriorTopics:     topicTally(prior),
		Administrations: administrationTally(current),
	}

	if cur, ok := meanIdeology(current); ok {
		if prev, ok := meanIdeology(prior); ok {
			change := cur - prev
			v.IdeologyChange = &change
		}
	}

	for i := range current {
		if current[i].PolicyChange != model.PolicyChangeNew {
			continue
		}
		v.NewPolicyCount++
		if len(v.SampleNewPolicies) < maxSampleDocs {
			v.SampleNewPolicies = append(v.SampleNewPolicies, SampleDocument{
				DocumentID:    current[i].DocumentID,
				PrimaryTopic:  current[i].PrimaryTopic,
				IdeologyScore: current[i].IdeologyScore,
			})
		}
	}

	return v, nil
}

func priorRecords(p *panel.Panel, unit string, year int) []model.PolicyRecord {
	recs := p.Unit(unit)
	hi := sort.Search(len(recs), func(i int) bool { return recs[i].Year >= year })
	return recs[:hi]
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

func topicTally(recs []model.PolicyRecord) map[string]int {
	tally := make(map[string]int)
	for i := range recs {
		if recs[i].PrimaryTopic != "" {
			tally[recs[i].PrimaryTopic]++
		}
	}
	if len(tally) == 0 {
		return nil
	}
	return tally
}

func administrationTally(recs []model.PolicyRecord) map[string]int {
	tally := make(map[string]int)
	for i := range recs {
		if name := recs[i].Administration; name != "" && name != model.AdministrationNotMentioned {
			tally[name]++
		}
	}
	if len(tally) == 0 {
		return nil
	}
	return tally
}
