// Package panel holds the immutable, indexed document panel the signal
// computations read from. A Panel is built once at ingestion and never
// mutated, so concurrent readers need no locking.
package panel

import (
	"sort"

	"github.com/justice-collab/disruption-cli/internal/model"
)

// UnitYear identifies one scored cell of the panel.
type UnitYear struct {
	Unit string
	Year int
}

// Panel indexes policy records by unit and (unit, year). Records within
// a unit are stored in chronological order with document-ID tie-break,
// which makes every sweep over the panel deterministic.
type Panel struct {
	records []model.PolicyRecord
	byUnit  map[string][]model.PolicyRecord
	units   []string
}

// New builds a Panel from the given records. The input slice is copied;
// callers may reuse it afterwards.
func New(records []model.PolicyRecord) *Panel {
	sorted := make([]model.PolicyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Unit != sorted[j].Unit {
			return sorted[i].Unit < sorted[j].Unit
		}
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].DocumentID < sorted[j].DocumentID
	})

	byUnit := make(map[string][]model.PolicyRecord)
	var units []string
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Unit == sorted[i].Unit {
			j++
		}
		byUnit[sorted[i].Unit] = sorted[i:j:j]
		units = append(units, sorted[i].Unit)
		i = j
	}

	return &Panel{records: sorted, byUnit: byUnit, units: units}
}

// Len returns the total number of records in the panel.
func (p *Panel) Len() int { return len(p.records) }

// Units returns all unit names in lexicographic order.
func (p *Panel) Units() []string { return p.units }

// Unit returns the unit's records in chronological order. The returned
// slice is shared; callers must not modify it.
func (p *Panel) Unit(unit string) []model.PolicyRecord {
	return p.byUnit[unit]
}

// UnitYear returns the unit's records for exactly the given year.
func (p *Panel) UnitYear(unit string, year int) []model.PolicyRecord {
	return p.Window(unit, year, year+1)
}

// Window returns the unit's records with year in [from, to). This is
// the baseline-window accessor: Window(u, y-lookback, y).
func (p *Panel) Window(unit string, from, to int) []model.PolicyRecord {
	recs := p.byUnit[unit]
	lo := sort.Search(len(recs), func(i int) bool { return recs[i].Year >= from })
	hi := sort.Search(len(recs), func(i int) bool { return recs[i].Year >= to })
	return recs[lo:hi:hi]
}

// Years returns the distinct years present for a unit, ascending.
func (p *Panel) Years(unit string) []int {
	recs := p.byUnit[unit]
	var years []int
	for _, r := range recs {
		if len(years) == 0 || years[len(years)-1] != r.Year {
			years = append(years, r.Year)
		}
	}
	return years
}

// QualifyingPairs enumerates every (unit, year) with at least minDocs
// documents, ordered unit ascending then year ascending. Pairs below
// the threshold are silently excluded, not errored.
func (p *Panel) QualifyingPairs(minDocs int) []UnitYear {
	var pairs []UnitYear
	for _, unit := range p.units {
		for _, year := range p.Years(unit) {
			if len(p.UnitYear(unit, year)) >= minDocs {
				pairs = append(pairs, UnitYear{Unit: unit, Year: year})
			}
		}
	}
	return pairs
}
