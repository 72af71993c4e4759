package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-collab/disruption-cli/internal/model"
)

func rec(unit string, year int, id string) model.PolicyRecord {
	return model.PolicyRecord{Unit: unit, Year: year, DocumentID: id}
}

func TestNewSortsRecords(t *testing.T) {
	p := New([]model.PolicyRecord{
		rec("Beta", 2016, "b2"),
		rec("Alpha", 2017, "a3"),
		rec("Alpha", 2015, "a1"),
		rec("Beta", 2016, "b1"),
		rec("Alpha", 2015, "a0"),
	})

	assert.Equal(t, 5, p.Len())
	assert.Equal(t, []string{"Alpha", "Beta"}, p.Units())

	alpha := p.Unit("Alpha")
	require.Len(t, alpha, 3)
	assert.Equal(t, "a0", alpha[0].DocumentID)
	assert.Equal(t, "a1", alpha[1].DocumentID)
	assert.Equal(t, "a3", alpha[2].DocumentID)
}

func TestNewCopiesInput(t *testing.T) {
	in := []model.PolicyRecord{rec("Beta", 2016, "b"), rec("Alpha", 2015, "a")}
	p := New(in)

	in[0].Unit = "Mutated"
	assert.Equal(t, []string{"Alpha", "Beta"}, p.Units())
}

func TestWindow(t *testing.T) {
	p := New([]model.PolicyRecord{
		rec("Alpha", 2014, "a"),
		rec("Alpha", 2015, "b"),
		rec("Alpha", 2016, "c"),
		rec("Alpha", 2017, "d"),
	})

	got := p.Window("Alpha", 2015, 2017)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].DocumentID)
	assert.Equal(t, "c", got[1].DocumentID)

	assert.Empty(t, p.Window("Alpha", 2018, 2020))
	assert.Empty(t, p.Window("Alpha", 2016, 2016))
	assert.Empty(t, p.Window("Nowhere", 2014, 2018))
}

func TestUnitYear(t *testing.T) {
	p := New([]model.PolicyRecord{
		rec("Alpha", 2015, "a"),
		rec("Alpha", 2015, "b"),
		rec("Alpha", 2016, "c"),
	})

	assert.Len(t, p.UnitYear("Alpha", 2015), 2)
	assert.Len(t, p.UnitYear("Alpha", 2016), 1)
	assert.Empty(t, p.UnitYear("Alpha", 2017))
}

func TestYears(t *testing.T) {
	p := New([]model.PolicyRecord{
		rec("Alpha", 2016, "b"),
		rec("Alpha", 2014, "a"),
		rec("Alpha", 2016, "c"),
	})
	assert.Equal(t, []int{2014, 2016}, p.Years("Alpha"))
	assert.Empty(t, p.Years("Nowhere"))
}

func TestQualifyingPairs(t *testing.T) {
	p := New([]model.PolicyRecord{
		rec("Beta", 2015, "b1"),
		rec("Beta", 2015, "b2"),
		rec("Alpha", 2015, "a1"),
		rec("Alpha", 2015, "a2"),
		rec("Alpha", 2016, "a3"),
	})

	got := p.QualifyingPairs(2)
	assert.Equal(t, []UnitYear{
		{Unit: "Alpha", Year: 2015},
		{Unit: "Beta", Year: 2015},
	}, got)

	assert.Len(t, p.QualifyingPairs(1), 3)
	assert.Empty(t, p.QualifyingPairs(3))
}
