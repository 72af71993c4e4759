package reform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-collab/disruption-cli/internal/model"
	"github.com/justice-collab/disruption-cli/internal/panel"
)

func topicDoc(unit string, year int, id, topic string) model.PolicyRecord {
	return model.PolicyRecord{Unit: unit, Year: year, DocumentID: id, PrimaryTopic: topic}
}

func findEvent(events []model.NovelReformEvent, unit, name string) *model.NovelReformEvent {
	for i := range events {
		if events[i].Unit == unit && events[i].ReformName == name {
			return &events[i]
		}
	}
	return nil
}

func TestTrackFirstTopicPerUnit(t *testing.T) {
	p := panel.New([]model.PolicyRecord{
		topicDoc("Alpha", 2015, "a1", "diversion"),
		topicDoc("Alpha", 2016, "a2", "diversion"), // repeat, no event
		topicDoc("Alpha", 2016, "a3", "bail"),
	})

	events := Track(p)
	require.Len(t, events, 2)
	assert.Equal(t, 2015, findEvent(events, "Alpha", "diversion").Year)
	assert.Equal(t, 2016, findEvent(events, "Alpha", "bail").Year)
	for _, ev := range events {
		assert.Equal(t, model.ReformTopic, ev.ReformType)
	}
}

func TestTrackStatewideFirst(t *testing.T) {
	p := panel.New([]model.PolicyRecord{
		topicDoc("Alpha", 2015, "a1", "diversion"),
		topicDoc("Beta", 2016, "b1", "diversion"),
	})

	events := Track(p)
	assert.True(t, findEvent(events, "Alpha", "diversion").StatewideFirst)
	assert.False(t, findEvent(events, "Beta", "diversion").StatewideFirst)
}

func TestTrackStatewideFirstSameYearTieBreak(t *testing.T) {
	// Same adoption year: the lexicographically smaller unit claims the
	// statewide-first flag.
	p := panel.New([]model.PolicyRecord{
		topicDoc("Zeta", 2015, "z1", "bail"),
		topicDoc("Alpha", 2015, "a1", "bail"),
	})

	events := Track(p)
	assert.True(t, findEvent(events, "Alpha", "bail").StatewideFirst)
	assert.False(t, findEvent(events, "Zeta", "bail").StatewideFirst)
}

func TestTrackAdoptionRanks(t *testing.T) {
	p := panel.New([]model.PolicyRecord{
		topicDoc("Alpha", 2014, "a1", "diversion"),
		topicDoc("Beta", 2016, "b1", "diversion"),
		topicDoc("Gamma", 2016, "g1", "diversion"),
		topicDoc("Delta", 2018, "d1", "diversion"),
	})

	events := Track(p)
	assert.Equal(t, 1, findEvent(events, "Alpha", "diversion").AdoptionRank)
	// Same-year adopters share the dense rank.
	assert.Equal(t, 2, findEvent(events, "Beta", "diversion").AdoptionRank)
	assert.Equal(t, 2, findEvent(events, "Gamma", "diversion").AdoptionRank)
	assert.Equal(t, 3, findEvent(events, "Delta", "diversion").AdoptionRank)
}

func TestTrackPositionReforms(t *testing.T) {
	p := panel.New([]model.PolicyRecord{
		{Unit: "Alpha", Year: 2015, DocumentID: "a1",
			SupportsDiversion: model.StanceYes,
			BailPosition:      model.StanceReformOriented},
		{Unit: "Alpha", Year: 2016, DocumentID: "a2",
			SupportsDiversion: model.StanceYes}, // repeat, no event
		{Unit: "Alpha", Year: 2017, DocumentID: "a3",
			EnhancementsPosition: model.StanceMinimize,
			RacialJusticeLevel:   model.StanceHigh,
			SupportsAlternatives: model.StanceYes},
	})

	events := Track(p)
	require.Len(t, events, 5)

	byName := make(map[string]model.NovelReformEvent)
	for _, ev := range events {
		byName[ev.ReformName] = ev
	}
	assert.Equal(t, 2015, byName["diversion_support"].Year)
	assert.Equal(t, 2015, byName["bail_reform"].Year)
	assert.Equal(t, 2017, byName["enhancement_limits"].Year)
	assert.Equal(t, 2017, byName["racial_justice_high"].Year)
	assert.Equal(t, 2017, byName["alternatives_support"].Year)

	// Position events never carry the statewide-first flag.
	for _, ev := range events {
		assert.Equal(t, model.ReformPosition, ev.ReformType)
		assert.False(t, ev.StatewideFirst)
	}
}

func TestTrackNonTriggerStancesIgnored(t *testing.T) {
	p := panel.New([]model.PolicyRecord{
		{Unit: "Alpha", Year: 2015, DocumentID: "a1",
			SupportsDiversion: model.StanceNo,
			BailPosition:      model.StanceNotMentioned},
	})
	assert.Empty(t, Track(p))
}

func TestTrackEventOrdering(t *testing.T) {
	p := panel.New([]model.PolicyRecord{
		topicDoc("Zeta", 2014, "z1", "bail"),
		topicDoc("Alpha", 2016, "a1", "diversion"),
		topicDoc("Beta", 2014, "b1", "sentencing"),
	})

	events := Track(p)
	require.Len(t, events, 3)
	// Sorted by year, then unit.
	assert.Equal(t, "Beta", events[0].Unit)
	assert.Equal(t, "Zeta", events[1].Unit)
	assert.Equal(t, "Alpha", events[2].Unit)
}

func TestForUnit(t *testing.T) {
	events := []model.NovelReformEvent{
		{Unit: "Alpha"}, {Unit: "Beta"}, {Unit: "Alpha"},
	}
	assert.Equal(t, 2, ForUnit(events, "Alpha"))
	assert.Equal(t, 0, ForUnit(events, "Gamma"))
}
