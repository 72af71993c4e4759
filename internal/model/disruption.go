package model

import "time"

// Classification is the severity label assigned to a composite score.
type Classification string

const (
	ClassMajor       Classification = "major_disruption"
	ClassSignificant Classification = "significant_disruption"
	ClassModerate    Classification = "moderate_disruption"
	ClassMinor       Classification = "minor_disruption"
	ClassStable      Classification = "stable"
)

// Direction labels the sign of the raw ideology velocity.
type Direction string

const (
	DirectionProgressive Direction = "progressive"
	DirectionTraditional Direction = "traditional"
	DirectionNeutral     Direction = "neutral"
)

// UnitYearSignals holds the five raw signals plus the descriptive
// fields computed for one (unit, year) cell.
type UnitYearSignals struct {
	Unit string `json:"unit"`
	Year int    `json:"year"`

	IdeologyVelocity float64 `json:"ideology_velocity"`
	NoveltyIndex     float64 `json:"novelty_index"`
	TopicShift       float64 `json:"topic_shift"`
	MarginReversal   float64 `json:"margin_reversal"`
	Transition       int     `json:"transition"`

	ExtensiveReversal bool `json:"extensive_reversal"`
	IntensiveReversal bool `json:"intensive_reversal"`

	DocumentCount     int      `json:"n_documents"`
	NewPolicyCount    int      `json:"n_new_policies"`
	MeanIdeology      *float64 `json:"mean_ideology,omitempty"`
	PriorMeanIdeology *float64 `json:"prior_mean_ideology,omitempty"`
	TopTopics         []string `json:"top_topics,omitempty"`
}

// NormalizedSignals holds the column-normalized values of the four
// continuous signals. The binary transition signal is not normalized.
type NormalizedSignals struct {
	IdeologyVelocity float64 `json:"ideology_velocity"`
	NoveltyIndex     float64 `json:"novelty_index"`
	TopicShift       float64 `json:"topic_shift"`
	MarginReversal   float64 `json:"margin_reversal"`
}

// DisruptionRecord is the scored, classified output row for one
// unit-year.
type DisruptionRecord struct {
	Unit string `json:"unit"`
	Year int    `json:"year"`

	Signals    UnitYearSignals   `json:"signals"`
	Normalized NormalizedSignals `json:"normalized"`

	Score          float64        `json:"score"`
	Classification Classification `json:"classification"`
	Direction      Direction      `json:"direction"`

	Election *ElectionContext `json:"election,omitempty"`
}

// ReformType distinguishes the two kinds of novelty the tracker emits.
type ReformType string

const (
	ReformTopic    ReformType = "novel_topic"
	ReformPosition ReformType = "novel_position"
)

// NovelReformEvent records a unit's first adoption of a topic or
// cataloged position. StatewideFirst is only ever set on topic events.
type NovelReformEvent struct {
	Unit           string     `json:"unit"`
	Year           int        `json:"year"`
	ReformType     ReformType `json:"reform_type"`
	ReformName     string     `json:"reform_name"`
	DocumentID     string     `json:"document_id,omitempty"`
	IdeologyScore  *float64   `json:"ideology_score,omitempty"`
	StatewideFirst bool       `json:"statewide_first"`
	AdoptionRank   int        `json:"adoption_rank"`
}

// UnitSummary is the one-row-per-unit reduction of the disruption
// table and the reform events.
type UnitSummary struct {
	Unit               string    `json:"unit"`
	UnitYears          int       `json:"unit_years"`
	Disruptions        int       `json:"disruptions"`
	MajorDisruptions   int       `json:"major_disruptions"`
	MostDisruptiveYear int       `json:"most_disruptive_year"`
	MaxScore           float64   `json:"max_score"`
	DominantDirection  Direction `json:"dominant_direction"`
	FirstDisruption    *int      `json:"first_disruption,omitempty"`
	NovelReforms       int       `json:"novel_reforms"`
}

// RunStatus represents the state of a persisted detection run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunParams records the inputs and tuning of a detection run so a
// persisted run can be reproduced.
type RunParams struct {
	PoliciesPath  string `json:"policies_path"`
	ElectionsPath string `json:"elections_path,omitempty"`

	MinDocs    int    `json:"min_docs"`
	Lookback   int    `json:"lookback"`
	NormMethod string `json:"norm_method"`

	VelocityWeight   float64 `json:"velocity_weight"`
	NoveltyWeight    float64 `json:"novelty_weight"`
	TopicShiftWeight float64 `json:"topic_shift_weight"`
	MarginWeight     float64 `json:"margin_weight"`
	TransitionWeight float64 `json:"transition_weight"`
}

// DetectionRun is one persisted execution of the detect pipeline.
type DetectionRun struct {
	ID        string    `json:"id"`
	Params    RunParams `json:"params"`
	Status    RunStatus `json:"status"`
	Records   int       `json:"records"`
	Reforms   int       `json:"reforms"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DetectionResult bundles the three output tables of one run.
type DetectionResult struct {
	Disruptions []DisruptionRecord `json:"disruptions"`
	Reforms     []NovelReformEvent `json:"reforms"`
	Summaries   []UnitSummary      `json:"summaries"`
}
