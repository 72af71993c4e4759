// Package model defines the typed schema shared across the pipeline:
// the coded policy panel, the election/tenure table, and the detection
// output records.
package model

// PolicyChange classifies how a document relates to prior policy.
type PolicyChange string

const (
	PolicyChangeNew          PolicyChange = "new_policy"
	PolicyChangeModification PolicyChange = "modification"
	PolicyChangeContinuation PolicyChange = "continuation"
	PolicyChangeUnclear      PolicyChange = "unclear"
)

// PositionStance is the coded value of a position field. The zero
// value (empty string) means the field was not coded at all.
type PositionStance string

const (
	StanceYes            PositionStance = "yes"
	StanceNo             PositionStance = "no"
	StanceReformOriented PositionStance = "reform_oriented"
	StanceMinimize       PositionStance = "minimize"
	StanceHigh           PositionStance = "high"
	StanceNotMentioned   PositionStance = "not_mentioned"
)

// AdministrationNotMentioned is the sentinel recorded when a document
// names no administration. It is excluded from transition detection.
const AdministrationNotMentioned = "not_mentioned"

// PolicyRecord is one coded policy document: the atomic row of the
// panel, grouped by (Unit, Year) for scoring.
type PolicyRecord struct {
	Unit       string `json:"unit"`
	Year       int    `json:"year"`
	DocumentID string `json:"document_id"`

	IdeologyScore *float64     `json:"ideology_score,omitempty"`
	PrimaryTopic  string       `json:"primary_topic,omitempty"`
	PolicyChange  PolicyChange `json:"policy_change,omitempty"`

	ExtensiveLenient  bool `json:"extensive_lenient"`
	ExtensivePunitive bool `json:"extensive_punitive"`
	IntensiveLenient  bool `json:"intensive_lenient"`
	IntensivePunitive bool `json:"intensive_punitive"`

	Administration string `json:"administration,omitempty"`

	SupportsDiversion    PositionStance `json:"supports_diversion,omitempty"`
	SupportsAlternatives PositionStance `json:"supports_alternatives,omitempty"`
	BailPosition         PositionStance `json:"position_on_bail,omitempty"`
	EnhancementsPosition PositionStance `json:"position_on_enhancements,omitempty"`
	RacialJusticeLevel   PositionStance `json:"racial_justice_emphasis,omitempty"`
}

// HasIdeology reports whether the document carries an ideology score.
func (r *PolicyRecord) HasIdeology() bool {
	return r.IdeologyScore != nil
}

// IncumbencyTag marks whether an election winner was the incumbent or
// a challenger.
type IncumbencyTag string

const (
	IncumbencyIncumbent  IncumbencyTag = "I"
	IncumbencyChallenger IncumbencyTag = "C"
)

// ElectionEvent is one row of the external election/tenure table: a
// winner and the years their tenure covers.
type ElectionEvent struct {
	Unit         string        `json:"unit"`
	ElectionYear int           `json:"election_year,omitempty"`
	TenureStart  int           `json:"tenure_start"`
	TenureEnd    int           `json:"tenure_end"`
	WinnerName   string        `json:"winner_name,omitempty"`
	Margin       *float64      `json:"margin,omitempty"`
	Close5pp     bool          `json:"close_5pp"`
	Close10pp    bool          `json:"close_10pp"`
	Close15pp    bool          `json:"close_15pp"`
	Incumbency   IncumbencyTag `json:"incumbency,omitempty"`
}

// ElectionContext is the election evidence attached to a disruption
// record when its unit-year falls inside a known tenure.
type ElectionContext struct {
	ElectionYear  int           `json:"election_year,omitempty"`
	WinnerName    string        `json:"winner_name,omitempty"`
	Margin        *float64      `json:"margin,omitempty"`
	Close5pp      bool          `json:"close_5pp"`
	Close10pp     bool          `json:"close_10pp"`
	Close15pp     bool          `json:"close_15pp"`
	ChallengerWon bool          `json:"challenger_won"`
	Incumbency    IncumbencyTag `json:"incumbency,omitempty"`
}
