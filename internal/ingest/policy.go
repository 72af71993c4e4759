// Package ingest loads the coded policy panel and the optional
// election/tenure table from disk into the typed record schema. All
// field validation happens here, once, so downstream computations
// never re-check column presence.
package ingest

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/justice-collab/disruption-cli/internal/model"
)

var unitCaser = cases.Title(language.English)

// LoadPolicies reads a coded policy CSV and returns the records that
// can participate in scoring. Rows without a parseable year are
// dropped here (upstream data-quality responsibility) and reported in
// the second return value.
func LoadPolicies(path string) ([]model.PolicyRecord, int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "ingest: policies %s", path)
	}

	cols := newColumnIndex(header)
	for _, required := range []string{"county", "year"} {
		if !cols.has(required) {
			return nil, 0, eris.Errorf("ingest: policies: missing required column %q", required)
		}
	}
	if !cols.has("document_id") && !cols.has("filename") {
		return nil, 0, eris.New("ingest: policies: missing document identifier column (document_id or filename)")
	}

	var records []model.PolicyRecord
	dropped := 0
	for _, row := range rows {
		year, ok := parseYear(cols.get(row, "year"))
		if !ok {
			dropped++
			continue
		}

		rec := model.PolicyRecord{
			Unit:         CanonicalUnit(cols.get(row, "county")),
			Year:         year,
			DocumentID:   firstNonEmpty(cols.get(row, "document_id"), cols.get(row, "filename")),
			PrimaryTopic: cols.get(row, "primary_topic"),
			PolicyChange: parsePolicyChange(cols.get(row, "policy_change")),

			ExtensiveLenient:  parseBool(cols.get(row, "extensive_lenient")),
			ExtensivePunitive: parseBool(cols.get(row, "extensive_punitive")),
			IntensiveLenient:  parseBool(cols.get(row, "intensive_lenient")),
			IntensivePunitive: parseBool(cols.get(row, "intensive_punitive")),

			// The cleaned upstream panel prefixes the column with "da_".
			Administration: administrationOrSentinel(firstNonEmpty(
				cols.get(row, "administration"), cols.get(row, "da_administration"))),

			SupportsDiversion:    model.PositionStance(cols.get(row, "supports_diversion")),
			SupportsAlternatives: model.PositionStance(cols.get(row, "supports_alternatives")),
			BailPosition:         model.PositionStance(cols.get(row, "position_on_bail")),
			EnhancementsPosition: model.PositionStance(cols.get(row, "position_on_enhancements")),
			RacialJusticeLevel:   model.PositionStance(cols.get(row, "racial_justice_emphasis")),
		}
		if v, err := strconv.ParseFloat(cols.get(row, "ideology_score"), 64); err == nil {
			rec.IdeologyScore = &v
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, dropped, eris.New("ingest: policies: no scorable rows")
	}

	zap.L().Info("ingest: policies loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("dropped_missing_year", dropped),
	)

	return records, dropped, nil
}

// CanonicalUnit normalizes a unit name to title case so the panel,
// election table, and output tables agree on the grouping key.
func CanonicalUnit(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return unitCaser.String(strings.ToLower(name))
}

// columnIndex maps logical column names to positions, tolerating the
// "_clean" suffix the upstream cleaning stage emits.
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

func (c columnIndex) lookup(name string) (int, bool) {
	if i, ok := c[name]; ok {
		return i, true
	}
	i, ok := c[name+"_clean"]
	return i, ok
}

func (c columnIndex) has(name string) bool {
	_, ok := c.lookup(name)
	return ok
}

func (c columnIndex) get(row []string, name string) string {
	i, ok := c.lookup(name)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readCSV(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "read csv")
	}
	if len(all) < 2 {
		return nil, nil, eris.New("csv has no data rows")
	}
	return all[1:], all[0], nil
}

func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	// Years sometimes arrive float-formatted ("2019.0") from the
	// upstream cleaning stage.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) && f > 0 {
		return int(f), true
	}
	return 0, false
}

func parsePolicyChange(s string) model.PolicyChange {
	switch strings.ToLower(s) {
	case "new_policy", "clearly_new_policy":
		return model.PolicyChangeNew
	case "modification":
		return model.PolicyChangeModification
	case "continuation":
		return model.PolicyChangeContinuation
	default:
		return model.PolicyChangeUnclear
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "t":
		return true
	default:
		return false
	}
}

func administrationOrSentinel(s string) string {
	if s == "" {
		return model.AdministrationNotMentioned
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
