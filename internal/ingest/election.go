package ingest

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justice-collab/disruption-cli/internal/model"
)

// LoadElections reads the external election/tenure table. Both CSV and
// XLSX files are accepted, dispatched on extension. Rows lacking a
// tenure range are skipped: they cannot be matched to any unit-year.
func LoadElections(path string) ([]model.ElectionEvent, error) {
	var rows [][]string
	var header []string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, header, err = readXLSX(path)
	default:
		rows, header, err = readCSV(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: elections %s", path)
	}

	cols := newColumnIndex(header)
	// The election table sometimes labels the unit column "district".
	unitCol := "county"
	if !cols.has(unitCol) {
		unitCol = "district"
	}
	for _, required := range []string{unitCol, "tenure_start", "tenure_end"} {
		if !cols.has(required) {
			return nil, eris.Errorf("ingest: elections: missing required column %q", required)
		}
	}

	var events []model.ElectionEvent
	skipped := 0
	for _, row := range rows {
		start, okStart := parseYear(cols.get(row, "tenure_start"))
		end, okEnd := parseYear(cols.get(row, "tenure_end"))
		if !okStart || !okEnd {
			skipped++
			continue
		}

		ev := model.ElectionEvent{
			Unit:        CanonicalUnit(cols.get(row, unitCol)),
			TenureStart: start,
			TenureEnd:   end,
			WinnerName:  cols.get(row, "winner_name"),
			Close5pp:    parseBool(cols.get(row, "close_5pp")),
			Close10pp:   parseBool(cols.get(row, "close_10pp")),
			Close15pp:   parseBool(cols.get(row, "close_15pp")),
			Incumbency:  model.IncumbencyTag(cols.get(row, "winner_incum_chall")),
		}
		if y, ok := parseYear(cols.get(row, "election_year")); ok {
			ev.ElectionYear = y
		}
		if m, err := strconv.ParseFloat(cols.get(row, "margin_1st_2nd"), 64); err == nil {
			ev.Margin = &m
		}

		events = append(events, ev)
	}

	zap.L().Info("ingest: elections loaded",
		zap.String("path", path),
		zap.Int("events", len(events)),
		zap.Int("skipped_missing_tenure", skipped),
	)

	return events, nil
}
