package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justice-collab/disruption-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testParams() model.RunParams {
	return model.RunParams{
		PoliciesPath: "panel.csv",
		MinDocs:      3,
		Lookback:     2,
		NormMethod:   "minmax",

		VelocityWeight:   0.30,
		NoveltyWeight:    0.25,
		TopicShiftWeight: 0.20,
		MarginWeight:     0.15,
		TransitionWeight: 0.10,
	}
}

func testResult() *model.DetectionResult {
	first := 2017
	return &model.DetectionResult{
		Disruptions: []model.DisruptionRecord{
			{Unit: "Harris", Year: 2017, Score: 0.82,
				Classification: model.ClassMajor, Direction: model.DirectionProgressive},
			{Unit: "Travis", Year: 2016, Score: 0.12,
				Classification: model.ClassMinor, Direction: model.DirectionNeutral},
		},
		Reforms: []model.NovelReformEvent{
			{Unit: "Harris", Year: 2017, ReformType: model.ReformTopic,
				ReformName: "diversion", StatewideFirst: true, AdoptionRank: 1},
		},
		Summaries: []model.UnitSummary{
			{Unit: "Harris", UnitYears: 3, Disruptions: 1, MaxScore: 0.82,
				MostDisruptiveYear: 2017, DominantDirection: model.DirectionProgressive,
				FirstDisruption: &first},
		},
	}
}

func TestSQLiteCreateAndGetRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testParams())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Equal(t, testParams(), got.Params)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetRun(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestSQLiteSaveResult(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testParams())
	require.NoError(t, err)

	require.NoError(t, st.SaveResult(ctx, run.ID, testResult()))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 2, got.Records)
	assert.Equal(t, 1, got.Reforms)
}

func TestSQLiteSaveResultUnknownRun(t *testing.T) {
	st := newTestStore(t)
	err := st.SaveResult(context.Background(), "nonexistent", testResult())
	assert.Error(t, err)
}

func TestSQLiteUpdateRunStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testParams())
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)

	assert.Error(t, st.UpdateRunStatus(ctx, "nonexistent", model.RunStatusFailed))
}

func TestSQLiteListRuns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.CreateRun(ctx, testParams())
	require.NoError(t, err)
	second, err := st.CreateRun(ctx, testParams())
	require.NoError(t, err)
	require.NoError(t, st.SaveResult(ctx, second.ID, testResult()))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, second.ID, complete[0].ID)

	running, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, first.ID, running[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
