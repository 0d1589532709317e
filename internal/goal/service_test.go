package goal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkbj12/songil-ai/internal/goal/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/setting"
	"github.com/parkbj12/songil-ai/pkg/database"
)

type fakeLogs struct {
	entries []remote.HealthLogEntry
	filters []remote.Filters
}

func (f *fakeLogs) LookupUser(ctx context.Context, id string, flt remote.Filters) (*remote.LookupResult, error) {
	f.filters = append(f.filters, flt)
	return &remote.LookupResult{UserID: id, Entries: f.entries, Count: len(f.entries)}, nil
}

func newTestService(t *testing.T, logs Logs, clock clockwork.Clock) *Service {
	t.Helper()
	db, err := database.Connect(database.Config{DSN: filepath.Join(t.TempDir(), "goals.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := setting.Open(context.Background(), db)
	require.NoError(t, err)
	return NewService(store, logs, clock, nil)
}

func ptr(v float64) *float64 { return &v }

func TestSetGoalKeepsOtherMetric(t *testing.T) {
	svc := newTestService(t, &fakeLogs{}, nil)
	ctx := context.Background()

	g, err := svc.Goals(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, g.Steps)

	_, err = svc.SetGoal(ctx, "alice", MetricSteps, 8000)
	require.NoError(t, err)
	_, err = svc.SetGoal(ctx, "alice", MetricSleep, 7.5)
	require.NoError(t, err)

	g, err = svc.Goals(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, g.Steps)
	require.NotNil(t, g.Sleep)
	assert.Equal(t, 8000.0, *g.Steps)
	assert.Equal(t, 7.5, *g.Sleep)

	other, err := svc.Goals(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, other.Steps)
}

func TestSetGoalRejects(t *testing.T) {
	svc := newTestService(t, &fakeLogs{}, nil)
	ctx := context.Background()
	for _, target := range []float64{0, -1} {
		_, err := svc.SetGoal(ctx, "alice", MetricSteps, target)
		assert.ErrorIs(t, err, ErrInvalidGoal)
	}
	_, err := svc.SetGoal(ctx, "alice", Metric("weight"), 70)
	assert.ErrorIs(t, err, ErrInvalidGoal)
	_, err = ParseMetric("Weight")
	assert.ErrorIs(t, err, ErrInvalidGoal)
	m, err := ParseMetric(" Sleep ")
	require.NoError(t, err)
	assert.Equal(t, MetricSleep, m)
}

func TestProgress(t *testing.T) {
	e := &remote.HealthLogEntry{SensorData: []remote.SensorSample{{Steps: 3000, Sleep: 6}, {Steps: 1000, Sleep: 8}}}

	p := Progress(entity.HealthGoals{Steps: ptr(8000), Sleep: ptr(8)}, e)
	require.NotNil(t, p.Steps)
	require.NotNil(t, p.Sleep)
	assert.InDelta(t, 50, *p.Steps, 1e-9)
	assert.InDelta(t, 87.5, *p.Sleep, 1e-9)

	p = Progress(entity.HealthGoals{Steps: ptr(2000)}, e)
	assert.Equal(t, 100.0, *p.Steps)
	assert.Nil(t, p.Sleep)

	assert.True(t, Progress(entity.HealthGoals{Steps: ptr(1)}, &remote.HealthLogEntry{}).Empty())
	assert.True(t, Progress(entity.HealthGoals{Steps: ptr(1)}, nil).Empty())
}

func TestRefreshUsesTodaysLog(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 6, 12, 0, 0, 0, time.UTC))
	logs := &fakeLogs{entries: []remote.HealthLogEntry{{SensorData: []remote.SensorSample{{Steps: 4000}}}}}
	svc := newTestService(t, logs, clock)
	ctx := context.Background()

	// no goals: no lookup
	p, err := svc.Refresh(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Empty(t, logs.filters)

	_, err = svc.SetGoal(ctx, "alice", MetricSteps, 10000)
	require.NoError(t, err)
	p, err = svc.Refresh(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 40, *p.Steps, 1e-9)
	assert.Equal(t, []remote.Filters{{Limit: 1, Date: "2025-11-06"}}, logs.filters)
}
