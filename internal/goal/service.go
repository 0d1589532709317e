// Package goal keeps per-user step and sleep targets and measures today's
// progress against them.
package goal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/goal/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/setting"
)

type Metric string

const (
	MetricSteps Metric = "steps"
	MetricSleep Metric = "sleep"
)

var ErrInvalidGoal = errors.New("invalid goal")

// Store is where goals persist. setting.Service satisfies it.
type Store interface {
	GetJSON(ctx context.Context, id string, dst any) error
	PutJSON(ctx context.Context, id, category string, v any) error
}

type Logs interface {
	LookupUser(ctx context.Context, userID string, f remote.Filters) (*remote.LookupResult, error)
}

type Service struct {
	store  Store
	logs   Logs
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func NewService(store Store, logs Logs, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: store, logs: logs, clock: clock, logger: logger}
}

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricSteps, MetricSleep:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidGoal, s)
	}
}

// Goals returns the stored goals; none stored is not an error.
func (s *Service) Goals(ctx context.Context, userID string) (entity.HealthGoals, error) {
	var g entity.HealthGoals
	err := s.store.GetJSON(ctx, setting.GoalsKey(userID), &g)
	if err != nil && !errors.Is(err, setting.ErrNotFound) {
		return entity.HealthGoals{}, fmt.Errorf("load goals: %w", err)
	}
	return g, nil
}

// SetGoal stores target for metric, keeping the other goal as it was.
func (s *Service) SetGoal(ctx context.Context, userID string, metric Metric, target float64) (entity.HealthGoals, error) {
	if userID == "" {
		return entity.HealthGoals{}, fmt.Errorf("%w: user id is required", ErrInvalidGoal)
	}
	if !(target > 0) || math.IsInf(target, 0) {
		return entity.HealthGoals{}, fmt.Errorf("%w: target must be positive", ErrInvalidGoal)
	}
	g, err := s.Goals(ctx, userID)
	if err != nil {
		return entity.HealthGoals{}, err
	}
	switch metric {
	case MetricSteps:
		g.Steps = &target
	case MetricSleep:
		g.Sleep = &target
	default:
		return entity.HealthGoals{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidGoal, metric)
	}
	if err := s.store.PutJSON(ctx, setting.GoalsKey(userID), setting.CategoryGoals, g); err != nil {
		return entity.HealthGoals{}, fmt.Errorf("save goals: %w", err)
	}
	s.logger.Infow("goal saved", "user_id", userID, "metric", metric, "target", target)
	return g, nil
}

// Progress measures entry against g: total steps and average sleep.
func Progress(g entity.HealthGoals, e *remote.HealthLogEntry) entity.Progress {
	var p entity.Progress
	if e == nil || len(e.SensorData) == 0 {
		return p
	}
	if g.Steps != nil && *g.Steps > 0 {
		v := math.Min(100, e.TotalSteps() / *g.Steps * 100)
		p.Steps = &v
	}
	if g.Sleep != nil && *g.Sleep > 0 {
		v := math.Min(100, e.AverageSleep() / *g.Sleep * 100)
		p.Sleep = &v
	}
	return p
}

// Refresh measures today's log against the user's goals.
func (s *Service) Refresh(ctx context.Context, userID string) (entity.Progress, error) {
	g, err := s.Goals(ctx, userID)
	if err != nil {
		return entity.Progress{}, err
	}
	if g.Steps == nil && g.Sleep == nil {
		return entity.Progress{}, nil
	}
	res, err := s.logs.LookupUser(ctx, userID, remote.Filters{Limit: 1, Date: remote.Day(s.clock.Now())})
	if err != nil {
		return entity.Progress{}, fmt.Errorf("fetch today's log: %w", err)
	}
	if len(res.Entries) == 0 {
		return entity.Progress{}, nil
	}
	return Progress(g, &res.Entries[0]), nil
}
