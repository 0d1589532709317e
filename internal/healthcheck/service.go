// Package healthcheck sequences a manual health check: predict, save, then
// refresh the derived views.
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	contactentity "github.com/parkbj12/songil-ai/internal/contact/entity"
	goalentity "github.com/parkbj12/songil-ai/internal/goal/entity"
	"github.com/parkbj12/songil-ai/internal/healthcheck/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/status"
	"github.com/parkbj12/songil-ai/internal/user"
	"github.com/parkbj12/songil-ai/pkg/utilities"
)

const refreshTimeout = 10 * time.Second

var (
	ErrSessionNotValid = user.ErrSessionNotValid
	ErrNoMetrics       = fmt.Errorf("%w: at least one of heart rate, steps, sleep or temperature is required", remote.ErrValidation)
	// ErrNotSaved marks a check whose prediction succeeded but whose save did not.
	ErrNotSaved = errors.New("prediction not saved")
)

type Backend interface {
	LookupUser(ctx context.Context, userID string, f remote.Filters) (*remote.LookupResult, error)
	PredictAnomaly(ctx context.Context, userID string, samples []remote.SensorSample) (*remote.Prediction, error)
	SaveLog(ctx context.Context, userID, date string, samples []remote.SensorSample, p *remote.Prediction) (*remote.SaveResult, error)
}

// Goals refreshes goal progress. *goal.Service satisfies it.
type Goals interface {
	Refresh(ctx context.Context, userID string) (goalentity.Progress, error)
}

// Contacts lists the session user's contacts. *contact.Book satisfies it.
type Contacts interface {
	List(ctx context.Context) ([]contactentity.EmergencyContact, error)
}

type Options struct {
	Backend Backend
	Session user.SessionReader
	// Goals and Contacts are optional.
	Goals    Goals
	Contacts Contacts
	Clock    clockwork.Clock
	Logger   *zap.SugaredLogger
}

type Orchestrator struct {
	backend  Backend
	session  user.SessionReader
	goals    Goals
	contacts Contacts
	clock    clockwork.Clock
	logger   *zap.SugaredLogger
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		backend:  opts.Backend,
		session:  opts.Session,
		goals:    opts.Goals,
		contacts: opts.Contacts,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	return o
}

// Check runs one manual health check.
//
// It fails fast with ErrSessionNotValid or ErrNoMetrics before any network
// call. A predict failure aborts with nothing persisted. A save failure
// returns the result, prediction included, together with an error wrapping
// ErrNotSaved. The refresh after a successful save is advisory.
func (o *Orchestrator) Check(ctx context.Context, sample remote.SensorSample) (*entity.Result, error) {
	userID, err := user.Require(o.session)
	if err != nil {
		return nil, err
	}
	if !sample.HasMetrics() {
		return nil, ErrNoMetrics
	}
	if sample.Activity == 0 {
		sample.Activity = status.Activity(sample.Steps)
	}

	res := &entity.Result{
		CheckID: utilities.NewSnowflakeID(),
		UserID:  userID,
		Date:    remote.Day(o.clock.Now()),
		Sample:  sample,
	}
	log := o.logger.With("check_id", res.CheckID, "user_id", userID)
	samples := []remote.SensorSample{sample}

	pred, err := o.backend.PredictAnomaly(ctx, userID, samples)
	if err != nil {
		log.Warnw("predict failed", "err", err)
		return nil, fmt.Errorf("predict: %w", err)
	}
	res.Prediction = pred
	res.Anomaly = status.ClassifyAnomaly(pred.AnomalyScore, pred.Threshold)

	saved, err := o.backend.SaveLog(ctx, userID, res.Date, samples, pred)
	if err != nil {
		log.Warnw("save failed after predict", "err", err)
		return res, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	res.Saved = true
	res.DocumentID = saved.DocumentID
	log.Infow("health check saved", "document_id", saved.DocumentID,
		"anomaly_score", pred.AnomalyScore, "anomaly", res.Anomaly)

	o.refresh(ctx, res)
	return res, nil
}

// refresh reloads the summary and goal progress side by side. Failures are
// logged only.
func (o *Orchestrator) refresh(ctx context.Context, res *entity.Result) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	var g errgroup.Group
	g.Go(func() error {
		sum, err := o.Summarize(ctx)
		if err != nil {
			o.logger.Warnw("summary refresh failed", "check_id", res.CheckID, "err", err)
			return nil
		}
		res.Summary = sum
		return nil
	})
	if o.goals != nil {
		g.Go(func() error {
			p, err := o.goals.Refresh(ctx, res.UserID)
			if err != nil {
				o.logger.Warnw("goal progress refresh failed", "check_id", res.CheckID, "err", err)
				return nil
			}
			res.Progress = &p
			return nil
		})
	}
	_ = g.Wait()
}

// Summarize reports whether today was checked and today's health score.
func (o *Orchestrator) Summarize(ctx context.Context) (*entity.Summary, error) {
	userID, err := user.Require(o.session)
	if err != nil {
		return nil, err
	}
	sum := &entity.Summary{Date: remote.Day(o.clock.Now())}
	if o.contacts != nil {
		if list, err := o.contacts.List(ctx); err == nil {
			sum.ContactCount = len(list)
		}
	}
	found, err := o.backend.LookupUser(ctx, userID, remote.Filters{Limit: 1, Date: sum.Date})
	if err != nil {
		return nil, fmt.Errorf("fetch today's log: %w", err)
	}
	if len(found.Entries) == 0 {
		return sum, nil
	}
	e := found.Entries[0]
	score := status.HealthScore(status.ScoreInput{
		AnomalyScore: e.AnomalyScore,
		Steps:        e.TotalSteps(),
		Sleep:        e.AverageSleep(),
		CheckedToday: true,
	})
	sum.CheckedToday = true
	sum.Entry = &e
	sum.Score = &score
	sum.Grade = status.GradeScore(score)
	return sum, nil
}
