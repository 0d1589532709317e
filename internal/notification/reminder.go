package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/setting"
	"github.com/parkbj12/songil-ai/internal/user"
)

const (
	DefaultReminderTime = "14:00"
	ReminderMessage     = "Time for today's health check. Record and save your readings."
	clockLayout         = "15:04"
)

var ErrInvalidTime = errors.New("reminder time must be HH:MM")

// Logs is the lookup the reminder uses to see whether today was checked.
type Logs interface {
	LookupUser(ctx context.Context, userID string, f remote.Filters) (*remote.LookupResult, error)
}

// Settings stores the configured reminder time. setting.Service satisfies it.
type Settings interface {
	GetJSON(ctx context.Context, id string, dst any) error
	PutJSON(ctx context.Context, id, category string, v any) error
}

type ReminderOptions struct {
	Logs     Logs
	Session  user.SessionReader
	Settings Settings
	// Default is used when Settings holds no time.
	Default string
	Notify  func(message string)
	Clock   clockwork.Clock
	Logger  *zap.SugaredLogger
}

// Reminder nags once a day, at a fixed minute, when no log exists for today.
type Reminder struct {
	logs     Logs
	session  user.SessionReader
	settings Settings
	def      string
	notify   func(string)
	clock    clockwork.Clock
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	firedDate string
}

func NewReminder(opts ReminderOptions) *Reminder {
	r := &Reminder{
		logs:     opts.Logs,
		session:  opts.Session,
		settings: opts.Settings,
		def:      opts.Default,
		notify:   opts.Notify,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if _, err := time.Parse(clockLayout, r.def); err != nil {
		r.def = DefaultReminderTime
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.logger == nil {
		r.logger = zap.NewNop().Sugar()
	}
	if r.notify == nil {
		r.notify = func(string) {}
	}
	return r
}

// Time returns the configured HH:MM.
func (r *Reminder) Time(ctx context.Context) string {
	if r.settings == nil {
		return r.def
	}
	var at string
	if err := r.settings.GetJSON(ctx, setting.ReminderTimeKey, &at); err != nil {
		if !errors.Is(err, setting.ErrNotFound) {
			r.logger.Warnw("read reminder time", "err", err)
		}
		return r.def
	}
	if _, err := time.Parse(clockLayout, at); err != nil {
		return r.def
	}
	return at
}

func (r *Reminder) SetTime(ctx context.Context, at string) error {
	t, err := time.Parse(clockLayout, at)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, at)
	}
	if r.settings == nil {
		r.def = t.Format(clockLayout)
		return nil
	}
	return r.settings.PutJSON(ctx, setting.ReminderTimeKey, setting.CategoryReminder, t.Format(clockLayout))
}

// Run checks once a minute until ctx ends.
func (r *Reminder) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Tick(ctx)
		}
	}
}

// Tick performs one check and reports whether a reminder was emitted.
func (r *Reminder) Tick(ctx context.Context) bool {
	now := r.clock.Now()
	if now.Format(clockLayout) != r.Time(ctx) {
		return false
	}
	today := remote.Day(now)
	r.mu.Lock()
	done := r.firedDate == today
	r.mu.Unlock()
	if done {
		return false
	}
	userID, err := user.Require(r.session)
	if err != nil {
		return false
	}
	res, err := r.logs.LookupUser(ctx, userID, remote.Filters{Limit: 1, Date: today})
	if err != nil {
		r.logger.Warnw("reminder lookup failed", "user_id", userID, "err", err)
		return false
	}

	r.mu.Lock()
	r.firedDate = today
	r.mu.Unlock()
	if res.Count > 0 {
		return false
	}
	r.logger.Infow("daily reminder", "user_id", userID, "date", today)
	r.notify(ReminderMessage)
	return true
}
