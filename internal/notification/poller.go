// Package notification polls the backend for health-check prompts and
// surfaces them one at a time.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/notification/entity"
	"github.com/parkbj12/songil-ai/internal/user"
)

const (
	DefaultInitialDelay = 30 * time.Minute
	DefaultInterval     = 5 * time.Minute
	markTimeout         = 10 * time.Second
)

// ErrInFlight is returned by Poll while another cycle is still fetching.
var ErrInFlight = errors.New("poll already in flight")

// Source is the slice of the backend client the poller uses.
type Source interface {
	FetchNotifications(ctx context.Context, userID string) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkResponded(ctx context.Context, id string) error
}

// Presenter displays the surfaced notification.
type Presenter interface {
	Show(n entity.Notification)
	Hide()
}

type PollerOptions struct {
	Source    Source
	Session   user.SessionReader
	Presenter Presenter
	Clock     clockwork.Clock
	Initial   time.Duration
	Interval  time.Duration
	Logger    *zap.SugaredLogger
}

// Poller runs fetch cycles while the session is valid. Cycles never overlap.
type Poller struct {
	source    Source
	session   user.SessionReader
	presenter Presenter
	clock     clockwork.Clock
	initial   time.Duration
	interval  time.Duration
	logger    *zap.SugaredLogger

	inFlight atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	owner   string
	shownID string
	active  *entity.Notification
}

func NewPoller(opts PollerOptions) *Poller {
	p := &Poller{
		source:    opts.Source,
		session:   opts.Session,
		presenter: opts.Presenter,
		clock:     opts.Clock,
		initial:   opts.Initial,
		interval:  opts.Interval,
		logger:    opts.Logger,
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.initial <= 0 {
		p.initial = DefaultInitialDelay
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.logger == nil {
		p.logger = zap.NewNop().Sugar()
	}
	if p.presenter == nil {
		p.presenter = nopPresenter{}
	}
	return p
}

// Start activates the polling loop: the first cycle runs after the initial
// grace delay, later ones every interval. It reports false when already running.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	p.mu.Unlock()

	go p.run(ctx, done)
	return true
}

// Stop ends the loop and waits for it. A cycle in flight finishes first.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		p.mu.Lock()
		if p.done == done {
			p.cancel()
			p.cancel, p.done = nil, nil
		}
		p.mu.Unlock()
	}()

	timer := p.clock.NewTimer(p.initial)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.Chan():
		}
		err := p.Poll(ctx)
		switch {
		case errors.Is(err, user.ErrSessionNotValid):
			p.logger.Infow("session no longer valid, polling stopped")
			return
		case err != nil:
			p.logger.Warnw("notification poll failed", "err", err)
		}
		timer.Reset(p.interval)
	}
}

// Poll runs one cycle: fetch, then surface the newest notification if it
// has not been surfaced yet. A pending notification is marked read on its
// first surface.
func (p *Poller) Poll(ctx context.Context) error {
	userID, err := user.Require(p.session)
	if err != nil {
		return err
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer p.inFlight.Store(false)

	ns, err := p.source.FetchNotifications(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	p.mu.Lock()
	if p.owner != userID {
		p.owner, p.shownID, p.active = userID, "", nil
	}
	if len(ns) == 0 || ns[0].ID == p.shownID {
		p.mu.Unlock()
		return nil
	}
	n := ns[0]
	firstRead := n.Advance(entity.StatusRead)
	p.shownID = n.ID
	p.active = &n
	p.mu.Unlock()

	p.logger.Infow("surfacing notification", "id", n.ID, "user_id", userID)
	p.presenter.Show(n)
	if firstRead {
		p.mark(ctx, "read", n.ID, p.source.MarkRead)
	}
	return nil
}

// Active returns the currently surfaced notification.
func (p *Poller) Active() (entity.Notification, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return entity.Notification{}, false
	}
	return *p.active, true
}

// Responded records that the user answered the surfaced notification and
// clears it. It is a no-op when nothing is surfaced.
func (p *Poller) Responded(ctx context.Context) {
	p.mu.Lock()
	n := p.active
	p.active = nil
	p.mu.Unlock()
	if n == nil || !n.Advance(entity.StatusResponded) {
		return
	}
	p.presenter.Hide()
	p.mark(ctx, "responded", n.ID, p.source.MarkResponded)
}

// mark is fire-and-forget: failures are logged only.
func (p *Poller) mark(ctx context.Context, what, id string, fn func(context.Context, string) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()
	if err := fn(ctx, id); err != nil {
		p.logger.Warnw("mark notification failed", "status", what, "id", id, "err", err)
	}
}

type nopPresenter struct{}

func (nopPresenter) Show(entity.Notification) {}
func (nopPresenter) Hide()                    {}
