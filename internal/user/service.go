// Package user owns the identifier session and the debounced validation that
// guards it.
package user

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/debounce"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/user/entity"
)

const (
	MinLength       = 3
	DefaultDebounce = 500 * time.Millisecond
	lookupTimeout   = 10 * time.Second
	debounceKey     = "user_id"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Lookup is the existence check the validator needs from the backend.
type Lookup interface {
	LookupUser(ctx context.Context, userID string, f remote.Filters) (*remote.LookupResult, error)
}

// Store persists the last validated identifier. setting.Service satisfies it.
type Store interface {
	LastUserID(ctx context.Context) (string, error)
	SetLastUserID(ctx context.Context, id string) error
}

// Listener observes state changes; it runs on the goroutine that caused the change.
type Listener func(entity.State)

// Classify applies the syntax rules only.
func Classify(id string) (entity.Phase, entity.Reason) {
	switch {
	case id == "":
		return entity.PhaseEmpty, entity.ReasonNone
	case !idPattern.MatchString(id):
		return entity.PhaseInvalid, entity.ReasonCharset
	case len(id) < MinLength:
		return entity.PhaseInvalid, entity.ReasonLength
	default:
		return entity.PhasePending, entity.ReasonNone
	}
}

type ValidatorOptions struct {
	Lookup Lookup
	// Store is optional; without it nothing survives a restart.
	Store    Store
	Clock    clockwork.Clock
	Debounce time.Duration
	Logger   *zap.SugaredLogger
}

// Validator drives Empty → Invalid | Pending → Valid for the identifier input.
type Validator struct {
	lookup    Lookup
	store     Store
	clock     clockwork.Clock
	delay     time.Duration
	debouncer *debounce.Debouncer
	logger    *zap.SugaredLogger
	session   *Session

	mu        sync.Mutex
	input     string
	seq       uint64
	state     entity.State
	listeners []Listener

	notifyMu     sync.Mutex
	lastNotified uint64
}

func NewValidator(opts ValidatorOptions) *Validator {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Validator{
		lookup:    opts.Lookup,
		store:     opts.Store,
		clock:     clock,
		delay:     delay,
		debouncer: debounce.New(clock),
		logger:    logger,
		session:   &Session{},
	}
}

// Session exposes the session read-only.
func (v *Validator) Session() SessionReader { return v.session }

func (v *Validator) State() entity.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// OnChange registers l for every subsequent state change.
func (v *Validator) OnChange(l Listener) {
	v.mu.Lock()
	v.listeners = append(v.listeners, l)
	v.mu.Unlock()
}

// Input records a new value of the identifier field. Syntax is judged
// immediately; a syntactically valid id gets one existence check once the
// input has been quiet for the debounce delay.
func (v *Validator) Input(id string) entity.State {
	v.mu.Lock()
	if id == v.input && v.state.Phase != entity.PhaseEmpty {
		st := v.state
		v.mu.Unlock()
		return st
	}
	v.seq++
	v.input = id
	phase, reason := Classify(id)
	st := entity.State{Phase: phase, Reason: reason, Candidate: id, Seq: v.seq}
	v.state = st
	v.session.invalidate()
	if phase == entity.PhasePending {
		req := entity.ValidationRequest{Seq: v.seq, CandidateID: id, IssuedAt: v.clock.Now()}
		v.debouncer.Schedule(debounceKey, v.delay, func() { v.check(req) })
	} else {
		v.debouncer.Cancel(debounceKey)
	}
	v.mu.Unlock()

	v.notify(st)
	return st
}

// Resume re-validates the identifier persisted by a previous run, if any.
func (v *Validator) Resume(ctx context.Context) (string, bool) {
	if v.store == nil {
		return "", false
	}
	id, err := v.store.LastUserID(ctx)
	if err != nil || id == "" {
		return "", false
	}
	v.Input(id)
	return id, true
}

// Close drops any pending existence check.
func (v *Validator) Close() {
	v.debouncer.Stop()
}

func (v *Validator) current(seq uint64, id string) bool {
	return seq == v.seq && id == v.input
}

func (v *Validator) check(req entity.ValidationRequest) {
	v.mu.Lock()
	live := v.current(req.Seq, req.CandidateID)
	v.mu.Unlock()
	if !live {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	existing := false
	res, err := v.lookup.LookupUser(ctx, req.CandidateID, remote.Filters{Limit: 1})
	if err != nil {
		// an unreachable backend must not lock the user out
		v.logger.Warnw("user lookup failed, assuming available", "user_id", req.CandidateID, "err", err)
	} else {
		existing = res.Count > 0
	}

	v.mu.Lock()
	if !v.current(req.Seq, req.CandidateID) {
		v.mu.Unlock()
		v.logger.Debugw("dropping stale validation", "user_id", req.CandidateID, "seq", req.Seq)
		return
	}
	st := entity.State{Phase: entity.PhaseValid, Candidate: req.CandidateID, Existing: existing, Seq: req.Seq}
	v.state = st
	v.session.validate(req.CandidateID)
	v.mu.Unlock()

	v.logger.Infow("user validated", "user_id", req.CandidateID, "existing", existing,
		"latency_ms", v.clock.Since(req.IssuedAt).Milliseconds())
	if v.store != nil {
		if err := v.store.SetLastUserID(ctx, req.CandidateID); err != nil && !errors.Is(err, context.Canceled) {
			v.logger.Warnw("persist last user id", "err", err)
		}
	}
	v.notify(st)
}

// notify delivers st unless a newer generation was already delivered.
func (v *Validator) notify(st entity.State) {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	if st.Seq < v.lastNotified {
		return
	}
	v.lastNotified = st.Seq
	v.mu.Lock()
	ls := append([]Listener(nil), v.listeners...)
	v.mu.Unlock()
	for _, l := range ls {
		l(st)
	}
}
