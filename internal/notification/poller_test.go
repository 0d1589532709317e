package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkbj12/songil-ai/internal/notification/entity"
	"github.com/parkbj12/songil-ai/internal/user"
)

type fakeSession struct {
	mu sync.Mutex
	id string
}

func (s *fakeSession) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != ""
}

func (s *fakeSession) set(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

type fakeSource struct {
	mu        sync.Mutex
	list      []entity.Notification
	fetchErr  error
	fetches   int
	read      []string
	responded []string
	block     chan struct{}
}

func (f *fakeSource) FetchNotifications(ctx context.Context, userID string) ([]entity.Notification, error) {
	f.mu.Lock()
	f.fetches++
	block, list, err := f.block, append([]entity.Notification(nil), f.list...), f.fetchErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return list, err
}

func (f *fakeSource) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, id)
	return nil
}

func (f *fakeSource) MarkResponded(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responded = append(f.responded, id)
	return errors.New("backend down")
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type recordPresenter struct {
	mu    sync.Mutex
	shown []string
	hides int
}

func (r *recordPresenter) Show(n entity.Notification) {
	r.mu.Lock()
	r.shown = append(r.shown, n.ID)
	r.mu.Unlock()
}

func (r *recordPresenter) Hide() {
	r.mu.Lock()
	r.hides++
	r.mu.Unlock()
}

func note(id string, st entity.Status) entity.Notification {
	return entity.Notification{ID: id, Message: "how are you feeling?", Status: st}
}

func TestPollNeverFetchesWithoutSession(t *testing.T) {
	src := &fakeSource{list: []entity.Notification{note("n1", entity.StatusPending)}}
	p := NewPoller(PollerOptions{Source: src, Session: &fakeSession{}})
	err := p.Poll(context.Background())
	assert.ErrorIs(t, err, user.ErrSessionNotValid)
	assert.Equal(t, 0, src.fetchCount())
}

func TestPollSurfacesNewestOnceAndMarksRead(t *testing.T) {
	src := &fakeSource{list: []entity.Notification{note("n2", entity.StatusPending), note("n1", entity.StatusPending)}}
	pres := &recordPresenter{}
	p := NewPoller(PollerOptions{Source: src, Session: &fakeSession{id: "alice"}, Presenter: pres})
	ctx := context.Background()

	require.NoError(t, p.Poll(ctx))
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{"n2"}, pres.shown)
	assert.Equal(t, []string{"n2"}, src.read)

	active, ok := p.Active()
	require.True(t, ok)
	assert.Equal(t, entity.StatusRead, active.Status)

	// a newer notification supersedes the active one
	src.mu.Lock()
	src.list = append([]entity.Notification{note("n3", entity.StatusRead)}, src.list...)
	src.mu.Unlock()
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{"n2", "n3"}, pres.shown)
	// already read on the backend, no second mark
	assert.Equal(t, []string{"n2"}, src.read)
}

func TestRespondedClearsActive(t *testing.T) {
	src := &fakeSource{list: []entity.Notification{note("n1", entity.StatusPending)}}
	pres := &recordPresenter{}
	p := NewPoller(PollerOptions{Source: src, Session: &fakeSession{id: "alice"}, Presenter: pres})
	ctx := context.Background()

	p.Responded(ctx)
	assert.Empty(t, src.responded)

	require.NoError(t, p.Poll(ctx))
	// the mark failure is swallowed
	p.Responded(ctx)
	assert.Equal(t, []string{"n1"}, src.responded)
	assert.Equal(t, 1, pres.hides)
	_, ok := p.Active()
	assert.False(t, ok)

	// the same newest id is not surfaced again
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{"n1"}, pres.shown)
}

func TestPollEmptyKeepsActive(t *testing.T) {
	src := &fakeSource{list: []entity.Notification{note("n1", entity.StatusRead)}}
	p := NewPoller(PollerOptions{Source: src, Session: &fakeSession{id: "alice"}})
	ctx := context.Background()
	require.NoError(t, p.Poll(ctx))
	src.mu.Lock()
	src.list = nil
	src.mu.Unlock()
	require.NoError(t, p.Poll(ctx))
	_, ok := p.Active()
	assert.True(t, ok)
}

func TestPollFetchErrorIsReturned(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("boom")}
	p := NewPoller(PollerOptions{Source: src, Session: &fakeSession{id: "alice"}})
	assert.Error(t, p.Poll(context.Background()))
}

func TestPollInFlightGuard(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	p := NewPoller(PollerOptions{Source: src, Session: &fakeSession{id: "alice"}})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- p.Poll(ctx) }()
	require.Eventually(t, func() bool { return src.fetchCount() == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, p.Poll(ctx), ErrInFlight)
	assert.Equal(t, 1, src.fetchCount())
	close(src.block)
	require.NoError(t, <-errc)
}

func TestUserSwitchResetsSurfaced(t *testing.T) {
	src := &fakeSource{list: []entity.Notification{note("n1", entity.StatusRead)}}
	pres := &recordPresenter{}
	sess := &fakeSession{id: "alice"}
	p := NewPoller(PollerOptions{Source: src, Session: sess, Presenter: pres})
	ctx := context.Background()
	require.NoError(t, p.Poll(ctx))
	sess.set("bob")
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{"n1", "n1"}, pres.shown)
}

func TestLoopScheduleAndStopOnInvalidSession(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{list: []entity.Notification{note("n1", entity.StatusPending)}}
	sess := &fakeSession{id: "alice"}
	p := NewPoller(PollerOptions{Source: src, Session: sess, Clock: clock})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.True(t, p.Start(ctx))
	assert.False(t, p.Start(ctx))
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(DefaultInitialDelay - time.Second)
	assert.Equal(t, 0, src.fetchCount())
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return src.fetchCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultInterval)
	require.Eventually(t, func() bool { return src.fetchCount() == 2 }, time.Second, 5*time.Millisecond)

	sess.set("")
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultInterval)
	require.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, src.fetchCount())

	// can be reactivated once the session is valid again
	sess.set("alice")
	require.True(t, p.Start(ctx))
	p.Stop()
	assert.False(t, p.Running())
}
