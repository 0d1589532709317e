package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactentity "github.com/parkbj12/songil-ai/internal/contact/entity"
	goalentity "github.com/parkbj12/songil-ai/internal/goal/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/status"
)

type fakeSession struct{ id string }

func (s fakeSession) Current() (string, bool) { return s.id, s.id != "" }

// backend is an in-memory stand-in for the health API.
type backend struct {
	mu        sync.Mutex
	calls     []string
	predicted []remote.SensorSample
	saved     map[string]any
	saveFail  bool
	predFail  bool
}

func (b *backend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/predict":
			if b.predFail {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
				return
			}
			var body struct {
				SensorData []remote.SensorSample `json:"sensor_data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			b.predicted = body.SensorData
			_, _ = w.Write([]byte(`{"anomaly_score":0.5,"threshold":0.01,"anomaly_detected":true,"chatbot_feedback":"rest"}`))
		case "/save_data":
			if b.saveFail {
				_, _ = w.Write([]byte(`{"success":false,"error":"db down"}`))
				return
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&b.saved))
			_, _ = w.Write([]byte(`{"success":true,"document_id":"doc-1"}`))
		case "/get_user/alice":
			if b.saved == nil {
				_, _ = w.Write([]byte(`{"data":[],"count":0}`))
				return
			}
			_, _ = w.Write([]byte(`{"count":1,"data":[{"_id":"doc-1","date":"2025-11-06","anomaly_score":0,
				"sensor_data":[{"heart_rate":70,"steps":12000,"sleep":8}]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (b *backend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

type stubGoals struct {
	err error
}

func (g stubGoals) Refresh(ctx context.Context, userID string) (goalentity.Progress, error) {
	v := 42.0
	return goalentity.Progress{Steps: &v}, g.err
}

type stubContacts struct{ n int }

func (c stubContacts) List(context.Context) ([]contactentity.EmergencyContact, error) {
	return make([]contactentity.EmergencyContact, c.n), nil
}

func newTestOrchestrator(t *testing.T, b *backend, sess fakeSession, goals Goals) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)
	return New(Options{
		Backend:  remote.New(remote.Options{BaseURL: srv.URL}),
		Session:  sess,
		Goals:    goals,
		Contacts: stubContacts{n: 2},
		Clock:    clockwork.NewFakeClockAt(time.Date(2025, 11, 6, 9, 0, 0, 0, time.UTC)),
	})
}

func TestCheckRequiresSession(t *testing.T) {
	b := &backend{}
	o := newTestOrchestrator(t, b, fakeSession{}, nil)
	_, err := o.Check(context.Background(), remote.SensorSample{HeartRate: 70})
	assert.ErrorIs(t, err, ErrSessionNotValid)
	assert.Empty(t, b.callLog())
}

func TestCheckAllZeroMetricsNoNetwork(t *testing.T) {
	b := &backend{}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, nil)
	_, err := o.Check(context.Background(), remote.SensorSample{Activity: 120})
	assert.ErrorIs(t, err, ErrNoMetrics)
	assert.ErrorIs(t, err, remote.ErrValidation)
	assert.Empty(t, b.callLog())
}

func TestCheckFullSequence(t *testing.T) {
	b := &backend{}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, stubGoals{})
	res, err := o.Check(context.Background(), remote.SensorSample{HeartRate: 70, Steps: 200})
	require.NoError(t, err)

	calls := b.callLog()
	require.GreaterOrEqual(t, len(calls), 3)
	assert.Equal(t, []string{"POST /predict", "POST /save_data"}, calls[:2])
	assert.Equal(t, "GET /get_user/alice", calls[2])

	// activity derived from steps
	require.Len(t, b.predicted, 1)
	assert.Equal(t, 10.0, b.predicted[0].Activity)
	assert.Equal(t, "2025-11-06", b.saved["date"])
	assert.Equal(t, 0.5, b.saved["anomaly_score"])
	assert.Equal(t, "rest", b.saved["chatbot_feedback"])

	assert.True(t, res.Saved)
	assert.Equal(t, "doc-1", res.DocumentID)
	assert.Equal(t, status.AnomalyAnomalous, res.Anomaly)
	assert.NotEmpty(t, res.CheckID)

	require.NotNil(t, res.Summary)
	assert.True(t, res.Summary.CheckedToday)
	assert.Equal(t, 100, *res.Summary.Score)
	assert.Equal(t, status.GradeGood, res.Summary.Grade)
	assert.Equal(t, 2, res.Summary.ContactCount)
	require.NotNil(t, res.Progress)
	assert.Equal(t, 42.0, *res.Progress.Steps)
}

func TestCheckKeepsSuppliedActivity(t *testing.T) {
	b := &backend{}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, nil)
	_, err := o.Check(context.Background(), remote.SensorSample{Sleep: 7, Activity: 250})
	require.NoError(t, err)
	assert.Equal(t, 250.0, b.predicted[0].Activity)
}

func TestCheckPredictFailureAborts(t *testing.T) {
	b := &backend{predFail: true}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, nil)
	res, err := o.Check(context.Background(), remote.SensorSample{HeartRate: 70})
	require.Error(t, err)
	assert.Nil(t, res)
	var he *remote.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "model not loaded", he.Message)
	assert.Equal(t, []string{"POST /predict"}, b.callLog())
}

func TestCheckSaveFailureKeepsPrediction(t *testing.T) {
	b := &backend{saveFail: true}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, stubGoals{})
	res, err := o.Check(context.Background(), remote.SensorSample{Steps: 5000})
	assert.ErrorIs(t, err, ErrNotSaved)
	assert.ErrorIs(t, err, remote.ErrRejected)
	require.NotNil(t, res)
	require.NotNil(t, res.Prediction)
	assert.Equal(t, "rest", res.Prediction.Feedback)
	assert.False(t, res.Saved)
	// no refresh after a failed save
	assert.Equal(t, []string{"POST /predict", "POST /save_data"}, b.callLog())
}

func TestCheckRefreshFailureIsAdvisory(t *testing.T) {
	b := &backend{}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, stubGoals{err: errors.New("store locked")})
	res, err := o.Check(context.Background(), remote.SensorSample{Steps: 5000})
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Nil(t, res.Progress)
}

func TestSummarizeUnchecked(t *testing.T) {
	b := &backend{}
	o := newTestOrchestrator(t, b, fakeSession{id: "alice"}, nil)
	sum, err := o.Summarize(context.Background())
	require.NoError(t, err)
	assert.False(t, sum.CheckedToday)
	assert.Nil(t, sum.Score)
	assert.Equal(t, "2025-11-06", sum.Date)
	assert.Equal(t, []string{"GET /get_user/alice"}, b.callLog())
}
