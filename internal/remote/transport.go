package remote

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/pkg/utilities"
)

const userAgent = "healthdash-client/1"

// loggingTransport wraps an http.RoundTripper to stamp and log every request.
type loggingTransport struct {
	next   http.RoundTripper
	logger *zap.SugaredLogger
}

// LoggingTransport returns a RoundTripper that logs requests at debug level using the provided sugared logger.
func LoggingTransport(logger *zap.SugaredLogger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, logger: logger}
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	// RoundTrippers must not mutate the caller's request
	r = r.Clone(r.Context())
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = utilities.NewKSUID()
		r.Header.Set("X-Request-ID", reqID)
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", userAgent)
	}
	r.Header.Set("Accept", "application/json")

	resp, err := t.next.RoundTrip(r)
	dur := time.Since(start)
	if err != nil {
		t.logger.Debugw("http request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqID,
			"duration_ms", float64(dur.Microseconds())/1000.0,
			"err", err,
		)
		return nil, err
	}
	t.logger.Debugw("http request",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", reqID,
		"status", resp.StatusCode,
		"duration_ms", float64(dur.Microseconds())/1000.0,
		"size", resp.ContentLength,
	)
	return resp, nil
}
