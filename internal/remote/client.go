// Package remote is the request/response contract with the health backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	contactentity "github.com/parkbj12/songil-ai/internal/contact/entity"
	notifentity "github.com/parkbj12/songil-ai/internal/notification/entity"
)

const maxBodyBytes = 8 << 20

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	// Transport is wrapped with request logging; nil means http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *zap.SugaredLogger
}

// Client talks JSON to the backend endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: LoggingTransport(logger, opts.Transport),
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// LookupUser fetches a user's logs. A 404 is folded into an empty result.
func (c *Client) LookupUser(ctx context.Context, userID string, f Filters) (*LookupResult, error) {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	var out LookupResult
	err := c.do(ctx, http.MethodGet, "/get_user/"+url.PathEscape(userID), q, nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return &LookupResult{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	if out.Count == 0 {
		out.Count = len(out.Entries)
	}
	return &out, nil
}

// PredictAnomaly scores samples. It refuses samples with no usable metric without
// touching the network.
func (c *Client) PredictAnomaly(ctx context.Context, userID string, samples []SensorSample) (*Prediction, error) {
	if !anyMetrics(samples) {
		return nil, fmt.Errorf("%w: at least one of heart rate, steps, sleep or temperature is required", ErrValidation)
	}
	body := map[string]any{"user_id": userID, "sensor_data": samples}
	var out Prediction
	if err := c.do(ctx, http.MethodPost, "/predict", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveLog persists samples together with the prediction that scored them.
func (c *Client) SaveLog(ctx context.Context, userID, date string, samples []SensorSample, p *Prediction) (*SaveResult, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: prediction is required", ErrValidation)
	}
	body := map[string]any{
		"user_id":          userID,
		"date":             date,
		"sensor_data":      samples,
		"anomaly_score":    p.AnomalyScore,
		"anomaly_detected": p.AnomalyDetected,
		"chatbot_feedback": p.Feedback,
	}
	var out SaveResult
	if err := c.do(ctx, http.MethodPost, "/save_data", nil, body, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return &out, fmt.Errorf("save log: %w: %s", ErrRejected, out.Error)
	}
	return &out, nil
}

func (c *Client) DeleteLog(ctx context.Context, id string) error {
	var out SaveResult
	if err := c.do(ctx, http.MethodDelete, "/delete_user_data/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("delete log: %w: %s", ErrRejected, out.Error)
	}
	return nil
}

// FetchNotifications returns pending notifications, newest first.
func (c *Client) FetchNotifications(ctx context.Context, userID string) ([]notifentity.Notification, error) {
	var out struct {
		Notifications []notifentity.Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/get_notifications/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/mark_notification_read/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) MarkResponded(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/mark_notification_responded/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) GetStatistics(ctx context.Context, userID string) (*Statistics, error) {
	var out Statistics
	if err := c.do(ctx, http.MethodGet, "/get_statistics/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Chat(ctx context.Context, userID, message string) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	var out ChatReply
	body := map[string]string{"message": message, "user_id": userID}
	if err := c.do(ctx, http.MethodPost, "/chat", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendEmergencyAlert(ctx context.Context, userID string) error {
	var out SaveResult
	if err := c.do(ctx, http.MethodPost, "/send_emergency_alert", nil, map[string]string{"user_id": userID}, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("emergency alert: %w: %s", ErrRejected, out.Error)
	}
	return nil
}

func (c *Client) UpdateEmail(ctx context.Context, userID, email string) error {
	var out SaveResult
	body := map[string]string{"user_id": userID, "email": email}
	if err := c.do(ctx, http.MethodPost, "/update_user_email", nil, body, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("update email: %w: %s", ErrRejected, out.Error)
	}
	return nil
}

func (c *Client) GetEmail(ctx context.Context, userID string) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		Email   string `json:"email"`
	}
	if err := c.do(ctx, http.MethodGet, "/get_user_email/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Email, nil
}

func (c *Client) UpdateEmergencyContacts(ctx context.Context, userID string, contacts []contactentity.EmergencyContact) error {
	if contacts == nil {
		contacts = []contactentity.EmergencyContact{}
	}
	var out SaveResult
	body := map[string]any{"user_id": userID, "contacts": contacts}
	if err := c.do(ctx, http.MethodPost, "/update_emergency_contacts", nil, body, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("update contacts: %w: %s", ErrRejected, out.Error)
	}
	return nil
}

func (c *Client) GetEmergencyContacts(ctx context.Context, userID string) ([]contactentity.EmergencyContact, error) {
	var out struct {
		Success  bool                             `json:"success"`
		Contacts []contactentity.EmergencyContact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, "/get_emergency_contacts/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// UploadHealthData sends an exported health file as multipart form data.
func (c *Client) UploadHealthData(ctx context.Context, userID, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("user_id", userID); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	var out UploadResult
	if err := c.send(ctx, http.MethodPost, "/upload_health_data", nil, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	var rdr io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		rdr = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, q, rdr, contentType, out)
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrNetwork, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		he := &HTTPError{Method: method, Path: path, Status: resp.StatusCode}
		var env struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &env) == nil {
			he.Message = env.Error
		}
		return he
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func anyMetrics(samples []SensorSample) bool {
	for _, s := range samples {
		if s.HasMetrics() {
			return true
		}
	}
	return false
}

// IsNetwork reports whether err came from the transport rather than the backend.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
