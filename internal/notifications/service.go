package notifications

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/config"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
)

const userAgent = "AnimeTranscodingPipeline/1.0"

// Event classifies a pipeline notification.
type Event string

const (
	EventJobConfigured    Event = "JOB_CONFIGURED"
	EventJobSkipped       Event = "JOB_SKIPPED"
	EventJobComplete      Event = "JOB_COMPLETE"
	EventJobFailed        Event = "JOB_FAILED"
	EventValidationFailed Event = "VALIDATION_FAILED"
)

// Details carries event-specific fields for the payload.
type Details map[string]any

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	Publish(ctx context.Context, event Event, m *manifest.Manifest, details Details) error
	TestNotification(ctx context.Context) error
}

// NewService builds a webhook-backed notification service. When
// notifications are disabled or no URL is configured, a noop implementation
// is returned.
func NewService(cfg *config.Config) Service {
	url := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if !cfg.Notifications.Enabled || url == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		url:    url,
		secret: cfg.Notifications.WebhookSecret,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

type webhookService struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

type episodePayload struct {
	SeriesID    string `json:"series_id"`
	SeriesTitle string `json:"series_title"`
	Season      int    `json:"season"`
	Episode     int    `json:"episode"`
	Title       string `json:"title"`
}

type eventPayload struct {
	Type       Event           `json:"type"`
	Timestamp  string          `json:"timestamp"`
	ManifestID string          `json:"manifest_id"`
	Episode    *episodePayload `json:"episode,omitempty"`
	Details    Details         `json:"details,omitempty"`
}

func (w *webhookService) Publish(ctx context.Context, event Event, m *manifest.Manifest, details Details) error {
	payload := eventPayload{
		Type:      event,
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Details:   details,
	}
	if m != nil {
		payload.ManifestID = m.ManifestID
		payload.Episode = &episodePayload{
			SeriesID:    m.Episode.SeriesID,
			SeriesTitle: m.Episode.SeriesTitle,
			Season:      m.Episode.SeasonNumber,
			Episode:     m.Episode.EpisodeNumber,
			Title:       m.Episode.EpisodeTitle,
		}
	}
	return w.send(ctx, payload)
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	return w.send(ctx, eventPayload{
		Type:      "TEST",
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Details:   Details{"message": "notification system test"},
	})
}

func (w *webhookService) send(ctx context.Context, payload eventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	timestamp := strconv.FormatInt(w.now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Webhook-Timestamp", timestamp)
	if w.secret != "" {
		req.Header.Set("X-Webhook-Signature", "sha256="+sign(w.secret, timestamp, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// sign computes HMAC-SHA256 over "timestamp.body" so receivers can verify
// both origin and freshness.
func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, *manifest.Manifest, Details) error { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
