package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Reporter delivers alert events to the external observability backend.
// Report must not fail the request being reported: delivery problems are
// logged, never propagated.
type Reporter interface {
	Report(ctx context.Context, ev *Event)
}

// Archiver mirrors raw alert payloads into object storage for the
// investigation tool to fetch.
type Archiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// Publisher fans an alert summary out to a notification topic.
type Publisher interface {
	PublishAlert(ctx context.Context, subject, message string) error
}

// BackendReporter POSTs events to the alert backend, authorised by the
// configured write token, and optionally archives and publishes each event.
type BackendReporter struct {
	url       string
	token     string
	client    *http.Client
	archiver  Archiver  // optional
	publisher Publisher // optional
}

type ReporterOption func(*BackendReporter)

func WithArchiver(a Archiver) ReporterOption {
	return func(r *BackendReporter) { r.archiver = a }
}

func WithPublisher(p Publisher) ReporterOption {
	return func(r *BackendReporter) { r.publisher = p }
}

func NewBackendReporter(url, token string, opts ...ReporterOption) *BackendReporter {
	r := &BackendReporter{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BackendReporter) Report(ctx context.Context, ev *Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal alert event", "event_id", ev.EventID, "err", err)
		return
	}

	r.deliver(ctx, ev, payload)

	if r.archiver != nil {
		key := fmt.Sprintf("alerts/%s/%s.json", ev.OccurredAt.UTC().Format("2006-01-02"), ev.EventID)
		if err := r.archiver.Archive(ctx, key, payload); err != nil {
			slog.Warn("archive alert event", "event_id", ev.EventID, "err", err)
		}
	}
	if r.publisher != nil {
		subject := fmt.Sprintf("[%s] %s %s", ev.Kind, ev.Method, ev.Route)
		if err := r.publisher.PublishAlert(ctx, subject, string(payload)); err != nil {
			slog.Warn("publish alert event", "event_id", ev.EventID, "err", err)
		}
	}
}

func (r *BackendReporter) deliver(ctx context.Context, ev *Event, payload []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("build alert request", "event_id", ev.EventID, "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.Warn("deliver alert event", "event_id", ev.EventID, "err", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		slog.Warn("alert backend rejected event", "event_id", ev.EventID, "status", resp.StatusCode)
		return
	}
	slog.Info("alert event delivered", "event_id", ev.EventID, "route", ev.Route)
}

// LogReporter is the fallback when no alert backend is configured: events
// still land in the structured log so nothing is silently dropped.
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, ev *Event) {
	slog.Error("alert event (no backend configured)",
		"event_id", ev.EventID,
		"kind", ev.Kind,
		"error", ev.Error,
		"method", ev.Method,
		"route", ev.Route,
		"request_id", ev.RequestID,
	)
}
