package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchiver struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (a *fakeArchiver) Archive(_ context.Context, key string, payload []byte) error {
	a.keys = append(a.keys, key)
	a.payloads = append(a.payloads, payload)
	return a.err
}

type fakePublisher struct {
	subjects []string
	err      error
}

func (p *fakePublisher) PublishAlert(_ context.Context, subject, _ string) error {
	p.subjects = append(p.subjects, subject)
	return p.err
}

func sampleEvent() *Event {
	return &Event{
		EventID:    "01ABCDEF",
		Kind:       "panic",
		Error:      "intentional fault",
		Method:     "GET",
		Route:      "/v1/test",
		RequestID:  "req-1",
		OccurredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CodeSource: CodeSource{Repository: "https://example.com/repo", Revision: "abc123"},
	}
}

func TestBackendReporter_DeliversWithToken(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	NewBackendReporter(srv.URL, "write-token").Report(context.Background(), sampleEvent())

	assert.Equal(t, "Bearer write-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "01ABCDEF", gotBody.EventID)
	assert.Equal(t, "intentional fault", gotBody.Error)
	assert.Equal(t, "abc123", gotBody.CodeSource.Revision)
}

func TestBackendReporter_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	NewBackendReporter(srv.URL, "").Report(context.Background(), sampleEvent())

	assert.Empty(t, gotAuth)
}

func TestBackendReporter_ArchivesUnderDatedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	arch := &fakeArchiver{}
	NewBackendReporter(srv.URL, "t", WithArchiver(arch)).Report(context.Background(), sampleEvent())

	require.Len(t, arch.keys, 1)
	assert.Equal(t, "alerts/2025-06-01/01ABCDEF.json", arch.keys[0])

	var archived Event
	require.NoError(t, json.Unmarshal(arch.payloads[0], &archived))
	assert.Equal(t, "01ABCDEF", archived.EventID)
}

func TestBackendReporter_PublishesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	pub := &fakePublisher{}
	NewBackendReporter(srv.URL, "t", WithPublisher(pub)).Report(context.Background(), sampleEvent())

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "[panic] GET /v1/test", pub.subjects[0])
}

func TestBackendReporter_SideChannelFailuresDoNotPropagate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	arch := &fakeArchiver{err: fmt.Errorf("bucket gone")}
	pub := &fakePublisher{err: fmt.Errorf("topic gone")}
	r := NewBackendReporter(srv.URL, "t", WithArchiver(arch), WithPublisher(pub))

	assert.NotPanics(t, func() { r.Report(context.Background(), sampleEvent()) })
}

func TestBackendReporter_BackendDownIsSwallowed(t *testing.T) {
	// Closed server: delivery fails, Report must still return cleanly.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	assert.NotPanics(t, func() {
		NewBackendReporter(srv.URL, "t").Report(context.Background(), sampleEvent())
	})
}
