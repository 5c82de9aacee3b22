package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleJob(title, company string) model.NormalizedJob {
	return model.NormalizedJob{
		Title:       title,
		Company:     company,
		Categories:  []model.Category{model.CategoryBackend},
		RegionLimit: model.RegionWorldwide,
		WorkType:    model.WorkTypeFulltime,
		SourceSite:  "remoteok",
		OriginalURL: "https://example.com/1",
	}
}

func TestLogNotifier_Notify(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	jobs := []model.NormalizedJob{
		sampleJob("Engineer", "Acme"),
		sampleJob("Developer", "Beta"),
	}
	if err := n.Notify(jobs); err != nil {
		t.Errorf("Notify(jobs) = %v, want nil", err)
	}
}

func TestSlackNotifier_EmptyJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleJob(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify([]model.NormalizedJob{sampleJob("Engineer", "Acme")}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Blocks) == 0 {
		t.Fatal("expected Block Kit blocks in payload")
	}
	if got := payload.Blocks[0].Text.Text; !strings.Contains(got, "Acme") || !strings.Contains(got, "Engineer") {
		t.Errorf("header = %q, want company and title", got)
	}
}

func TestSlackNotifier_AllFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify([]model.NormalizedJob{sampleJob("Engineer", "Acme")}); err == nil {
		t.Fatal("expected error when every notification fails")
	}
}
