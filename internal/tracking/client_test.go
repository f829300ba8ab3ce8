package tracking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relevance-engine/backend/internal/config"
	"github.com/relevance-engine/backend/internal/tracking"
)

type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// fakeTracker records everything the client sends so assertions can run
// against the whole conversation.
type fakeTracker struct {
	mu         sync.Mutex
	healthBody string
	runID      string
	params     []kvRecord
	tags       []kvRecord
	artifacts  map[string][]byte
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		healthBody: "OK",
		runID:      "run-1",
		artifacts:  map[string][]byte{},
	}
}

func (f *fakeTracker) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(f.healthBody))
	})
	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"run_id": f.runID})
	})
	mux.HandleFunc("/api/runs/run-1/params", func(w http.ResponseWriter, r *http.Request) {
		var rec kvRecord
		json.NewDecoder(r.Body).Decode(&rec)
		f.mu.Lock()
		f.params = append(f.params, rec)
		f.mu.Unlock()
	})
	mux.HandleFunc("/api/runs/run-1/tags", func(w http.ResponseWriter, r *http.Request) {
		var rec kvRecord
		json.NewDecoder(r.Body).Decode(&rec)
		f.mu.Lock()
		f.tags = append(f.tags, rec)
		f.mu.Unlock()
	})
	mux.HandleFunc("/api/runs/run-1/artifacts", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data := make([]byte, header.Size)
		file.Read(data)
		f.mu.Lock()
		f.artifacts[r.FormValue("path")+"/"+header.Filename] = data
		f.mu.Unlock()
	})
	return mux
}

func newTestClient(baseURL string) *tracking.Client {
	cfg := config.TrackingConfig{
		BaseURL:       baseURL,
		Experiment:    "relevance-scoring",
		HealthTimeout: 2 * time.Second,
	}
	return tracking.NewClient(cfg, logrus.New().WithField("test", "tracking"))
}

func TestHealthOK(t *testing.T) {
	srv := httptest.NewServer(newFakeTracker().handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	require.NoError(t, client.Health(context.Background()))
}

func TestHealthUnexpectedBody(t *testing.T) {
	tracker := newFakeTracker()
	tracker.healthBody = "degraded"
	srv := httptest.NewServer(tracker.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected health response body")
}

func TestHealthServerDown(t *testing.T) {
	srv := httptest.NewServer(newFakeTracker().handler())
	srv.Close()

	client := newTestClient(srv.URL)
	err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracking server unreachable")
}

func TestCreateRunAndLogging(t *testing.T) {
	tracker := newFakeTracker()
	srv := httptest.NewServer(tracker.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx := context.Background()

	runID, err := client.CreateRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	require.NoError(t, client.LogParam(ctx, runID, "vector_size", "1000"))
	require.NoError(t, client.SetTag(ctx, runID, "go_version", "go1.22"))

	assert.Equal(t, []kvRecord{{Key: "vector_size", Value: "1000"}}, tracker.params)
	assert.Equal(t, []kvRecord{{Key: "go_version", Value: "go1.22"}}, tracker.tags)
}

func TestCreateRunEmptyID(t *testing.T) {
	tracker := newFakeTracker()
	tracker.runID = ""
	srv := httptest.NewServer(tracker.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty run id")
}

func TestLogArtifact(t *testing.T) {
	tracker := newFakeTracker()
	srv := httptest.NewServer(tracker.handler())
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.txt")
	require.NoError(t, os.WriteFile(path, []byte("causal\ninference\n"), 0o644))

	client := newTestClient(srv.URL)
	require.NoError(t, client.LogArtifact(context.Background(), "run-1", path, "domain_keywords"))

	assert.Equal(t, []byte("causal\ninference\n"), tracker.artifacts["domain_keywords/keywords.txt"])
}

func TestLogArtifactMissingFile(t *testing.T) {
	srv := httptest.NewServer(newFakeTracker().handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.LogArtifact(context.Background(), "run-1", "/nonexistent/file.txt", "model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open artifact")
}

func TestArtifactURI(t *testing.T) {
	client := newTestClient("http://tracker:5000")
	uri := client.ArtifactURI("run-9", "model")
	assert.Equal(t, "http://tracker:5000/artifacts/run-9/model", uri)
}
