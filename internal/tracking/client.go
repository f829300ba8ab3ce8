package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relevance-engine/backend/internal/config"
)

// Client talks to the experiment tracking server. Training runs depend on
// it for run bookkeeping, parameters, tags and artifact storage; an
// unreachable server is a fatal condition checked before any training
// work begins.
type Client struct {
	BaseURL    string
	Experiment string
	Logger     *logrus.Entry

	httpClient    *http.Client
	healthTimeout time.Duration
}

func NewClient(cfg config.TrackingConfig, logger *logrus.Entry) *Client {
	return &Client{
		BaseURL:       cfg.BaseURL,
		Experiment:    cfg.Experiment,
		Logger:        logger,
		httpClient:    &http.Client{},
		healthTimeout: cfg.HealthTimeout,
	}
}

// Health checks the tracking server before a run. Callers abort on
// failure rather than retry, to avoid wasted training work.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracking server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracking server returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if string(body) != "OK" {
		return fmt.Errorf("unexpected health response body: %q", string(body))
	}

	return nil
}

// CreateRun opens a new run under the client's experiment and returns its
// identifier.
func (c *Client) CreateRun(ctx context.Context) (string, error) {
	payload := map[string]string{"experiment": c.Experiment}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/runs", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("run creation returned status: %d", resp.StatusCode)
	}

	var result struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.RunID == "" {
		return "", fmt.Errorf("tracking server returned empty run id")
	}

	return result.RunID, nil
}

// LogParam records a training parameter on the run.
func (c *Client) LogParam(ctx context.Context, runID, key, value string) error {
	return c.postKV(ctx, runID, "params", key, value)
}

// SetTag records a tag on the run.
func (c *Client) SetTag(ctx context.Context, runID, key, value string) error {
	return c.postKV(ctx, runID, "tags", key, value)
}

func (c *Client) postKV(ctx context.Context, runID, kind, key, value string) error {
	payload := map[string]string{"key": key, "value": value}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/runs/%s/%s", c.BaseURL, runID, kind)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to log %s %s: %w", kind, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logging %s %s returned status: %d", kind, key, resp.StatusCode)
	}
	return nil
}

// LogArtifact uploads a local file to the run's artifact store under the
// given artifact directory name.
func (c *Client) LogArtifact(ctx context.Context, runID, localPath, artifactDir string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", localPath, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := writer.WriteField("path", artifactDir); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/runs/%s/artifacts", c.BaseURL, runID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload artifact %s: %w", localPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("artifact upload returned status: %d", resp.StatusCode)
	}

	if c.Logger != nil {
		c.Logger.Infof("Uploaded artifact %s to %s/%s", filepath.Base(localPath), runID, artifactDir)
	}
	return nil
}

// ArtifactURI returns the object-storage locator for an artifact of the
// run.
func (c *Client) ArtifactURI(runID, name string) string {
	return fmt.Sprintf("%s/artifacts/%s/%s", c.BaseURL, runID, name)
}
