// Package client provides the HTTP client for the ingestion backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

// Client talks to the ingestion backend over JSON/HTTP. It implements
// track.Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ track.Backend = (*Client)(nil)

// New creates a new backend client.
// If baseURL is empty, uses INGESTCTL_SERVER_URL env var or defaults to
// localhost:8000. Timeout can be configured via INGESTCTL_CLIENT_TIMEOUT
// (default 5m to cover large uploads).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("INGESTCTL_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	timeout := 5 * time.Minute
	if t := os.Getenv("INGESTCTL_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// document is the wire shape shared by both snapshot endpoints. The
// in-progress view populates base_url for crawl pages; the completed view
// only carries readable_filename and url.
type document struct {
	ReadableFilename string `json:"readable_filename,omitempty"`
	BaseURL          string `json:"base_url,omitempty"`
	URL              string `json:"url,omitempty"`
}

// key returns the job identity for a snapshot row: the readable filename
// for uploaded documents, otherwise the page URL.
func (d document) key() string {
	if d.ReadableFilename != "" {
		return d.ReadableFilename
	}
	return d.URL
}

// documentsResponse wraps both snapshot endpoints' payloads.
type documentsResponse struct {
	Documents []document `json:"documents"`
}

// InProgress fetches the project's in-progress snapshot.
func (c *Client) InProgress(ctx context.Context, project string) ([]track.ProgressEntry, error) {
	var resp documentsResponse
	if err := c.getJSON(ctx, "/ingest/in-progress", url.Values{"project": {project}}, &resp); err != nil {
		return nil, fmt.Errorf("fetch in-progress: %w", err)
	}

	entries := make([]track.ProgressEntry, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		entries = append(entries, track.ProgressEntry{
			Key:       d.key(),
			BaseURL:   d.BaseURL,
			SourceURL: d.URL,
		})
	}
	return entries, nil
}

// Completed fetches the project's completed snapshot.
func (c *Client) Completed(ctx context.Context, project string) ([]track.CompletedEntry, error) {
	var resp documentsResponse
	if err := c.getJSON(ctx, "/ingest/completed", url.Values{"project": {project}}, &resp); err != nil {
		return nil, fmt.Errorf("fetch completed: %w", err)
	}

	entries := make([]track.CompletedEntry, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		entries = append(entries, track.CompletedEntry{
			Key:       d.key(),
			SourceURL: d.URL,
		})
	}
	return entries, nil
}

// uploadResponse is the backend's answer to a document upload.
type uploadResponse struct {
	ReadableFilename string `json:"readable_filename"`
}

// UploadDocument transfers one file to the backend and returns the
// readable filename it will be reported under in the snapshots.
func (c *Client) UploadDocument(ctx context.Context, project, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("project", project); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}
	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/ingest/upload", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(filePath), err)
	}
	if resp.ReadableFilename == "" {
		resp.ReadableFilename = track.SanitizeFileName(filepath.Base(filePath))
	}
	return resp.ReadableFilename, nil
}

// CrawlWebsite kicks off a recursive website crawl.
func (c *Client) CrawlWebsite(ctx context.Context, project string, req track.CrawlRequest) error {
	payload := map[string]any{
		"project":         project,
		"url":             req.URL,
		"max_urls":        req.MaxURLs,
		"max_depth":       req.MaxDepth,
		"scrape_strategy": req.Strategy,
	}
	if err := c.postJSON(ctx, "/ingest/crawl", payload, nil); err != nil {
		return fmt.Errorf("crawl %s: %w", req.URL, err)
	}
	return nil
}

// ImportGithubRepo kicks off a repository import.
func (c *Client) ImportGithubRepo(ctx context.Context, project, repoURL string) error {
	payload := map[string]any{
		"project":  project,
		"repo_url": repoURL,
	}
	if err := c.postJSON(ctx, "/ingest/github", payload, nil); err != nil {
		return fmt.Errorf("import repo %s: %w", repoURL, err)
	}
	return nil
}

// ImportCanvasCourse kicks off an LMS course export import.
func (c *Client) ImportCanvasCourse(ctx context.Context, project string, req track.CanvasRequest) error {
	payload := map[string]any{
		"project":   project,
		"course_id": req.CourseID,
		"options": map[string]bool{
			"files":       req.Files,
			"pages":       req.Pages,
			"modules":     req.Modules,
			"syllabus":    req.Syllabus,
			"assignments": req.Assignments,
			"discussions": req.Discussions,
		},
	}
	if err := c.postJSON(ctx, "/ingest/canvas", payload, nil); err != nil {
		return fmt.Errorf("import course %s: %w", req.CourseID, err)
	}
	return nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

// postJSON performs a POST request with a JSON body and decodes the
// response into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes a request and decodes the JSON response.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server error: %s - %s", resp.Status, string(body))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
