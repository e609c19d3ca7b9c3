package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

func TestInProgressDecodesDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/in-progress", r.URL.Path)
		assert.Equal(t, "my-course", r.URL.Query().Get("project"))
		_, _ = w.Write([]byte(`{"documents":[
			{"readable_filename":"a.pdf"},
			{"base_url":"https://x.com","url":"https://x.com/page1"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	entries, err := c.InProgress(context.Background(), "my-course")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, track.ProgressEntry{Key: "a.pdf"}, entries[0])
	assert.Equal(t, track.ProgressEntry{
		Key:       "https://x.com/page1",
		BaseURL:   "https://x.com",
		SourceURL: "https://x.com/page1",
	}, entries[1])
}

func TestCompletedDecodesDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/completed", r.URL.Path)
		_, _ = w.Write([]byte(`{"documents":[
			{"readable_filename":"a.pdf"},
			{"url":"https://x.com/page1"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	entries, err := c.Completed(context.Background(), "my-course")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.pdf", entries[0].Key)
	assert.Equal(t, "https://x.com/page1", entries[1].Key)
}

func TestSnapshotFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.InProgress(context.Background(), "my-course")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestUploadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecture 3.pdf")
	require.NoError(t, os.WriteFile(path, []byte("dummy"), 0644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "my-course", r.FormValue("project"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "lecture 3.pdf", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"readable_filename": "lecture_3.pdf"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	name, err := c.UploadDocument(context.Background(), "my-course", path)
	require.NoError(t, err)
	assert.Equal(t, "lecture_3.pdf", name)
}

func TestUploadDocumentFallbackName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	// Older backends return an empty body on success.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	name, err := c.UploadDocument(context.Background(), "my-course", path)
	require.NoError(t, err)
	assert.Equal(t, "notes.md", name)
}

func TestCrawlWebsitePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/crawl", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.CrawlWebsite(context.Background(), "my-course", track.CrawlRequest{
		URL:      "https://x.com",
		MaxURLs:  50,
		MaxDepth: 2,
		Strategy: "equal-and-below",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://x.com", got["url"])
	assert.Equal(t, float64(50), got["max_urls"])
	assert.Equal(t, "equal-and-below", got["scrape_strategy"])
}

func TestImportCanvasCoursePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/canvas", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.ImportCanvasCourse(context.Background(), "my-course", track.CanvasRequest{
		CourseID: "41352",
		Files:    true,
		Pages:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "41352", got["course_id"])
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, opts["files"])
	assert.Equal(t, false, opts["syllabus"])
}
