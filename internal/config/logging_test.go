package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFanoutLoggerWritesBothStreams(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := fanoutLogger(&stderr, &file, slog.LevelInfo)
	logger.Info("upload started", "project", "cs101")

	if !strings.Contains(stderr.String(), "upload started") {
		t.Errorf("stderr missing message: %q", stderr.String())
	}
	var record map[string]any
	if err := json.Unmarshal(file.Bytes(), &record); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if record["project"] != "cs101" {
		t.Errorf("project = %v", record["project"])
	}
}

func TestFanoutLoggerRespectsLevel(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := fanoutLogger(&stderr, &file, slog.LevelWarn)
	logger.Debug("noisy detail")

	if stderr.Len() != 0 || file.Len() != 0 {
		t.Errorf("debug record leaked: stderr=%q file=%q", stderr.String(), file.String())
	}
}

func TestNewLoggerAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingestctl.log")

	logger, cleanup := NewLogger(path, slog.LevelInfo)
	logger.Info("session opened")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "session opened") {
		t.Errorf("log file missing record: %q", data)
	}
}
