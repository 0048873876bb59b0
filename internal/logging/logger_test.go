package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/logging"
)

func TestNewJSONLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("job configured", logging.String(logging.FieldManifestID, "ep-001"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"job configured"`) {
		t.Fatalf("expected message in output, got %q", content)
	}
	if !strings.Contains(content, `"manifest_id":"ep-001"`) {
		t.Fatalf("expected manifest_id attribute, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "suppressed") {
		t.Fatal("info record should have been filtered at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Fatal("warn record missing from output")
	}
}

func TestComponentLogger(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "idempotency")
	// No-op base must still be safe to use.
	logger.Info("ignored")
}
