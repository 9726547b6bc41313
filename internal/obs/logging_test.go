package obs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false)
	logger.Info("listing_published", "listing_id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "listing_published" || entry["listing_id"] != "abc" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestTextLoggerInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, true)
	logger.Debug("debug enabled")
	if !strings.Contains(buf.String(), "debug enabled") {
		t.Fatalf("expected debug line in development, got %q", buf.String())
	}
}
