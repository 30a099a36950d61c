package log

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		_ = Configure("info", "text")
		SetOutput(os.Stderr)
	})

	if err := Configure("debug", "json"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", Logger.GetLevel())
	}

	Debugf("hello %s", "there")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello there" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}

	buf.Reset()
	if err := Configure("warn", "text"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	Info("dropped")
	Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	if err := Configure("loud", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Configure("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
