package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewJSONLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "warn")

	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	l.Warn().Msg("shown")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["message"] != "shown" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
}

func TestWithNetwork(t *testing.T) {
	var buf bytes.Buffer
	l := WithNetwork(NewJSONLogger(&buf, "debug"), "eth", "sepolia")
	l.Debug().Msg("x")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["currency"] != "eth" || entry["network"] != "sepolia" {
		t.Errorf("entry = %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{
		"debug": "debug", "info": "info", "warn": "warn",
		"error": "error", "disabled": "disabled", "bogus": "info",
		"WARNING": "warn", "": "info",
	} {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTimed(t *testing.T) {
	var buf bytes.Buffer
	done := Timed(NewJSONLogger(&buf, "debug"), "restore")
	done()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["operation"] != "restore" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["duration"]; !ok {
		t.Errorf("entry has no duration: %v", entry)
	}
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletkit.log")
	if err := Init("debug", true, path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(func() {
		if err := Init("info", false, ""); err != nil {
			t.Errorf("Init() reset error: %v", err)
		}
	})

	Manager.Info().Msg("to file")
	if err := Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", data, err)
	}
	if entry["component"] != "manager" || entry["message"] != "to file" {
		t.Errorf("entry = %v", entry)
	}
	if err := Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}
