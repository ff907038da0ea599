package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo},
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_TextOutputCarriesSubsystem(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, FormatText, &buf)

	Info("test-subsystem", "test message %d", 42)

	output := buf.String()
	if !strings.Contains(output, "test message 42") {
		t.Errorf("expected formatted message in output, got %q", output)
	}
	if !strings.Contains(output, "subsystem=test-subsystem") {
		t.Errorf("expected subsystem attribute in output, got %q", output)
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, FormatJSON, &buf)

	Error("Relay", errors.New("queue closed"), "relay stopped")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["subsystem"] != "Relay" {
		t.Errorf("subsystem = %v, want Relay", entry["subsystem"])
	}
	if entry["error"] != "queue closed" {
		t.Errorf("error = %v, want queue closed", entry["error"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, FormatText, &buf)

	Debug("test", "debug message")
	Info("test", "info message")
	Warn("test", "warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below WARN should be filtered, got %q", output)
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should appear at WARN level")
	}
}

func TestSetLevel_KeepsHandler(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, FormatJSON, &buf)

	Debug("test", "hidden")
	SetLevel(LevelDebug)
	Debug("test", "shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug message logged before SetLevel: %q", output)
	}
	if !strings.Contains(output, `"msg":"shown"`) {
		t.Errorf("expected JSON debug output after SetLevel, got %q", output)
	}
}
