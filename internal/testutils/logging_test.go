package testutils

import (
	"fmt"
	"log"
	"strings"
	"testing"
)

type mockTestingT struct {
	errors []string
}

func (m *mockTestingT) Errorf(format string, args ...any) {
	m.errors = append(m.errors, fmt.Sprintf(format, args...))
}

func TestFieldsToMap(t *testing.T) {
	tests := []struct {
		name     string
		fields   []any
		expected map[string]any
	}{
		{
			name:     "empty fields",
			fields:   []any{},
			expected: map[string]any{},
		},
		{
			name:     "single key-value pair",
			fields:   []any{"title", "iCloud"},
			expected: map[string]any{"title": "iCloud"},
		},
		{
			name:     "mixed types",
			fields:   []any{"handle", uintptr(0x1234), "count", 3, "running", true},
			expected: map[string]any{"handle": uintptr(0x1234), "count": 3, "running": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FieldsToMap(t, tt.fields)

			if len(result) != len(tt.expected) {
				t.Errorf("Expected map length %d, got %d", len(tt.expected), len(result))
			}
			for key, expectedValue := range tt.expected {
				if actual, ok := result[key]; !ok {
					t.Errorf("Expected key %q not found", key)
				} else if actual != expectedValue {
					t.Errorf("Key %q: expected %v, got %v", key, expectedValue, actual)
				}
			}
		})
	}
}

func TestFieldsToMap_MalformedInput(t *testing.T) {
	tests := []struct {
		name       string
		fields     []any
		wantErrors int
		wantLen    int
	}{
		{"missing value", []any{"key"}, 1, 0},
		{"non-string key", []any{42, "value", "ok", 1}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTestingT{}
			result := FieldsToMap(mock, tt.fields)

			if len(mock.errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %v", tt.wantErrors, len(mock.errors), mock.errors)
			}
			if len(result) != tt.wantLen {
				t.Errorf("Expected map length %d, got %d", tt.wantLen, len(result))
			}
		})
	}
}

func TestCaptureLog(t *testing.T) {
	buf := CaptureLog(t)
	log.Println("captured line")

	if !strings.Contains(buf.String(), "captured line") {
		t.Errorf("Expected buffer to contain log output, got %q", buf.String())
	}
}

func TestRecordingLogger(t *testing.T) {
	r := &RecordingLogger{}
	r.Info("window hidden", "handle", 1)
	r.Warn("hide failed")
	r.Info("resumed")

	if got := len(r.Calls("INFO")); got != 2 {
		t.Errorf("Expected 2 INFO calls, got %d", got)
	}
	if got := len(r.Calls("")); got != 3 {
		t.Errorf("Expected 3 calls in total, got %d", got)
	}
	if !r.Contains("WARN", "hide failed") {
		t.Error("Expected WARN call to be recorded")
	}
	if r.Contains("ERROR", "hide failed") {
		t.Error("Did not expect an ERROR call")
	}
}
