package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatJSON, false)
	logger.Debug("hidden")
	logger.Info("visible", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, `"msg":"visible"`) {
		t.Errorf("expected JSON record, got %q", out)
	}

	buf.Reset()
	logger = New(&buf, "unknown", true)
	logger.Debug("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("expected text record at debug level, got %q", buf.String())
	}
}

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	if WithOperation(logger, "test_operation") == nil {
		t.Error("WithOperation returned nil")
	}
	if WithService(logger, "drive") == nil {
		t.Error("WithService returned nil")
	}
	if WithRequestID(logger, "abc") == nil {
		t.Error("WithRequestID returned nil")
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("handout.search"), KeyOperation, "handout.search"},
		{"service", Service("drive"), KeyService, "drive"},
		{"tool", Tool("handout_search"), KeyTool, "handout_search"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
		{"request id", RequestID("r-1"), KeyRequestID, "r-1"},
		{"count", Count(3), KeyCount, "3"},
		{"term", Term("CS F111"), KeyTerm, "CS F111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestAnonymizeChat(t *testing.T) {
	a := AnonymizeChat(12345)
	if len(a) != 21 || !strings.HasPrefix(a, "chat:") {
		t.Errorf("AnonymizeChat() = %q, want chat: prefix and 21 chars", a)
	}
	if a != AnonymizeChat(12345) {
		t.Error("AnonymizeChat should be deterministic")
	}
	if a == AnonymizeChat(-12345) {
		t.Error("different chats should produce different hashes")
	}
	if Chat(12345).Value.String() != a {
		t.Error("Chat attribute should carry the anonymized id")
	}
}

func TestTruncateTerm(t *testing.T) {
	short := "MATH F112"
	if got := TruncateTerm(short); got != short {
		t.Errorf("TruncateTerm(%q) = %q", short, got)
	}

	long := strings.Repeat("é", maxTermLength+10)
	got := TruncateTerm(long)
	if len([]rune(got)) != maxTermLength+1 {
		t.Errorf("TruncateTerm() rune length = %d, want %d", len([]rune(got)), maxTermLength+1)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := SanitizeToken(tt.token); result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
		})
	}
}
