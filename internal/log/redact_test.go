package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// newCapture returns a logger writing through a RedactingHandler into buf.
func newCapture(buf *bytes.Buffer) *slog.Logger {
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewRedactingHandler(handler))
}

// TestRedactingHandlerKeys tests masking by attribute key.
func TestRedactingHandlerKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{name: "authorization header", key: "Authorization"},
		{name: "api key header", key: "X-Api-Key"},
		{name: "cookie", key: "cookie"},
		{name: "password field", key: "db_password"},
		{name: "token field", key: "access_token"},
		{name: "credential keyword", key: "aws_credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newCapture(&buf)

			logger.Info("request", tt.key, "sensitive-value-123")

			out := buf.String()
			if strings.Contains(out, "sensitive-value-123") {
				t.Errorf("expected value for %q to be masked, got: %s", tt.key, out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("expected mask marker in output, got: %s", out)
			}
		})
	}
}

// TestRedactingHandlerValues tests masking by value shape regardless of key.
func TestRedactingHandlerValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{name: "bearer token", value: "Bearer abc123def"},
		{name: "basic auth", value: "Basic dXNlcjpwYXNz"},
		{name: "jwt", value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newCapture(&buf)

			logger.Info("request", "header_value", tt.value)

			if strings.Contains(buf.String(), tt.value) {
				t.Errorf("expected %q masked by value pattern, got: %s", tt.value, buf.String())
			}
		})
	}
}

// TestRedactingHandlerPassthrough tests that ordinary attributes survive.
func TestRedactingHandlerPassthrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newCapture(&buf)

	logger.Info("processed URL",
		"url", "https://api.example.com/users",
		"depth", 2,
		"primary_key", "users.id",
	)

	out := buf.String()
	if !strings.Contains(out, "https://api.example.com/users") {
		t.Errorf("expected the URL to pass through, got: %s", out)
	}
	if !strings.Contains(out, "depth=2") {
		t.Errorf("expected numeric attributes to pass through, got: %s", out)
	}
	if !strings.Contains(out, "users.id") {
		t.Errorf("expected primary_key to pass through (bare 'key' is not sensitive), got: %s", out)
	}
}

// TestRedactingHandlerWithAttrs tests masking of pre-bound attributes.
func TestRedactingHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newCapture(&buf).With("token", "tok-456")

	logger.Info("crawl started")

	if strings.Contains(buf.String(), "tok-456") {
		t.Errorf("expected bound attribute masked, got: %s", buf.String())
	}
}

// TestRedactingHandlerGroups tests masking inside attribute groups.
func TestRedactingHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newCapture(&buf)

	logger.Info("request",
		slog.Group("headers",
			slog.String("Authorization", "Bearer group-secret"),
			slog.String("Accept", "application/json"),
		),
	)

	out := buf.String()
	if strings.Contains(out, "group-secret") {
		t.Errorf("expected grouped credential masked, got: %s", out)
	}
	if !strings.Contains(out, "application/json") {
		t.Errorf("expected ordinary grouped attribute preserved, got: %s", out)
	}
}

// TestNewLogger tests level selection.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("quiet by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("should not appear")
		logger.Warn("should appear")

		if strings.Contains(buf.String(), "should not appear") {
			t.Error("expected info suppressed when not verbose")
		}
		if !strings.Contains(buf.String(), "should appear") {
			t.Error("expected warnings to pass")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("debug detail")

		if !strings.Contains(buf.String(), "debug detail") {
			t.Error("expected debug output when verbose")
		}
	})
}
