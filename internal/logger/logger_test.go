package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("playlist created", "playlist_id", 3)

	assert.Contains(t, buf.String(), `"msg":"playlist created"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"playlist_id":3`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{environment: "production", wantJSON: true},
		{environment: "development", wantJSON: false},
		{environment: "test", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Environment: tt.environment, Writer: &buf}).Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "hello")
			}
		})
	}
}

func TestNew_RedactsSensitiveKeys(t *testing.T) {
	for _, format := range []string{"json", "pretty"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Format: format, Writer: &buf})

			log.Info("login", "email", "a@x.com", "password", "secret", "refresh_token", "v4.local.abc")

			out := buf.String()
			assert.NotContains(t, out, "secret")
			assert.NotContains(t, out, "v4.local.abc")
			assert.Contains(t, out, "a@x.com")
			assert.Contains(t, out, redacted)
		})
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "pretty", Level: slog.LevelWarn, Writer: &buf})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN")
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "pretty", Writer: &buf})

	log.WithGroup("http").With("method", "GET").Info("request", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "http.method=GET")
	assert.Contains(t, out, "http.status=200")
}

func TestPrettyHandler_QuotesSpaces(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "pretty", Writer: &buf}).Info("song", "title", "Blue Monday")

	assert.Contains(t, buf.String(), `title="Blue Monday"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestHelpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Writer: &buf})

	log.WithError(errors.New("boom")).WithFields(map[string]any{"user_id": 7}).Info("failed")

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"user_id":7`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Info("nothing") })
}
