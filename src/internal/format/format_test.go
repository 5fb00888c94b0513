// FILE: logfan/src/internal/format/format_test.go
package format

import (
	"encoding/json"
	"strings"
	"testing"

	"logfan/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNew(t *testing.T) {
	logger := newTestLogger()

	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"DefaultIsText", Config{}, "text", false},
		{"Text", Config{Name: "text"}, "text", false},
		{"JSON", Config{Name: "json"}, "json", false},
		{"Raw", Config{Name: "raw"}, "raw", false},
		{"Unknown", Config{Name: "xml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.config, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, f.Name())
		})
	}
}

func TestTextFormatter(t *testing.T) {
	logger := newTestLogger()

	t.Run("DefaultTemplate", func(t *testing.T) {
		f, err := NewTextFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelWarn, "disk almost full", nil))
		require.NoError(t, err)
		line := string(out)
		assert.Contains(t, line, "[WARN]")
		assert.Contains(t, line, "disk almost full")
		assert.True(t, strings.HasSuffix(line, "\n"))
	})

	t.Run("MetadataAppended", func(t *testing.T) {
		f, err := NewTextFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelInfo, "request", []any{"id", 42}))
		require.NoError(t, err)
		assert.Contains(t, string(out), "id 42")
	})

	t.Run("CustomTemplate", func(t *testing.T) {
		f, err := NewTextFormatter(&TextOptions{
			Template: "{{ToLower .Level}}: {{.Message}}\n",
		}, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelError, "boom", nil))
		require.NoError(t, err)
		assert.Equal(t, "error: boom\n", string(out))
	})

	t.Run("InvalidTemplateRejected", func(t *testing.T) {
		_, err := NewTextFormatter(&TextOptions{Template: "{{.Message"}, logger)
		assert.Error(t, err)
	})

	t.Run("NonStringMessage", func(t *testing.T) {
		f, err := NewTextFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelInfo, 12345, nil))
		require.NoError(t, err)
		assert.Contains(t, string(out), "12345")
	})
}

func TestJSONFormatter(t *testing.T) {
	logger := newTestLogger()

	decode := func(t *testing.T, b []byte) map[string]any {
		t.Helper()
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	}

	t.Run("StandardFields", func(t *testing.T) {
		f, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelError, "it broke", []any{"attempt", 3}))
		require.NoError(t, err)

		m := decode(t, out)
		assert.Equal(t, "ERROR", m["level"])
		assert.Equal(t, "it broke", m["message"])
		assert.NotEmpty(t, m["time"])
		assert.Len(t, m["metadata"], 2)
	})

	t.Run("JSONMessageMerges", func(t *testing.T) {
		f, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelInfo, `{"user":"bob","level":"spoofed"}`, nil))
		require.NoError(t, err)

		m := decode(t, out)
		assert.Equal(t, "bob", m["user"])
		// Standard fields win over message keys
		assert.Equal(t, "INFO", m["level"])
	})

	t.Run("CustomFieldNames", func(t *testing.T) {
		f, err := NewJSONFormatter(&JSONOptions{
			TimestampField: "ts",
			LevelField:     "severity",
			MessageField:   "msg",
		}, logger)
		require.NoError(t, err)

		out, err := f.Format(core.NewRecord(core.LevelDebug, "tracing", nil))
		require.NoError(t, err)

		m := decode(t, out)
		assert.Equal(t, "DEBUG", m["severity"])
		assert.Equal(t, "tracing", m["msg"])
		assert.NotEmpty(t, m["ts"])
	})
}

func TestRawFormatter(t *testing.T) {
	f, err := NewRawFormatter(newTestLogger())
	require.NoError(t, err)

	out, err := f.Format(core.NewRecord(core.LevelInfo, "verbatim line", nil))
	require.NoError(t, err)
	assert.Equal(t, "verbatim line\n", string(out))
}
