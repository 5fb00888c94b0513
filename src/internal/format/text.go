// FILE: logfan/src/internal/format/text.go
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"logfan/src/internal/core"

	"github.com/lixenwraith/log"
)

// TextOptions configures the template-based text formatter.
type TextOptions struct {
	Template        string `toml:"template"`
	TimestampFormat string `toml:"timestamp_format"`
}

// DefaultTextOptions returns the built-in text layout.
func DefaultTextOptions() *TextOptions {
	return &TextOptions{
		Template:        "[{{FmtTime .Timestamp}}] [{{.Level}}] {{.Message}}{{if .Metadata}} {{.Metadata}}{{end}}\n",
		TimestampFormat: time.RFC3339,
	}
}

// TextFormatter produces human-readable text logs using templates.
type TextFormatter struct {
	config   *TextOptions
	template *template.Template
	logger   *log.Logger
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts *TextOptions, logger *log.Logger) (*TextFormatter, error) {
	if opts == nil {
		opts = DefaultTextOptions()
	}
	if opts.Template == "" {
		opts.Template = DefaultTextOptions().Template
	}
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339
	}

	f := &TextFormatter{
		config: opts,
		logger: logger,
	}

	funcMap := template.FuncMap{
		"FmtTime": func(t time.Time) string {
			return t.Format(f.config.TimestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("log").Funcs(funcMap).Parse(f.config.Template)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Format renders the record through the template.
func (f *TextFormatter) Format(rec core.Record) ([]byte, error) {
	data := map[string]any{
		"Timestamp": rec.Time,
		"Level":     rec.Level.String(),
		"Message":   stringify(rec.Message),
	}

	if len(rec.Metadata) > 0 {
		parts := make([]string, len(rec.Metadata))
		for i, m := range rec.Metadata {
			parts[i] = fmt.Sprint(m)
		}
		data["Metadata"] = strings.Join(parts, " ")
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		// Fallback: return a basic formatted message
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)

		fallback := fmt.Sprintf("[%s] [%s] %s\n",
			rec.Time.Format(f.config.TimestampFormat),
			rec.Level,
			stringify(rec.Message))
		return []byte(fallback), nil
	}

	return buf.Bytes(), nil
}

// Name returns the formatter's type name.
func (f *TextFormatter) Name() string {
	return "text"
}
