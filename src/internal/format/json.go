// FILE: logfan/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"logfan/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONOptions configures the structured JSON formatter.
type JSONOptions struct {
	TimestampField string `toml:"timestamp_field"`
	LevelField     string `toml:"level_field"`
	MessageField   string `toml:"message_field"`
	MetadataField  string `toml:"metadata_field"`
	Pretty         bool   `toml:"pretty"`
}

// DefaultJSONOptions returns the built-in JSON field names.
func DefaultJSONOptions() *JSONOptions {
	return &JSONOptions{
		TimestampField: "time",
		LevelField:     "level",
		MessageField:   "message",
		MetadataField:  "metadata",
	}
}

// JSONFormatter produces structured JSON logs from records.
type JSONFormatter struct {
	config *JSONOptions
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration options.
func NewJSONFormatter(opts *JSONOptions, logger *log.Logger) (*JSONFormatter, error) {
	if opts == nil {
		opts = DefaultJSONOptions()
	}
	defaults := DefaultJSONOptions()
	if opts.TimestampField == "" {
		opts.TimestampField = defaults.TimestampField
	}
	if opts.LevelField == "" {
		opts.LevelField = defaults.LevelField
	}
	if opts.MessageField == "" {
		opts.MessageField = defaults.MessageField
	}
	if opts.MetadataField == "" {
		opts.MetadataField = defaults.MetadataField
	}

	return &JSONFormatter{
		config: opts,
		logger: logger,
	}, nil
}

// Format transforms a single record into a JSON byte slice.
func (f *JSONFormatter) Format(rec core.Record) ([]byte, error) {
	output := make(map[string]any)

	output[f.config.TimestampField] = rec.Time.Format(time.RFC3339Nano)
	output[f.config.LevelField] = rec.Level.String()

	// A message that is itself valid JSON merges into the output;
	// standard fields take precedence.
	message := stringify(rec.Message)
	var msgData map[string]any
	if err := json.Unmarshal([]byte(message), &msgData); err == nil {
		for k, v := range msgData {
			if k != f.config.TimestampField && k != f.config.LevelField {
				output[k] = v
			}
		}
	} else {
		output[f.config.MessageField] = message
	}

	if len(rec.Metadata) > 0 {
		output[f.config.MetadataField] = rec.Metadata
	}

	var result []byte
	var err error
	if f.config.Pretty {
		result, err = json.MarshalIndent(output, "", "  ")
	} else {
		result, err = json.Marshal(output)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}
