package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldBatch is the structured log field key for the analysis batch identifier.
	FieldBatch = "batch_id"
	// FieldSource tells where a batch came from (cli, http).
	FieldSource = "source"
	// FieldCandidate is the structured log field key for a candidate document identifier.
	FieldCandidate = "candidate"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// BatchFields returns the fields describing an analysis batch.
func BatchFields(batchID, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldBatch, Value: batchID},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithBatchFields attaches the batch fields to logger.
func WithBatchFields(logger *zap.Logger, batchID, source string) *zap.Logger {
	return WithFields(logger, BatchFields(batchID, source)...)
}
