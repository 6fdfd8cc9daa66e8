package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/akave-ai/seclog/internal/model"
)

var (
	// ErrMalformedRequest rejects a whole request whose body is not an object
	// with a "logs" array.
	ErrMalformedRequest = errors.New("invalid input data, expected a JSON object with a 'logs' array")
	// ErrStorage means the batch could not be committed. Nothing from it was stored.
	ErrStorage = errors.New("storing log batch failed")
)

// Rejection identifies an input item that produced no record.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Batch is the result of turning one request's items into records.
// Records keep the input order.
type Batch struct {
	Records  []model.LogRecord
	Rejected []Rejection
	// Fallbacks lists the indices of items whose timestamp was stored as submitted.
	Fallbacks []int
}

// ParsePayload decodes a request body and returns its "logs" items.
// Numbers are kept as json.Number so payloads are stored as submitted.
func ParsePayload(body []byte) ([]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedRequest)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedRequest)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not an object", ErrMalformedRequest)
	}
	logs, ok := obj["logs"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: 'logs' missing or not an array", ErrMalformedRequest)
	}
	return logs, nil
}

// BuildBatch validates and normalizes items. Invalid items are skipped and
// recorded in Batch.Rejected; they never stop the rest of the batch.
func BuildBatch(items []any) Batch {
	batch := Batch{Records: make([]model.LogRecord, 0, len(items))}
	for i, item := range items {
		if err := ValidateItem(item); err != nil {
			batch.Rejected = append(batch.Rejected, Rejection{Index: i, Reason: rejectReason(err), Err: err})
			continue
		}
		obj := item.(map[string]any)

		ts, ok := NormalizeTimestamp(fieldString(obj["timestamp"]))
		if !ok {
			batch.Fallbacks = append(batch.Fallbacks, i)
		}
		batch.Records = append(batch.Records, model.LogRecord{
			LogType:   fieldString(obj["log_type"]),
			Message:   fieldString(obj["message"]),
			Data:      serializeData(obj["data"]),
			Timestamp: ts,
		})
	}
	return batch
}

// serializeData returns the JSON text of data, or nil when data is absent or
// empty: null, false, 0, "", {} and [] are all stored as NULL.
func serializeData(data any) *string {
	if isEmptyValue(data) {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
