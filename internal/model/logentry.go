package model

import "time"

// TimestampLayout is the canonical storage form of a normalized timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// LogRecord is a validated, normalized log item ready to be written.
// Data holds the serialized JSON payload, or nil when the item carried none.
// Timestamp is canonical when it parsed, otherwise the value as submitted.
type LogRecord struct {
	LogType   string  `json:"log_type"`
	Message   string  `json:"message"`
	Data      *string `json:"data,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// StoredLogEntry is a persisted row as shown by the recent entries view.
// Data is the decoded payload, nil, or DataDecodeError.
type StoredLogEntry struct {
	ID         int64     `json:"id"`
	LogType    string    `json:"log_type"`
	Message    string    `json:"message"`
	Data       any       `json:"data"`
	Timestamp  string    `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at"`
}

// DataDecodeError replaces a stored payload that is no longer valid JSON.
const DataDecodeError = "Error decoding JSON"
