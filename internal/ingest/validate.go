package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// requiredFields must be present on every item. Presence is what counts:
// empty strings and nulls pass.
var requiredFields = []string{"log_type", "message", "timestamp"}

var (
	ErrItemNotObject    = errors.New("log item is not a JSON object")
	ErrItemMissingField = errors.New("log item is missing a required field")

	// ErrItemNulByte rejects text fields PostgreSQL TEXT columns cannot hold.
	ErrItemNulByte = errors.New("log item field contains a NUL character")
)

// ValidateItem decides whether a raw log item may be turned into a record.
func ValidateItem(item any) error {
	obj, ok := item.(map[string]any)
	if !ok {
		return ErrItemNotObject
	}
	for _, key := range requiredFields {
		v, ok := obj[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrItemMissingField, key)
		}
		if s, ok := v.(string); ok && strings.ContainsRune(s, 0) {
			return fmt.Errorf("%w: %s", ErrItemNulByte, key)
		}
	}
	return nil
}

// rejectReason maps a validation error to a short metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrItemNotObject):
		return "not_object"
	case errors.Is(err, ErrItemMissingField):
		return "missing_field"
	case errors.Is(err, ErrItemNulByte):
		return "nul_byte"
	default:
		return "invalid"
	}
}

// fieldString renders a present field as text. Strings are kept verbatim,
// null becomes "", anything else its compact JSON form.
func fieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
