package ingest

import (
	"regexp"
	"strings"
	"time"

	"github.com/akave-ai/seclog/internal/model"
)

// isoLayouts lists the accepted ISO-8601 shapes: a date, optionally followed by
// 'T' or ' ' and an hour, minute or second precision time, optionally followed
// by a numeric offset. Fractional seconds are accepted after the seconds field.
var isoLayouts = buildISOLayouts()

// isoShape enforces the fixed-width fields that time.Parse is lenient about,
// such as a one-digit hour.
var isoShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}(:\d{2}(:\d{2}([.,]\d+)?)?)?([+-]\d{2}(:?\d{2})?)?)?$`)

func buildISOLayouts() []string {
	const date = "2006-01-02"
	times := []string{"15:04:05", "15:04", "15"}
	offsets := []string{"", "-07:00", "-0700", "-07"}

	layouts := []string{date}
	for _, sep := range []string{"T", " "} {
		for _, tm := range times {
			for _, off := range offsets {
				layouts = append(layouts, date+sep+tm+off)
			}
		}
	}
	return layouts
}

// NormalizeTimestamp parses raw as an ISO-8601 timestamp and returns it in
// model.TimestampLayout. A trailing "Z" means UTC. The offset is dropped, not
// applied: the wall clock value is kept. If raw does not parse, it is returned
// unchanged with ok set to false.
func NormalizeTimestamp(raw string) (normalized string, ok bool) {
	s := raw
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	if !isoShape.MatchString(s) {
		return raw, false
	}
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err != nil || t.Year() < 1 {
			continue
		}
		return t.Format(model.TimestampLayout), true
	}
	return raw, false
}
