package ingest

import "testing"

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2024-01-15T10:30:00Z", "2024-01-15 10:30:00", true},
		{"2024-01-15T10:30:00.123Z", "2024-01-15 10:30:00", true},
		{"2024-01-15T10:30:00.123456+00:00", "2024-01-15 10:30:00", true},
		{"2024-01-15 10:30:00", "2024-01-15 10:30:00", true},
		{"2024-01-15T10:30", "2024-01-15 10:30:00", true},
		{"2024-01-15T10", "2024-01-15 10:00:00", true},
		{"2024-01-15", "2024-01-15 00:00:00", true},
		// The offset is dropped, the wall clock is kept.
		{"2024-01-15T10:30:00+05:30", "2024-01-15 10:30:00", true},
		{"2024-01-15T23:59:59-0800", "2024-01-15 23:59:59", true},
		{"2024-01-15T10:30:00+02", "2024-01-15 10:30:00", true},
		{"not-a-date", "not-a-date", false},
		{"", "", false},
		{"2024-13-01T00:00:00Z", "2024-13-01T00:00:00Z", false},
		{"2024-01-15T25:00:00", "2024-01-15T25:00:00", false},
		{"15/01/2024 10:30", "15/01/2024 10:30", false},
		{"1705314600", "1705314600", false},
		{" 2024-01-15T10:30:00Z", " 2024-01-15T10:30:00Z", false},
		{"2024-01-15T9:30:00", "2024-01-15T9:30:00", false},
		{"2024-01-15T10:3:00", "2024-01-15T10:3:00", false},
		{"2024-1-15", "2024-1-15", false},
		{"0000-01-01", "0000-01-01", false},
		{"2024-01-15+05:00", "2024-01-15+05:00", false},
		{"0001-01-01", "0001-01-01 00:00:00", true},
		{"2024-01-15T10:30:00,5", "2024-01-15 10:30:00", true},
	}
	for _, tt := range tests {
		got, ok := NormalizeTimestamp(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeTimestamp(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
