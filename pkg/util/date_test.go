package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "01/15/2024", "2024-13-01", "tomorrow"} {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	// 23:30 EST on the 14th is already the 15th in UTC
	ts := time.Date(2024, 1, 14, 23, 30, 0, 0, loc)
	if got := DateKey(ts); got != "2024-01-15" {
		t.Fatalf("expected 2024-01-15, got %s", got)
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-01-15T19:00:00Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}
