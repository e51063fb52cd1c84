package main

import (
	"testing"
	"time"
)

func TestFormatClock(t *testing.T) {
	if got := formatClock(time.Time{}); got != "--:--" {
		t.Fatalf("zero time: got %q", got)
	}
	ts := time.Date(2026, 8, 30, 15, 5, 0, 0, time.UTC)
	if got := formatClock(ts); got != "03:05 PM IST" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatStartTime(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", "not specified"},
		{"  ", "not specified"},
		{"2024-03-05T15:30:00Z", "Tuesday, March 5, 2024 at 03:30 PM IST"},
		{"2024-03-05T15:30:00", "Tuesday, March 5, 2024 at 03:30 PM IST"},
		{"2024-03-05 15:30:00", "Tuesday, March 5, 2024 at 03:30 PM IST"},
		{"next thursday-ish", "next thursday-ish"},
	}
	for _, tc := range cases {
		if got := formatStartTime(tc.raw); got != tc.want {
			t.Fatalf("formatStartTime(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNullCoalesce(t *testing.T) {
	if got := nullCoalesce("", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
	if got := nullCoalesce("  ", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
	if got := nullCoalesce("value", "fallback"); got != "value" {
		t.Fatalf("got %q", got)
	}
}

func TestOnOff(t *testing.T) {
	if onOff(true) != "on" || onOff(false) != "off" {
		t.Fatalf("unexpected onOff output")
	}
}

func TestTernary(t *testing.T) {
	if got := ternary(true, "a", "b"); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := ternary(false, 1, 2); got != 2 {
		t.Fatalf("got %d", got)
	}
}

func TestMinMaxInt(t *testing.T) {
	if maxInt(3, 7) != 7 || maxInt(7, 3) != 7 {
		t.Fatalf("maxInt broken")
	}
	if minInt(3, 7) != 3 || minInt(7, 3) != 3 {
		t.Fatalf("minInt broken")
	}
}
