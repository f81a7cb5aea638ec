package parser

import (
	"testing"
	"time"
)

func TestParseSheetName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		kind  SheetKind
		year  int
		month int
		ok    bool
	}{
		{"WYKONANIE_2025_03", SheetMonth, 2025, 3, true},
		{"WYKONANIE_2025_3", SheetMonth, 2025, 3, true},
		{"AUDYT_2024_12", SheetAudit, 2024, 12, true},
		{"WYKONANIE_2025_13", SheetUnknown, 0, 0, false},
		{"Sheet1", SheetUnknown, 0, 0, false},
		{"PLAN_2025_01", SheetUnknown, 0, 0, false},
	}
	for _, tc := range cases {
		kind, year, month, ok := ParseSheetName(tc.name)
		if kind != tc.kind || year != tc.year || month != tc.month || ok != tc.ok {
			t.Fatalf("%s want=(%v %d %d %v) got=(%v %d %d %v)", tc.name, tc.kind, tc.year, tc.month, tc.ok, kind, year, month, ok)
		}
	}
}

func TestSheetNamesRoundTrip(t *testing.T) {
	t.Parallel()

	if got := MonthSheetName(2025, 3); got != "WYKONANIE_2025_03" {
		t.Fatalf("unexpected month sheet name: %s", got)
	}
	if got := AuditSheetName(2025, 11); got != "AUDYT_2025_11" {
		t.Fatalf("unexpected audit sheet name: %s", got)
	}
	kind, year, month, ok := ParseSheetName(MonthSheetName(2031, 7))
	if !ok || kind != SheetMonth || year != 2031 || month != 7 {
		t.Fatalf("round trip failed: %v %d %d %v", kind, year, month, ok)
	}
}

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	if got := NormalizeColumnName("  rooms.available_qty\n"); got != "rooms.available_qty" {
		t.Fatalf("unexpected: %q", got)
	}
	if !IsDateColumn(" Data ") || !IsDateColumn("date") || IsDateColumn("dzien") {
		t.Fatalf("date column detection failed")
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"18000", 18000, true},
		{"18 000,50", 18000.5, true},
		{"18 000.5", 18000.5, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"-12,25", -12.25, true},
		{"", 0, false},
		{"nan", 0, false},
		{"None", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseNumber(%q) want=(%v %v) got=(%v %v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestParseCellDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-03-01", "2025-03-01 00:00:00", "01.03.2025", "45717"} {
		got, ok := ParseCellDate(in)
		if !ok || !got.Equal(want) {
			t.Fatalf("ParseCellDate(%q) want=%v got=%v ok=%v", in, want, got, ok)
		}
	}
	if got, ok := ParseCellDate("05-03-25"); !ok || !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day-first short date want=2025-03-05 got=%v ok=%v", got, ok)
	}
	if _, ok := ParseCellDate("jutro"); ok {
		t.Fatalf("expected failure for non-date text")
	}
}
