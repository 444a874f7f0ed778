package cli

import (
	"testing"
	"time"
)

func setReportFlags(t *testing.T, period, since, until string) {
	t.Helper()
	oldPeriod, oldSince, oldUntil := reportPeriod, reportSince, reportUntil
	t.Cleanup(func() { reportPeriod, reportSince, reportUntil = oldPeriod, oldSince, oldUntil })
	reportPeriod, reportSince, reportUntil = period, since, until
}

func TestReportRangeExplicitDates(t *testing.T) {
	setReportFlags(t, "week", "2026-08-01", "2026-08-15")

	since, until, err := reportRange()
	if err != nil {
		t.Fatalf("reportRange: %v", err)
	}
	wantSince := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	wantUntil := time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local)
	if !since.Equal(wantSince) || !until.Equal(wantUntil) {
		t.Errorf("range = [%v, %v), want [%v, %v)", since, until, wantSince, wantUntil)
	}
}

func TestReportRangeSinceOnlyEndsNow(t *testing.T) {
	setReportFlags(t, "week", "2026-08-01", "")

	before := time.Now()
	_, until, err := reportRange()
	if err != nil {
		t.Fatalf("reportRange: %v", err)
	}
	if until.Before(before) {
		t.Errorf("until = %v, want now or later", until)
	}
}

func TestReportRangePeriodFallback(t *testing.T) {
	setReportFlags(t, "today", "", "")

	since, until, err := reportRange()
	if err != nil {
		t.Fatalf("reportRange: %v", err)
	}
	// A calendar day; DST transitions allow an hour either way.
	if span := until.Sub(since); span < 23*time.Hour || span > 25*time.Hour {
		t.Errorf("today spans %v, want about 24h", span)
	}
}

func TestReportRangeErrors(t *testing.T) {
	cases := []struct {
		name                 string
		period, since, until string
	}{
		{"until without since", "week", "", "2026-08-15"},
		{"bad since", "week", "08/01/2026", ""},
		{"bad until", "week", "2026-08-01", "Aug 15"},
		{"inverted range", "week", "2026-08-15", "2026-08-01"},
		{"unknown period", "fortnight", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setReportFlags(t, tc.period, tc.since, tc.until)
			if _, _, err := reportRange(); err == nil {
				t.Error("want error")
			}
		})
	}
}
