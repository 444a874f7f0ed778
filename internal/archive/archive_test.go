package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir, "myproject")

	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	recs := []Record{
		{Timestamp: base, Author: "ann", Kind: "commit", Text: "feat: add parser"},
		{Timestamp: base.Add(2 * time.Hour), Author: "ann", Kind: "review", Text: "looks fine"},
		{Timestamp: base.Add(48 * time.Hour), Author: "bob", Kind: "commit", Text: "fix: off by one"},
	}
	for _, r := range recs {
		if err := store.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, warns, err := store.ReadRange(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("warnings = %v, want none", warns)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Text != "feat: add parser" || got[1].Text != "looks fine" {
		t.Errorf("unexpected records: %+v", got)
	}
	for _, r := range got {
		if r.Project != "myproject" {
			t.Errorf("Project = %q, want myproject", r.Project)
		}
	}
}

func TestReadRangeHalfOpen(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir, "p")
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Append(Record{Timestamp: ts, Kind: "commit", Text: "boundary"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Record at since is included, record at until is excluded.
	if got, _, _ := store.ReadRange(ts, ts.Add(time.Second)); len(got) != 1 {
		t.Errorf("record at since excluded, got %d", len(got))
	}
	if got, _, _ := store.ReadRange(ts.Add(-time.Second), ts); len(got) != 0 {
		t.Errorf("record at until included, got %d", len(got))
	}
}

func TestReadRangeSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir, "p")
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Append(Record{Timestamp: ts, Kind: "commit", Text: "good"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.OpenFile(store.path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()
	if err := store.Append(Record{Timestamp: ts.Add(time.Hour), Kind: "commit", Text: "also good"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, warns, err := store.ReadRange(ts, ts.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want 2 around the bad line", len(got))
	}
	if len(warns) != 1 || !strings.Contains(warns[0], "line 2") {
		t.Errorf("warnings = %v, want one naming line 2", warns)
	}
}

func TestReadRangeSortsByTimestamp(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir, "p")
	ts := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, off := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		if err := store.Append(Record{Timestamp: ts.Add(off), Kind: "commit", Text: off.String()}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, _, err := store.ReadRange(ts, ts.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	want := []string{"1h0m0s", "2h0m0s", "3h0m0s"}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Text, w)
		}
	}
}

func TestMissingArchiveYieldsNothing(t *testing.T) {
	store := Open(t.TempDir(), "never-written")
	got, warns, err := store.ReadRange(time.Time{}, time.Now())
	if err != nil || got != nil || warns != nil {
		t.Errorf("got %v %v %v, want all empty", got, warns, err)
	}
}

func TestProjectNameSanitized(t *testing.T) {
	store := Open("/base", "org/repo:main")
	got := filepath.Base(store.path())
	if got != "org_repo_main.jsonl" {
		t.Errorf("path base = %q", got)
	}
}

func TestReadRangeAllMergesProjects(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	a, b := Open(dir, "aaa"), Open(dir, "bbb")
	if err := a.Append(Record{Timestamp: ts.Add(2 * time.Hour), Kind: "commit", Text: "from-a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := b.Append(Record{Timestamp: ts.Add(time.Hour), Kind: "commit", Text: "from-b"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, warns, err := ReadRangeAll(dir, ts, ts.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ReadRangeAll: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("warnings = %v", warns)
	}
	if len(got) != 2 || got[0].Text != "from-b" || got[1].Text != "from-a" {
		t.Errorf("records = %+v, want merged ascending", got)
	}
	if got[0].Project != "bbb" || got[1].Project != "aaa" {
		t.Errorf("projects = %q %q", got[0].Project, got[1].Project)
	}
}

func TestPeriod(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	midnight := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		since time.Time
		until time.Time
	}{
		{"today", midnight, midnight.AddDate(0, 0, 1)},
		{"yesterday", midnight.AddDate(0, 0, -1), midnight},
		{"week", midnight.AddDate(0, 0, -7), midnight.AddDate(0, 0, 1)},
		{"month", midnight.AddDate(0, -1, 0), midnight.AddDate(0, 0, 1)},
		{"quarter", midnight.AddDate(0, -3, 0), midnight.AddDate(0, 0, 1)},
		{"year", midnight.AddDate(-1, 0, 0), midnight.AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		since, until, err := Period(tt.name, now)
		if err != nil {
			t.Errorf("Period(%q): %v", tt.name, err)
			continue
		}
		if !since.Equal(tt.since) || !until.Equal(tt.until) {
			t.Errorf("Period(%q) = [%v, %v), want [%v, %v)", tt.name, since, until, tt.since, tt.until)
		}
	}

	if _, _, err := Period("fortnight", now); err == nil {
		t.Error("Period(fortnight) should fail")
	}
}
