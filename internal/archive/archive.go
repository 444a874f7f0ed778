package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Record is one archived activity entry.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	Project   string    `json:"project"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
}

// Store appends and reads activity records for one project. Records live in
// one JSON-lines file per project under the archive directory, so concurrent
// appends from separate processes interleave at line granularity.
type Store struct {
	dir     string
	project string
}

// Open returns a store rooted at dir for the named project.
func Open(dir, project string) *Store {
	return &Store{dir: dir, project: project}
}

func (s *Store) path() string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, s.project)
	return filepath.Join(s.dir, name+".jsonl")
}

// Append writes one record as a single line. The file is opened in append
// mode and the line is written with one Write call, so a crash mid-run never
// corrupts earlier records.
func (s *Store) Append(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Project = s.project

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding archive record: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("appending to archive: %w", err)
	}
	return f.Close()
}

// ReadRange returns records with since <= Timestamp < until, sorted ascending
// by timestamp. Malformed lines are skipped and reported as warnings rather
// than failing the whole read. A missing archive file yields no records.
func (s *Store) ReadRange(since, until time.Time) ([]Record, []string, error) {
	records, warnings, err := readFile(s.path(), since, until)
	if err != nil {
		return nil, nil, err
	}
	sortByTime(records)
	return records, warnings, nil
}

// ReadRangeAll reads every project's archive under dir for [since, until),
// merged and sorted ascending by timestamp. Used by cross-project reports.
func ReadRangeAll(dir string, since, until time.Time) ([]Record, []string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, nil, fmt.Errorf("listing archives: %w", err)
	}
	sort.Strings(paths)

	var records []Record
	var warnings []string
	for _, path := range paths {
		recs, warns, err := readFile(path, since, until)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("archive %s unreadable, skipped: %v", filepath.Base(path), err))
			continue
		}
		records = append(records, recs...)
		warnings = append(warnings, warns...)
	}
	sortByTime(records)
	return records, warnings, nil
}

func readFile(path string, since, until time.Time) ([]Record, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading archive: %w", err)
	}

	var records []Record
	var warnings []string
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			warnings = append(warnings, fmt.Sprintf("archive line %d unreadable, skipped: %v", i+1, err))
			continue
		}
		if rec.Timestamp.Before(since) || !rec.Timestamp.Before(until) {
			continue
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

func sortByTime(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

// Period resolves a named report period to a half-open [since, until) range
// anchored at now. Supported names: today, yesterday, week, month, quarter,
// year.
func Period(name string, now time.Time) (since, until time.Time, err error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(name) {
	case "today":
		return midnight, midnight.AddDate(0, 0, 1), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), midnight, nil
	case "week":
		return midnight.AddDate(0, 0, -7), midnight.AddDate(0, 0, 1), nil
	case "month":
		return midnight.AddDate(0, -1, 0), midnight.AddDate(0, 0, 1), nil
	case "quarter":
		return midnight.AddDate(0, -3, 0), midnight.AddDate(0, 0, 1), nil
	case "year":
		return midnight.AddDate(-1, 0, 0), midnight.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q (want today, yesterday, week, month, quarter, or year)", name)
	}
}
