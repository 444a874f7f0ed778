// Package archive keeps the append-only activity log. Every generated
// commit message and review summary lands here as one JSON line per record,
// one file per project, which later feeds period reports.
package archive
