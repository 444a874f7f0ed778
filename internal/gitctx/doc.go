// Package gitctx extracts change context from the local git repository:
// the staged diff, the staged file list, repository identity, and the last
// commit message.
//
// Ignore patterns from .gitmateignore files (repo root and user config dir)
// are applied as git exclude pathspecs, so the diff handed to the pipeline
// is already filtered. All functions shell out to the git binary.
package gitctx
