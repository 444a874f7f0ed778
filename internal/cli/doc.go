// Package cli defines the gitmate command tree: commit, review, report,
// archive, init, and hook management.
package cli
