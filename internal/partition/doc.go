// Package partition splits raw unified-diff text into independently
// summarizable chunks.
//
// The split is file-boundary first; a single file whose estimated token count
// exceeds the caller's limit is split again along hunk boundaries, never
// inside a hunk. The result is ordered, stable across runs, and lossless:
// concatenating the chunk texts reproduces the input diff exactly.
package partition
