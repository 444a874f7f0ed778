// Gitmate is an AI assistant for git workflows: it generates Conventional
// Commits messages from staged changes, reviews diffs, and summarizes
// archived activity into work reports.
//
// Usage:
//
//	gitmate init                  # write the default config and prompts
//	gitmate commit -a             # stage tracked changes, generate, refine, commit
//	gitmate review                # review staged changes
//	gitmate report --period week  # summarize the last week's activity
//	gitmate hook install          # archive every commit via post-commit hook
//
// Oversized diffs are split along file and hunk boundaries and recursively
// summarized so any change fits the configured model's context window.
//
// See https://github.com/dshills/gitmate for full documentation.
package main
