// Package refine implements the interactive revision loop for generated
// commit messages: present, accept, revise with feedback, or revert to the
// original draft.
package refine
