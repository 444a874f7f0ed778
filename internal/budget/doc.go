// Package budget maps model identifiers to usable token capacity and provides
// a deterministic token-count estimate for arbitrary text.
//
// A [Profile] records a model's context window, maximum output, and reserved
// overhead; [Profile.Usable] is what remains for input. [Lookup] never fails:
// unknown models fall back to a conservative default so budgeting degrades
// gracefully instead of blocking the pipeline.
package budget
