// Package summarize reduces an arbitrarily large chunk sequence to a context
// bundle that fits a model's usable token budget.
//
// The common case, where everything already fits, makes zero model calls. When
// reduction is needed, chunks are greedily bin-packed into groups sized for
// one completion call, the groups are summarized concurrently by a bounded
// worker pool, and the summaries are reassembled in original order. The loop
// repeats for a bounded number of rounds; once exhausted, trailing content is
// dropped and the bundle's Truncated flag is set so the caller can surface
// that the model saw an incomplete picture. A failed group becomes a
// deterministic placeholder, never a pipeline abort.
package summarize
