// Package generate runs the end-to-end pipeline for each task: partition the
// input, reduce it under the model's budget, fill the task's prompt template,
// call the provider, and extract the structured result.
package generate
