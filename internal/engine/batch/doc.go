// Package batch splits a slice of work into fixed-size batches and runs them
// sequentially or on a bounded number of goroutines.
//
// Results are written into slots addressed by the item's original index, so
// the output order never depends on scheduling. Context cancellation is
// checked between batches; a batch that has started always runs to the end.
package batch
