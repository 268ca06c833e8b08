// Package plan holds the fleet-wide route model of the pickup-and-delivery
// optimizer: the immutable Problem, copy-on-write Assignments, the capacity
// gate and the neighborhood generator used by the local search.
//
// Assignments are never mutated after construction. Neighbors share the
// route slices they do not touch with their parent; Route and Routes always
// return copies so callers never observe that sharing.
package plan
