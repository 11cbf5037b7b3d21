// Package review implements the review availability decision layer: given a
// user's card collection, review history and daily limits, it decides whether
// a review session is available right now, whether an early review may be
// offered instead, and how many new cards may still be introduced today.
//
// The central type is Availabilities, a per-request snapshot whose accessors
// are computed once and memoized so a single decision pass sees internally
// consistent answers even while the underlying data keeps changing.
package review
