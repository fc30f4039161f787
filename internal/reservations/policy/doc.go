// Package policy holds the pure booking rules: skill tiers and eligibility,
// booking windows and lead time, pricing and payment gating. Nothing here
// performs I/O; callers pass in the documents and the clock.
package policy
