// Package sanitizer normalizes request input before validation.
//
// All functions are idempotent and never fail: bad input becomes an empty
// value for the validator to reject.
package sanitizer
