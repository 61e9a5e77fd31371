// Package aggregates declares the write-side contracts of the order-inventory core.
//
// Every write method owns its transaction boundary and reports failures as *Error with
// one of the ErrorCode values below. Callers never retry inside the core; CodeRetryable
// tells them a retry is safe.
package aggregates
