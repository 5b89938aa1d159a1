// Package redo retries flaky operations with capped exponential backoff and symmetric jitter.
//
// A retrier invokes a caller-supplied action once per attempt slot, sleeping a
// growing, jittered delay between slots, until the action succeeds or the
// configured number of attempts is exhausted.
//
// See the article for background: [Reference]
//
// [Reference]: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
package redo
