package redo

import "context"

// Retriable wraps fn so that every call of the returned function runs
// through r.
func Retriable(r *Retrier, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return r.Do(ctx, fn)
	}
}

// RetriableWithResult wraps fn so that every call of the returned function
// runs through r, preserving the result value.
func RetriableWithResult[T any](r *Retrier, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return DoWithResult(ctx, r, fn)
	}
}

// Retrying builds a retrier from opts and returns fn wrapped with it, for
// callers that want a retriable callable within a bounded block. The wrapper
// holds no resources; nothing needs to be released afterwards.
func Retrying(fn func(context.Context) error, opts ...Option) (func(context.Context) error, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return Retriable(r, fn), nil
}

// RetryingWithResult is Retrying for actions that return a value.
func RetryingWithResult[T any](fn func(context.Context) (T, error), opts ...Option) (func(context.Context) (T, error), error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return RetriableWithResult(r, fn), nil
}
