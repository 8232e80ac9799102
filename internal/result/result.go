// Package result provides a two-variant outcome wrapper used to fold
// backend call outcomes into view-model state.
package result

// Result holds exactly one of a success value or an error. The zero value
// is not meaningful; construct via Success or Failure.
type Result[D any, E error] struct {
	data      D
	err       E
	succeeded bool
}

// Success wraps a value in the success variant.
func Success[D any, E error](data D) Result[D, E] {
	return Result[D, E]{data: data, succeeded: true}
}

// Failure wraps an error in the error variant.
func Failure[D any, E error](err E) Result[D, E] {
	return Result[D, E]{err: err}
}

func (r Result[D, E]) IsSuccess() bool { return r.succeeded }

func (r Result[D, E]) IsError() bool { return !r.succeeded }

// Data returns the success value and whether it is present.
func (r Result[D, E]) Data() (D, bool) {
	return r.data, r.succeeded
}

// Err returns the error value and whether it is present.
func (r Result[D, E]) Err() (E, bool) {
	return r.err, !r.succeeded
}

// OnSuccess invokes f with the success value iff the result is a success.
// The original result is returned unchanged so calls can be chained.
func (r Result[D, E]) OnSuccess(f func(D)) Result[D, E] {
	if r.succeeded {
		f(r.data)
	}
	return r
}

// OnError invokes f with the error iff the result is an error.
// The original result is returned unchanged so calls can be chained.
func (r Result[D, E]) OnError(f func(E)) Result[D, E] {
	if !r.succeeded {
		f(r.err)
	}
	return r
}

// AndThenIfSuccess runs f on the success value and returns its result.
// When r is an error the chain does not apply: the returned ok is false
// and the result is the zero value. Callers must treat ok=false as a
// distinct third outcome, not as an error.
func AndThenIfSuccess[D, A any, E error](r Result[D, E], f func(D) Result[A, E]) (Result[A, E], bool) {
	if !r.succeeded {
		return Result[A, E]{}, false
	}
	return f(r.data), true
}

// AndThenIfError is the mirror of AndThenIfSuccess: f runs only when r
// is an error, and ok is false when r is a success.
func AndThenIfError[D, A any, E error](r Result[D, E], f func(E) Result[A, E]) (Result[A, E], bool) {
	if r.succeeded {
		return Result[A, E]{}, false
	}
	return f(r.err), true
}
