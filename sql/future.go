package sql

import "sync"

// Future models the Unforced -> Pending -> Resolved lifecycle of a lazy
// cell closure, implemented as a memoizing wrapper
// around a plain function call rather than a goroutine: the engine is
// single-threaded cooperative, so "pending" here just means
// "another caller is already inside the thunk", which sync.Once serializes
// for free without needing a channel-based future.
type Future struct {
	once  sync.Once
	fn    func() (Value, error)
	value Value
	err   error
}

// NewFuture wraps fn as an Unforced future; fn runs at most once.
func NewFuture(fn func() (Value, error)) *Future {
	return &Future{fn: fn}
}

// Resolved returns an already-Resolved future, for sources that have no
// deferred work to do.
func Resolved(v Value) *Future {
	return &Future{value: v}
}

// Force transitions Unforced->Resolved on first call; subsequent calls
// return the memoized result without re-running fn.
func (f *Future) Force() (Value, error) {
	f.once.Do(func() {
		if f.fn != nil {
			f.value, f.err = f.fn()
		}
	})
	return f.value, f.err
}
