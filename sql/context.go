package sql

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Context carries the cancellation signal threaded through every stream and
// cell future, plus the handful of ambient services (clock, logger) that
// keep evaluation deterministic and observable. It wraps a context.Context
// rather than replacing it, so standard context plumbing keeps working
// (every Engine/RowIter method takes one as its first argument).
type Context struct {
	context.Context
	Logger logrus.FieldLogger
	Now    func() time.Time

	// MaxBuildRows caps how many rows a single blocking operator (Sort,
	// Aggregate's group table, Distinct's seen set, a join's build side)
	// may buffer before it fails with ErrUnsupportedFeature instead of
	// growing without bound. Zero means unbounded.
	MaxBuildRows int
}

// NewContext wraps an existing context.Context. A nil parent is replaced
// with context.Background().
func NewContext(parent context.Context, opts ...func(*Context)) *Context {
	if parent == nil {
		parent = context.Background()
	}
	c := &Context{
		Context: parent,
		Logger:  logrus.StandardLogger(),
		Now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewEmptyContext builds a Context over context.Background(), for tests and
// one-off evaluation.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// WithLogger overrides the context's logger.
func WithLogger(l logrus.FieldLogger) func(*Context) {
	return func(c *Context) { c.Logger = l }
}

// WithClock overrides the context's notion of "now", used by tests to pin
// CURRENT_DATE/CURRENT_TIMESTAMP.
func WithClock(now func() time.Time) func(*Context) {
	return func(c *Context) { c.Now = now }
}

// WithMaxBuildRows sets the row cap blocking operators enforce on their
// buffered state. n <= 0 leaves it unbounded.
func WithMaxBuildRows(n int) func(*Context) {
	return func(c *Context) { c.MaxBuildRows = n }
}

// CheckBuildRows returns ErrUnsupportedFeature if n has exceeded the
// context's MaxBuildRows cap (a no-op when the cap is unset). op names the
// operator in the error message, e.g. "sort" or "hash join build side".
func (c *Context) CheckBuildRows(op string, n int) error {
	if c.MaxBuildRows > 0 && n > c.MaxBuildRows {
		return ErrUnsupportedFeature.New(op + " exceeded maximum buffered rows")
	}
	return nil
}

// Cancelled reports whether the context's cancellation signal has fired.
// The Scan and Filter operators, the in-memory table and RowsToRowIter
// check it before yielding a row; other operators stop when their input
// does. Cell evaluation does not check it.
func (c *Context) Cancelled() bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}
