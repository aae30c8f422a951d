package sql

import (
	errorkind "gopkg.in/src-d/go-errors.v1"
)

// Error kinds, one per failure class the engine can surface.
// Each is an errors.Kind: construct with .New(args...) for a fresh error or
// .Wrap(err, args...) to decorate an existing one (used to attach the
// 1-based row ordinal to a row-scoped runtime failure without losing the
// original error's message).
var (
	ErrParse               = errorkind.NewKind("parse error: %s")
	ErrUnknownTable        = errorkind.NewKind("unknown table: %s")
	ErrUnknownColumn       = errorkind.NewKind("unknown column: %s")
	ErrUnknownFunction     = errorkind.NewKind("unknown function: %s")
	ErrArgumentArity       = errorkind.NewKind("function %s expects %s argument(s), got %d")
	ErrArgumentValue       = errorkind.NewKind("%s")
	ErrUnsupportedFeature  = errorkind.NewKind("unsupported: %s")
	ErrCast                = errorkind.NewKind("cannot cast %s to %s: %s")
	ErrDataSourceProtocol  = errorkind.NewKind("data source protocol violation: %s")
	ErrCancellation        = errorkind.NewKind("query cancelled")
	ErrRowContext          = errorkind.NewKind("%s (row %d)")
	ErrCorrelatedSubquery  = errorkind.NewKind("correlated subquery reference to outer column %s is not supported")
	ErrAmbiguousColumn     = errorkind.NewKind("ambiguous column reference: %s")
)

// WrapRow decorates err with the 1-based ordinal of the row being processed
// when the failure occurred ("decorated with the 1-based
// row ordinal of the offending input row").
func WrapRow(err error, ordinal int) error {
	if err == nil {
		return nil
	}
	return ErrRowContext.Wrap(err, err.Error(), ordinal)
}
