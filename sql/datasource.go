package sql

// Expr is the minimal interface the data-source contract needs from a
// predicate expression: something the executor's expression engine can
// evaluate against a Row. It is satisfied by expression.Node (the package
// import would be circular, so the contract is expressed structurally
// here); data sources that choose to honor pushdown filtering evaluate it
// themselves via the same expression package the engine uses.
type Expr interface {
	Eval(ctx *Context, row Row) (Value, error)
}

// ScanHints carries the pushdown envelope the planner computes for a Scan
// node: the columns actually referenced above the scan (nil means "all"),
// an optional predicate, and an optional limit/offset.
type ScanHints struct {
	Columns []string
	Where   Expr
	Limit   *int
	Offset  *int
}

// ScanOptions wraps the hints for one scan invocation; the cancellation
// signal travels in the *Context passed to Scan, not here.
type ScanOptions struct {
	Hints ScanHints
}

// ScanResult is what a DataSource.Scan call returns: the lazy row stream
// plus two booleans declaring which pushdown hints the source actually
// honored. The executor reconstructs whatever was not honored.
type ScanResult struct {
	Rows               RowIter
	AppliedWhere       bool
	AppliedLimitOffset bool
}

// SourceStatistics is the optional cost-estimation hint a DataSource may
// expose: an approximate row count and a relative weight per column (higher
// weight = more expensive to evaluate), consumed by EstimateCost.
type SourceStatistics struct {
	NumRows       *int64
	ColumnWeights map[string]float64
}

// DataSource is the read-only, asynchronous row-scan contract every table
// (in-memory array, derived table materialization, or an external columnar
// backend) implements.
//
// Invariant (enforced by callers, not by this interface): a source MUST NOT
// return AppliedLimitOffset=true while returning AppliedWhere=false when a
// Where hint was supplied — that combination would make limit/offset
// semantics wrong, since rows the source didn't filter would count against
// the limit. Violating it surfaces as ErrDataSourceProtocol.
type DataSource interface {
	Scan(ctx *Context, opts ScanOptions) (ScanResult, error)
	Schema() Schema
}

// StatisticsSource is an optional capability a DataSource may also
// implement to feed EstimateCost.
type StatisticsSource interface {
	Statistics(ctx *Context) (*SourceStatistics, error)
}

// ValidateScanResult enforces the data-source protocol invariant described
// above. Callers (the executor's Scan operator) call this immediately after
// every Scan.
func ValidateScanResult(hints ScanHints, res ScanResult) error {
	if hints.Where != nil && res.AppliedLimitOffset && !res.AppliedWhere {
		return ErrDataSourceProtocol.New(
			"appliedLimitOffset=true with appliedWhere=false while a where hint was supplied")
	}
	return nil
}
