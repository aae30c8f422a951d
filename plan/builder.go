package plan

import (
	"sort"
	"strings"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/sql"
)

// Catalog resolves a base-table name to its bound DataSource, the single
// collaborator Builder needs beyond the parsed statement and the function
// registry.
type Catalog interface {
	Resolve(name string) (sql.DataSource, bool)
}

// MapCatalog is the simplest Catalog: a case-insensitive name->DataSource
// table, the shape engine.Config's table registration builds.
type MapCatalog map[string]sql.DataSource

func (m MapCatalog) Resolve(name string) (sql.DataSource, bool) {
	norm := sql.NormalizeIdent(name)
	for k, v := range m {
		if sql.NormalizeIdent(k) == norm {
			return v, true
		}
	}
	return nil, false
}

// Builder is the single entry point lowering a parsed SelectStatement
// into a plan.Node tree. There is no separate multi-pass analyzer: the
// engine's scope (read-only, single-statement) collapses analysis and
// planning into one deterministic walk.
type Builder struct {
	Catalog   Catalog
	Functions *sql.FunctionRegistry
	Env       *expression.Env
}

// NewBuilder constructs a Builder. env carries the subquery-evaluation
// hooks rowexec installs once it owns a Builder of its own;
// Functions is env.Functions, kept as a separate field since several
// Builder helpers only need the registry, not the full Env.
func NewBuilder(catalog Catalog, env *expression.Env) *Builder {
	return &Builder{Catalog: catalog, Functions: env.Functions, Env: env}
}

// cteDef is one WITH-clause definition bound to the scope that was visible
// at its own position in the list, so planning its body can resolve only
// CTEs defined earlier (no self-reference, no forward reference, no
// mutual recursion).
type cteDef struct {
	Body  *ast.SelectStatement
	Scope *cteScope
}

// cteScope chains WITH-clause definitions: a CTE body may reference only
// CTEs defined earlier in the same list, plus anything visible in an
// enclosing scope (name lookup is case-insensitive and shadows outer table
// names).
type cteScope struct {
	parent *cteScope
	defs   map[string]cteDef
}

func (s *cteScope) lookup(name string) (cteDef, bool) {
	norm := sql.NormalizeIdent(name)
	for sc := s; sc != nil; sc = sc.parent {
		if def, ok := sc.defs[norm]; ok {
			return def, true
		}
	}
	return cteDef{}, false
}

func (s *cteScope) child() *cteScope {
	return &cteScope{parent: s, defs: make(map[string]cteDef)}
}

// Build lowers a top-level SelectStatement into an executable plan tree.
func (b *Builder) Build(stmt *ast.SelectStatement) (Node, error) {
	return b.buildStatement(stmt, nil)
}

func (b *Builder) buildStatement(stmt *ast.SelectStatement, scope *cteScope) (Node, error) {
	// Each definition is layered into a fresh scope carrying only the
	// definitions before it, so its body cannot resolve itself or a later
	// name in the same list.
	for _, def := range stmt.With {
		visible := scope
		scope = scope.child()
		scope.defs[sql.NormalizeIdent(def.Name)] = cteDef{Body: def.Query, Scope: visible}
	}

	tree, scans, err := b.buildFrom(stmt, scope)
	if err != nil {
		return nil, err
	}

	// Pushdown: WHERE and LIMIT/OFFSET may only be pushed to a scan's hints
	// when it is the sole base-table scan in the FROM tree.
	singleBaseScan := stmt.From != nil && stmt.From.Subquery == nil && len(stmt.Joins) == 0
	var soleScan *Scan
	if singleBaseScan && len(scans) == 1 {
		soleScan = scans[0]
	}

	hasAgg := b.hasAggregation(stmt)
	limitPushable := soleScan != nil && !stmt.Distinct && len(stmt.GroupBy) == 0 &&
		stmt.Having == nil && len(stmt.OrderBy) == 0 && !hasAgg

	// Column pushdown: compute the set of columns referenced across every
	// consuming clause by walking them upward, attributing each to the
	// scan(s) whose schema or qualifier it matches. A bare `SELECT *` (no
	// qualifier) suppresses pruning entirely; a qualified `t.*` only
	// suppresses it for t.
	b.applyColumnHints(stmt, scans)

	if soleScan != nil {
		if stmt.Where != nil {
			soleScan.Hints.Where = expression.Compiled{Node: stmt.Where, Env: b.Env}
		}
		if limitPushable {
			soleScan.Hints.Limit = stmt.Limit
			soleScan.Hints.Offset = stmt.Offset
		}
	} else if stmt.Where != nil {
		tree = &Filter{Child: tree, Where: stmt.Where, Sch: tree.Schema()}
	}

	if hasAgg {
		tree, err = b.buildAggregate(stmt, tree)
		if err != nil {
			return nil, err
		}
	} else if stmt.Having != nil {
		// HAVING without GROUP BY/aggregates behaves like an additional
		// predicate over the unaggregated rows.
		tree = &Filter{Child: tree, Where: stmt.Having, Sch: tree.Schema()}
	}

	tree, err = b.buildProject(stmt, tree)
	if err != nil {
		return nil, err
	}

	if stmt.Distinct {
		tree = &Distinct{Child: tree, Sch: tree.Schema()}
	}

	if len(stmt.OrderBy) == 1 && isRandomCall(stmt.OrderBy[0].Expr) {
		tree = &RandomShuffle{Child: tree, Sch: tree.Schema()}
	} else if len(stmt.OrderBy) > 0 {
		keys := make([]SortKey, len(stmt.OrderBy))
		for i, item := range stmt.OrderBy {
			// Default null placement is direction-independent: null is
			// the lowest value ascending and the highest descending, so
			// it leads either way unless NULLS FIRST/LAST overrides.
			nullsFirst := true
			if item.NullsFirst != nil {
				nullsFirst = *item.NullsFirst
			}
			keys[i] = SortKey{Expr: item.Expr, Desc: item.Desc, NullsFirst: nullsFirst}
		}
		tree = &Sort{Child: tree, Keys: keys, Sch: tree.Schema()}
	}

	if !(soleScan != nil && limitPushable) && (stmt.Limit != nil || stmt.Offset != nil) {
		tree = &LimitOffset{Child: tree, Limit: stmt.Limit, Offset: stmt.Offset, Sch: tree.Schema()}
	}

	if stmt.SetOp != nil {
		// The WITH clause scopes over the whole compound statement, so the
		// right arm of a UNION sees the same definitions.
		right, err := b.buildStatement(stmt.SetOp.Right, scope)
		if err != nil {
			return nil, err
		}
		tree = &SetOp{Left: tree, Right: right, All: stmt.SetOp.All, Sch: tree.Schema()}
		if !stmt.SetOp.All {
			tree = &Distinct{Child: tree, Sch: tree.Schema()}
		}
	}

	return tree, nil
}

func isRandomCall(e ast.ExprNode) bool {
	call, ok := e.(*ast.FuncCall)
	if !ok {
		return false
	}
	name := strings.ToUpper(call.Name)
	return name == "RANDOM" || name == "RAND"
}

// ---- FROM / JOIN ----

func (b *Builder) buildFrom(stmt *ast.SelectStatement, scope *cteScope) (Node, []*Scan, error) {
	if stmt.From == nil {
		// FROM-less SELECT: a single synthetic row so projection/aggregate
		// expressions with no table reference still have something to
		// evaluate against.
		return &Scan{TableName: "", Sch: sql.Schema{}, Source: singleRowSource{}}, nil, nil
	}

	left, scans, err := b.buildTableRef(stmt.From, scope)
	if err != nil {
		return nil, nil, err
	}

	for _, j := range stmt.Joins {
		right, rscans, err := b.buildTableRef(j.Table, scope)
		if err != nil {
			return nil, nil, err
		}
		scans = append(scans, rscans...)
		if j.Kind == "POSITIONAL" {
			sch := append(append(sql.Schema{}, left.Schema()...), right.Schema()...)
			left = &PositionalJoin{Left: left, Right: right, Sch: sch}
			continue
		}
		kind, err := joinKindOf(j.Kind)
		if err != nil {
			return nil, nil, err
		}
		left = b.buildJoin(left, right, kind, j.On)
	}

	return left, scans, nil
}

func joinKindOf(kw string) (JoinKind, error) {
	switch kw {
	case "INNER", "":
		return JoinInner, nil
	case "LEFT":
		return JoinLeft, nil
	case "RIGHT":
		return JoinRight, nil
	case "FULL":
		return JoinFull, nil
	default:
		return 0, sql.ErrUnsupportedFeature.New("join kind " + kw)
	}
}

func (b *Builder) buildTableRef(ref *ast.TableRef, scope *cteScope) (Node, []*Scan, error) {
	if ref.Subquery != nil {
		child, err := b.buildStatement(ref.Subquery, scope)
		if err != nil {
			return nil, nil, err
		}
		return &SubqueryAlias{Alias: ref.Alias, Child: child, Sch: child.Schema()}, nil, nil
	}

	if def, ok := scope.lookup(ref.Name); ok {
		// Re-plan (and, at execution time, re-execute) the CTE's
		// definition fresh on every reference, under the
		// scope that was visible at the definition's own position.
		alias := ref.Alias
		if alias == "" {
			alias = ref.Name
		}
		built, err := b.buildStatement(def.Body, def.Scope)
		if err != nil {
			return nil, nil, err
		}
		rebuild := func() (Node, error) {
			return b.buildStatement(def.Body, def.Scope)
		}
		return &CTERef{Name: ref.Name, Alias: alias, Rebuild: rebuild, Sch: built.Schema()}, nil, nil
	}

	src, ok := b.Catalog.Resolve(ref.Name)
	if !ok {
		return nil, nil, sql.ErrUnknownTable.New(ref.Name)
	}
	scan := &Scan{TableName: ref.Name, Alias: ref.Alias, Source: src, Sch: src.Schema()}
	return scan, []*Scan{scan}, nil
}

// buildJoin decides HashJoin vs NestedLoopJoin: an
// AND-chain of simple identifier equalities, each resolvable to one side
// via qualifier or schema lookup, lowers to a HashJoin; anything else falls
// back to NestedLoopJoin.
func (b *Builder) buildJoin(left, right Node, kind JoinKind, on ast.ExprNode) Node {
	sch := append(append(sql.Schema{}, left.Schema()...), right.Schema()...)
	if on == nil {
		return &NestedLoopJoin{Left: left, Right: right, Kind: kind, On: on, Sch: sch}
	}

	leftNames := collectQualifiers(left)
	rightNames := collectQualifiers(right)
	leftSch, rightSch := left.Schema(), right.Schema()

	conjuncts := splitAnd(on)
	var keys []JoinKeyPair
	ok := true
	for _, c := range conjuncts {
		bin, isBin := c.(*ast.BinaryExpr)
		if !isBin || bin.Op != "=" {
			ok = false
			break
		}
		lid, lok := bin.Left.(*ast.Identifier)
		rid, rok := bin.Right.(*ast.Identifier)
		if !lok || !rok {
			ok = false
			break
		}
		lSide := resolveSide(lid, leftNames, rightNames, leftSch, rightSch)
		rSide := resolveSide(rid, leftNames, rightNames, leftSch, rightSch)
		if lSide == "left" && rSide == "right" {
			keys = append(keys, JoinKeyPair{Left: lid, Right: rid})
		} else if lSide == "right" && rSide == "left" {
			keys = append(keys, JoinKeyPair{Left: rid, Right: lid})
		} else {
			ok = false
			break
		}
	}

	if !ok || len(keys) == 0 {
		return &NestedLoopJoin{Left: left, Right: right, Kind: kind, On: on, Sch: sch}
	}
	return &HashJoin{Left: left, Right: right, Kind: kind, Keys: keys, Sch: sch}
}

// splitAnd flattens a top-level AND-chain into its conjuncts.
func splitAnd(e ast.ExprNode) []ast.ExprNode {
	bin, ok := e.(*ast.BinaryExpr)
	if !ok || bin.Op != "AND" {
		return []ast.ExprNode{e}
	}
	return append(splitAnd(bin.Left), splitAnd(bin.Right)...)
}

// resolveSide determines whether identifier id refers to the left or right
// join operand: a qualifier is matched against each side's table names
// first; an unqualified name falls back to schema lookup.
func resolveSide(id *ast.Identifier, leftNames, rightNames map[string]bool, leftSch, rightSch sql.Schema) string {
	if id.Qualifier != "" {
		q := sql.NormalizeIdent(id.Qualifier)
		inLeft, inRight := leftNames[q], rightNames[q]
		switch {
		case inLeft && !inRight:
			return "left"
		case inRight && !inLeft:
			return "right"
		default:
			return ""
		}
	}
	inLeft := leftSch.IndexOf(id.Name) >= 0
	inRight := rightSch.IndexOf(id.Name) >= 0
	switch {
	case inLeft && !inRight:
		return "left"
	case inRight && !inLeft:
		return "right"
	default:
		return ""
	}
}

// collectQualifiers walks node's tree collecting every table alias/name
// available for column qualification on that side of a join.
func collectQualifiers(n Node) map[string]bool {
	out := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *Scan:
			out[sql.NormalizeIdent(t.QualifiedName())] = true
		case *SubqueryAlias:
			out[sql.NormalizeIdent(t.Alias)] = true
		case *CTERef:
			out[sql.NormalizeIdent(t.Alias)] = true
		default:
			for _, c := range n.Children() {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// ---- column pushdown ----

func (b *Builder) applyColumnHints(stmt *ast.SelectStatement, scans []*Scan) {
	if len(scans) == 0 {
		return
	}

	wildcardAll := false
	wildcardQual := map[string]bool{}
	var idents []*ast.Identifier

	collect := func(e ast.ExprNode) {
		if e == nil {
			return
		}
		ast.Walk(e, func(n ast.ExprNode) {
			switch v := n.(type) {
			case *ast.Identifier:
				idents = append(idents, v)
			case *ast.Star:
				if v.Qualifier == "" {
					wildcardAll = true
				} else {
					wildcardQual[sql.NormalizeIdent(v.Qualifier)] = true
				}
			}
		})
	}

	for _, item := range stmt.Projection {
		collect(item.Expr)
	}
	collect(stmt.Where)
	for _, g := range stmt.GroupBy {
		collect(g)
	}
	collect(stmt.Having)
	for _, o := range stmt.OrderBy {
		collect(o.Expr)
	}
	for _, j := range stmt.Joins {
		collect(j.On)
	}

	if wildcardAll {
		for _, s := range scans {
			s.Hints.Columns = nil
		}
		return
	}

	for _, s := range scans {
		qn := sql.NormalizeIdent(s.QualifiedName())
		if wildcardQual[qn] {
			s.Hints.Columns = nil
			continue
		}
		set := map[string]bool{}
		for _, id := range idents {
			if id.Qualifier != "" {
				if sql.NormalizeIdent(id.Qualifier) == qn {
					set[id.Name] = true
				}
				continue
			}
			if s.Sch.IndexOf(id.Name) >= 0 {
				set[id.Name] = true
			}
		}
		if len(set) == 0 {
			// Nothing explicitly referenced on this scan (e.g. its rows
			// only feed a join key via the other side, or an unrelated
			// table in a malformed query) — leave the hint unset rather
			// than requesting zero columns, which the contract treats as
			// "all".
			continue
		}
		cols := make([]string, 0, len(set))
		for c := range set {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		s.Hints.Columns = cols
	}
}

// ---- aggregation ----

func (b *Builder) hasAggregation(stmt *ast.SelectStatement) bool {
	if len(stmt.GroupBy) > 0 {
		return true
	}
	isAgg := func(name string) bool {
		d, ok := b.Functions.Lookup(name)
		return ok && d.IsAggregate
	}
	for _, item := range stmt.Projection {
		if ast.ContainsAggregate(item.Expr, isAgg) {
			return true
		}
	}
	return stmt.Having != nil && ast.ContainsAggregate(stmt.Having, isAgg)
}

func (b *Builder) buildAggregate(stmt *ast.SelectStatement, child Node) (Node, error) {
	isAgg := func(name string) bool {
		d, ok := b.Functions.Lookup(name)
		return ok && d.IsAggregate
	}

	seen := map[string]bool{}
	var calls []AggregateCall
	collectAggs := func(e ast.ExprNode) error {
		var firstErr error
		ast.Walk(e, func(n ast.ExprNode) {
			call, ok := n.(*ast.FuncCall)
			if !ok || !isAgg(call.Name) {
				return
			}
			if call.Star && strings.ToUpper(call.Name) != "COUNT" {
				if firstErr == nil {
					firstErr = sql.ErrUnsupportedFeature.New(call.Name + "(*) is not supported")
				}
				return
			}
			alias := expression.DefaultAlias(call)
			if seen[alias] {
				return
			}
			seen[alias] = true
			calls = append(calls, AggregateCall{Call: call, Alias: alias})
		})
		return firstErr
	}

	for _, item := range stmt.Projection {
		if _, isStar := item.Expr.(*ast.Star); isStar {
			return nil, sql.ErrUnsupportedFeature.New("'*' cannot be combined with aggregate functions")
		}
		if err := collectAggs(item.Expr); err != nil {
			return nil, err
		}
	}
	if err := collectAggs(stmt.Having); err != nil {
		return nil, err
	}

	var nonAgg []ast.ExprNode
	for _, item := range stmt.Projection {
		isBareAgg := false
		if call, ok := item.Expr.(*ast.FuncCall); ok && isAgg(call.Name) {
			isBareAgg = true
		}
		if !isBareAgg {
			nonAgg = append(nonAgg, item.Expr)
		}
	}

	sch := append(sql.Schema{}, child.Schema()...)
	for _, g := range stmt.GroupBy {
		sch = append(sch, sql.Column{Name: expression.DefaultAlias(g)})
	}
	for _, c := range calls {
		sch = append(sch, sql.Column{Name: c.Alias})
	}

	return &Aggregate{
		Child:         child,
		GroupBy:       stmt.GroupBy,
		Aggregates:    calls,
		NonAggColumns: nonAgg,
		Having:        stmt.Having,
		Sch:           sch,
	}, nil
}

// ---- projection ----

func (b *Builder) buildProject(stmt *ast.SelectStatement, child Node) (Node, error) {
	columns := make([]ProjectedColumn, 0, len(stmt.Projection))
	for _, item := range stmt.Projection {
		if star, ok := item.Expr.(*ast.Star); ok {
			columns = append(columns, ProjectedColumn{Expr: item.Expr, Star: true, Qual: star.Qualifier})
			continue
		}
		name := item.Alias
		if name == "" {
			name = expression.DefaultAlias(item.Expr)
		}
		columns = append(columns, ProjectedColumn{Expr: item.Expr, Name: name})
	}

	sch := make(sql.Schema, 0, len(columns))
	for _, c := range columns {
		if c.Star {
			if c.Qual == "" {
				sch = append(sch, child.Schema()...)
			} else {
				for _, col := range child.Schema() {
					sch = append(sch, col)
				}
			}
			continue
		}
		sch = append(sch, sql.Column{Name: c.Name})
	}

	return &Project{Child: child, Columns: columns, Sch: sch}, nil
}

// singleRowSource backs a FROM-less SELECT with exactly one empty row, so
// expressions with no table dependency (SELECT 1+1) still have a row
// context to evaluate against.
type singleRowSource struct{}

func (singleRowSource) Schema() sql.Schema { return sql.Schema{} }

func (singleRowSource) Scan(ctx *sql.Context, opts sql.ScanOptions) (sql.ScanResult, error) {
	row := sql.NewRow(nil, map[string]sql.CellFunc{}).WithOrdinal(1)
	return sql.ScanResult{Rows: sql.RowsToRowIter(row), AppliedWhere: false, AppliedLimitOffset: false}, nil
}
