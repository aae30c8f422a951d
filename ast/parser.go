package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gabereiser/lazysql/sql"
)

// ParseOptions bundles the query text with the optional function registry
// used for eager arity validation.
// Functions is optional: without it, function-call arity is not validated
// eagerly (there is nothing to validate against), and arity errors surface
// later as run-time ErrArgumentArity instead.
type ParseOptions struct {
	Query     string
	Functions *sql.FunctionRegistry
}

// Parse tokenizes and parses a single SELECT statement (optionally preceded
// by a WITH clause and followed by UNION [ALL] SelectStatement terms).
func Parse(opts ParseOptions) (*SelectStatement, error) {
	toks, err := Tokenize(opts.Query)
	if err != nil {
		return nil, sql.ErrParse.New(err.Error())
	}
	p := &parser{toks: toks, functions: opts.Functions}
	stmt, err := p.parseSelectStatement()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != TokEOF {
		return nil, p.errorf("unexpected trailing input %s", p.cur())
	}
	return stmt, nil
}

type parser struct {
	toks      []Token
	pos       int
	functions *sql.FunctionRegistry
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Type: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) at(off int) Token {
	if p.pos+off >= len(p.toks) {
		return Token{Type: TokEOF}
	}
	return p.toks[p.pos+off]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return sql.ErrParse.New(fmt.Sprintf(format, args...) + fmt.Sprintf(" at position %d", p.cur().Pos))
}

func (p *parser) isKeyword(upper string) bool {
	t := p.cur()
	return t.Type == TokKeyword && t.Upper == upper
}

func (p *parser) isOp(text string) bool {
	t := p.cur()
	return (t.Type == TokOp || t.Type == TokPunct) && t.Text == text
}

func (p *parser) eatKeyword(upper string) bool {
	if p.isKeyword(upper) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectKeyword(upper string) error {
	if !p.eatKeyword(upper) {
		return p.errorf("expected %s, got %s", upper, p.cur())
	}
	return nil
}

func (p *parser) expectOp(text string) error {
	if p.isOp(text) {
		p.advance()
		return nil
	}
	return p.errorf("expected %q, got %s", text, p.cur())
}

// ---- statement-level parsing ----

func (p *parser) parseSelectStatement() (*SelectStatement, error) {
	stmt := &SelectStatement{}

	if p.isKeyword("WITH") {
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		stmt.With = with
	}

	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if p.eatKeyword("DISTINCT") {
		stmt.Distinct = true
	}

	proj, err := p.parseProjection()
	if err != nil {
		return nil, err
	}
	stmt.Projection = proj

	if p.eatKeyword("FROM") {
		from, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		stmt.From = from

		joins, err := p.parseJoins()
		if err != nil {
			return nil, err
		}
		stmt.Joins = joins
	}

	if p.eatKeyword("WHERE") {
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.eatKeyword("GROUP") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = exprs
	}

	if p.eatKeyword("HAVING") {
		having, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}

	if p.eatKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		items, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	if p.eatKeyword("LIMIT") {
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Limit = &n
	}
	if p.eatKeyword("OFFSET") {
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Offset = &n
	}

	if p.isKeyword("UNION") {
		p.advance()
		all := p.eatKeyword("ALL")
		right, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		stmt.SetOp = &SetOp{All: all, Right: right}
	}

	return stmt, nil
}

func (p *parser) parseWithClause() ([]CTEDefinition, error) {
	p.advance() // WITH
	var defs []CTEDefinition
	for {
		nameTok := p.cur()
		if nameTok.Type != TokIdent && nameTok.Type != TokQuotedIdent {
			return nil, p.errorf("expected CTE name, got %s", nameTok)
		}
		p.advance()
		if err := p.expectKeyword("AS"); err != nil {
			return nil, err
		}
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		defs = append(defs, CTEDefinition{Name: nameTok.Text, Query: sub})
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return defs, nil
}

func (p *parser) parseProjection() ([]SelectItem, error) {
	var items []SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

func (p *parser) parseSelectItem() (SelectItem, error) {
	if p.isOp("*") {
		pos := p.cur().Pos
		p.advance()
		return SelectItem{Expr: &Star{baseNode: baseNode{pos}}}, nil
	}
	if p.cur().Type == TokIdent && p.at(1).Type == TokPunct && p.at(1).Text == "." && p.at(2).Type == TokOp && p.at(2).Text == "*" {
		qual := p.advance().Text
		p.advance() // .
		pos := p.cur().Pos
		p.advance() // *
		return SelectItem{Expr: &Star{baseNode: baseNode{pos}, Qualifier: qual}}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return SelectItem{}, err
	}
	item := SelectItem{Expr: expr}
	if p.eatKeyword("AS") {
		name, err := p.parseAliasName()
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = name
	} else if p.cur().Type == TokIdent || p.cur().Type == TokQuotedIdent {
		item.Alias = p.advance().Text
	}
	return item, nil
}

func (p *parser) parseAliasName() (string, error) {
	t := p.cur()
	if t.Type != TokIdent && t.Type != TokQuotedIdent {
		return "", p.errorf("expected alias name, got %s", t)
	}
	p.advance()
	return t.Text, nil
}

func (p *parser) parseTableRef() (*TableRef, error) {
	pos := p.cur().Pos
	if p.isOp("(") {
		p.advance()
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		ref := &TableRef{Subquery: sub, Pos: pos}
		if p.eatKeyword("AS") {
			alias, err := p.parseAliasName()
			if err != nil {
				return nil, err
			}
			ref.Alias = alias
		} else if p.cur().Type == TokIdent || p.cur().Type == TokQuotedIdent {
			ref.Alias = p.advance().Text
		} else {
			return nil, p.errorf("derived table requires an alias")
		}
		return ref, nil
	}

	t := p.cur()
	if t.Type != TokIdent && t.Type != TokQuotedIdent {
		return nil, p.errorf("expected table name, got %s", t)
	}
	p.advance()
	ref := &TableRef{Name: t.Text, Pos: pos}
	if p.eatKeyword("AS") {
		alias, err := p.parseAliasName()
		if err != nil {
			return nil, err
		}
		ref.Alias = alias
	} else if p.cur().Type == TokIdent || p.cur().Type == TokQuotedIdent {
		ref.Alias = p.advance().Text
	}
	return ref, nil
}

func (p *parser) parseJoins() ([]JoinClause, error) {
	var joins []JoinClause
	for {
		pos := p.cur().Pos
		kind := ""
		switch {
		case p.isKeyword("JOIN"):
			p.advance()
			kind = "INNER"
		case p.isKeyword("INNER"):
			p.advance()
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			kind = "INNER"
		case p.isKeyword("LEFT"):
			p.advance()
			p.eatKeyword("OUTER")
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			kind = "LEFT"
		case p.isKeyword("RIGHT"):
			p.advance()
			p.eatKeyword("OUTER")
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			kind = "RIGHT"
		case p.isKeyword("FULL"):
			p.advance()
			p.eatKeyword("OUTER")
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			kind = "FULL"
		case p.isKeyword("POSITIONAL"):
			p.advance()
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			kind = "POSITIONAL"
		default:
			return joins, nil
		}

		table, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		jc := JoinClause{Kind: kind, Table: table, Pos: pos}
		if kind != "POSITIONAL" {
			if err := p.expectKeyword("ON"); err != nil {
				return nil, err
			}
			on, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			jc.On = on
		}
		joins = append(joins, jc)
	}
}

func (p *parser) parseExprList() ([]ExprNode, error) {
	var out []ExprNode
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseOrderByList() ([]OrderByItem, error) {
	var out []OrderByItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := OrderByItem{Expr: e}
		if p.eatKeyword("ASC") {
			item.Desc = false
		} else if p.eatKeyword("DESC") {
			item.Desc = true
		}
		if p.isKeyword("NULLS") {
			p.advance()
			if p.eatKeyword("FIRST") {
				v := true
				item.NullsFirst = &v
			} else if p.eatKeyword("LAST") {
				v := false
				item.NullsFirst = &v
			} else {
				return nil, p.errorf("expected FIRST or LAST after NULLS")
			}
		}
		out = append(out, item)
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseIntLiteral() (int, error) {
	t := p.cur()
	if t.Type != TokNumber {
		return 0, p.errorf("expected integer literal, got %s", t)
	}
	p.advance()
	n, err := strconv.Atoi(t.Text)
	if err != nil {
		return 0, p.errorf("invalid integer literal %q", t.Text)
	}
	return n, nil
}

// ---- expression parsing (precedence low -> high: OR, AND, NOT,
// comparison/IN/LIKE/BETWEEN/IS, additive, multiplicative, unary, primary) ----

func (p *parser) parseExpr() (ExprNode, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ExprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("OR") {
		pos := p.advance().Pos
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{baseNode: baseNode{pos}, Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ExprNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("AND") {
		pos := p.advance().Pos
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{baseNode: baseNode{pos}, Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ExprNode, error) {
	if p.isKeyword("NOT") {
		pos := p.advance().Pos
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{baseNode: baseNode{pos}, Op: "NOT", Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (ExprNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	switch {
	case p.isOp("=") || p.isOp("!=") || p.isOp("<") || p.isOp("<=") || p.isOp(">") || p.isOp(">="):
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{baseNode: baseNode{op.Pos}, Op: op.Text, Left: left, Right: right}, nil

	case p.isKeyword("IS"):
		pos := p.advance().Pos
		negated := p.eatKeyword("NOT")
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		return &IsNullExpr{baseNode: baseNode{pos}, Expr: left, Negated: negated}, nil

	case p.isKeyword("BETWEEN"):
		return p.parseBetween(left, false)
	case p.isKeyword("LIKE"):
		return p.parseLike(left, false)
	case p.isKeyword("IN"):
		return p.parseIn(left, false)
	case p.isKeyword("NOT"):
		pos := p.cur().Pos
		save := p.pos
		p.advance()
		switch {
		case p.isKeyword("BETWEEN"):
			return p.parseBetween(left, true)
		case p.isKeyword("LIKE"):
			return p.parseLike(left, true)
		case p.isKeyword("IN"):
			return p.parseIn(left, true)
		default:
			p.pos = save
			_ = pos
			return left, nil
		}
	}
	return left, nil
}

func (p *parser) parseBetween(left ExprNode, negated bool) (ExprNode, error) {
	pos := p.advance().Pos // BETWEEN
	low, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AND"); err != nil {
		return nil, err
	}
	high, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &Between{baseNode: baseNode{pos}, Expr: left, Low: low, High: high, Negated: negated}, nil
}

func (p *parser) parseLike(left ExprNode, negated bool) (ExprNode, error) {
	pos := p.advance().Pos // LIKE
	pattern, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &LikeExpr{baseNode: baseNode{pos}, Expr: left, Pattern: pattern, Negated: negated}, nil
}

func (p *parser) parseIn(left ExprNode, negated bool) (ExprNode, error) {
	pos := p.advance().Pos // IN
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	if p.isKeyword("SELECT") || p.isKeyword("WITH") {
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &InExpr{baseNode: baseNode{pos}, Expr: left, Subquery: sub, Negated: negated}, nil
	}
	list, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &InExpr{baseNode: baseNode{pos}, Expr: left, List: list, Negated: negated}, nil
}

func (p *parser) parseAdditive() (ExprNode, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.advance()
		var right ExprNode
		if p.isKeyword("INTERVAL") {
			right, err = p.parseIntervalLiteral()
		} else {
			right, err = p.parseMultiplicative()
		}
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{baseNode: baseNode{op.Pos}, Op: op.Text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseIntervalLiteral() (ExprNode, error) {
	pos := p.advance().Pos // INTERVAL
	val, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	unitTok := p.cur()
	unit := strings.ToUpper(unitTok.Text)
	switch unit {
	case "DAY", "MONTH", "YEAR", "HOUR", "MINUTE", "SECOND":
		p.advance()
	default:
		return nil, p.errorf("expected date arithmetic unit (DAY, MONTH, YEAR, HOUR, MINUTE, SECOND), got %s", unitTok)
	}
	return &Interval{baseNode: baseNode{pos}, Value: val, Unit: unit}, nil
}

func (p *parser) parseMultiplicative() (ExprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{baseNode: baseNode{op.Pos}, Op: op.Text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ExprNode, error) {
	if p.isOp("-") {
		pos := p.advance().Pos
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{baseNode: baseNode{pos}, Op: "-", Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ExprNode, error) {
	t := p.cur()

	switch {
	case p.isOp("("):
		p.advance()
		if p.isKeyword("SELECT") || p.isKeyword("WITH") {
			sub, err := p.parseSelectStatement()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &Subquery{baseNode: baseNode{t.Pos}, Select: sub}, nil
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case t.Type == TokNumber:
		return p.parseLiteralNumber()

	case t.Type == TokString:
		p.advance()
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.String(t.Text)}, nil

	case t.Type == TokKeyword && t.Upper == "NULL":
		p.advance()
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Null()}, nil

	case t.Type == TokKeyword && t.Upper == "TRUE":
		p.advance()
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Bool(true)}, nil

	case t.Type == TokKeyword && t.Upper == "FALSE":
		p.advance()
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Bool(false)}, nil

	case t.Type == TokKeyword && t.Upper == "CASE":
		return p.parseCase()

	case t.Type == TokKeyword && t.Upper == "CAST":
		return p.parseCast()

	case t.Type == TokKeyword && t.Upper == "EXISTS":
		return p.parseExists(false)

	case t.Type == TokKeyword && t.Upper == "NOT" && p.at(1).Upper == "EXISTS":
		p.advance()
		return p.parseExists(true)

	case t.Type == TokKeyword && t.Upper == "INTERVAL":
		return nil, p.errorf("a bare INTERVAL may only appear as the right-hand operand of + or - against a date or timestamp")

	case t.Type == TokIdent || t.Type == TokQuotedIdent || t.Type == TokKeyword:
		return p.parseIdentOrCall()

	default:
		return nil, p.errorf("unexpected token %s", t)
	}
}

func (p *parser) parseLiteralNumber() (ExprNode, error) {
	t := p.advance()
	text := t.Text

	// A literal with more than 18 significant digits exceeds what int64 or
	// float64 can hold losslessly and becomes a decimal, whether or not it
	// has a fractional part or exponent.
	if significantDigits(text) > 18 {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, p.errorf("invalid numeric literal %q", text)
		}
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Decimal(d)}, nil
	}

	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid numeric literal %q", text)
		}
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Float(f)}, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		d, derr := decimal.NewFromString(text)
		if derr != nil {
			return nil, p.errorf("invalid numeric literal %q", text)
		}
		return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Decimal(d)}, nil
	}
	return &Literal{baseNode: baseNode{t.Pos}, Value: sql.Int(n)}, nil
}

// significantDigits counts the digits of a numeric literal's mantissa,
// ignoring any sign, decimal point, leading zeros, and exponent suffix.
func significantDigits(text string) int {
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimLeft(text, "+-")
	text = strings.Replace(text, ".", "", 1)
	text = strings.TrimLeft(text, "0")
	return len(text)
}

func (p *parser) parseCase() (ExprNode, error) {
	pos := p.advance().Pos // CASE
	ce := &CaseExpr{baseNode: baseNode{pos}}
	if !p.isKeyword("WHEN") {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Operand = operand
	}
	if !p.isKeyword("WHEN") {
		return nil, p.errorf("expected WHEN in CASE expression")
	}
	for p.eatKeyword("WHEN") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Whens = append(ce.Whens, WhenClause{Cond: cond, Result: result})
	}
	if p.eatKeyword("ELSE") {
		elseExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Else = elseExpr
	}
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return ce, nil
}

var castTargets = buildSet(
	"TEXT", "VARCHAR", "INTEGER", "INT", "BIGINT", "FLOAT", "REAL", "DOUBLE", "BOOLEAN", "DECIMAL",
)

func (p *parser) parseCast() (ExprNode, error) {
	pos := p.advance().Pos // CAST
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	typeTok := p.cur()
	target := strings.ToUpper(typeTok.Text)
	if !castTargets[target] {
		return nil, p.errorf("unsupported CAST target %q", typeTok.Text)
	}
	p.advance()
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &Cast{baseNode: baseNode{pos}, Expr: expr, Target: target}, nil
}

func (p *parser) parseExists(negated bool) (ExprNode, error) {
	pos := p.advance().Pos // EXISTS
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	sub, err := p.parseSelectStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ExistsExpr{baseNode: baseNode{pos}, Subquery: sub, Negated: negated}, nil
}

func (p *parser) parseIdentOrCall() (ExprNode, error) {
	t := p.advance()
	name := t.Text

	if p.isOp("(") {
		return p.parseFuncCallArgs(name, t.Pos)
	}

	// The standard's niladic datetime functions take no parentheses.
	if upper := strings.ToUpper(name); upper == "CURRENT_DATE" || upper == "CURRENT_TIMESTAMP" {
		call := &FuncCall{baseNode: baseNode{t.Pos}, Name: name}
		if err := p.validateArity(call, t.Pos); err != nil {
			return nil, err
		}
		return call, nil
	}

	if p.isOp(".") {
		p.advance()
		nt := p.cur()
		if nt.Type != TokIdent && nt.Type != TokQuotedIdent && nt.Type != TokKeyword {
			return nil, p.errorf("expected identifier after '.', got %s", nt)
		}
		p.advance()
		return &Identifier{baseNode: baseNode{t.Pos}, Qualifier: name, Name: nt.Text}, nil
	}

	return &Identifier{baseNode: baseNode{t.Pos}, Name: name}, nil
}

func (p *parser) parseFuncCallArgs(name string, pos int) (ExprNode, error) {
	p.advance() // (
	call := &FuncCall{baseNode: baseNode{pos}, Name: name}

	if p.eatKeyword("DISTINCT") {
		call.Distinct = true
	}

	if p.isOp("*") {
		p.advance()
		call.Star = true
	} else if !p.isOp(")") {
		args, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		call.Args = args
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}

	if p.isKeyword("FILTER") {
		p.advance()
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("WHERE"); err != nil {
			return nil, err
		}
		filter, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		call.Filter = filter
	}

	if err := p.validateArity(call, pos); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *parser) validateArity(call *FuncCall, pos int) error {
	if p.functions == nil {
		return nil
	}
	desc, ok := p.functions.Lookup(call.Name)
	if !ok {
		return sql.ErrUnknownFunction.New(call.Name)
	}
	if call.Filter != nil && !desc.IsAggregate {
		return sql.ErrUnsupportedFeature.New(fmt.Sprintf("FILTER (WHERE ...) is only valid on aggregate functions, got %s", call.Name))
	}
	if call.Star {
		if !desc.Arity.AcceptsStar {
			return sql.ErrUnsupportedFeature.New(fmt.Sprintf("%s(*) is not supported", call.Name))
		}
		return nil
	}
	n := len(call.Args)
	if !desc.Arity.Accepts(n) {
		return sql.ErrArgumentArity.New(call.Name, desc.Arity.Describe(), n)
	}
	return nil
}
