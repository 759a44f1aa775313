package parser

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/token"
	"strconv"
)

// parseExpression is the grammar's entry point: lambda, then the
// conditional-expression form `body if test else orelse`, built on top
// of the usual precedence-climbing ladder below.
func (p *Parser) parseExpression() ast.Expression {
	if p.at(token.KW_LAMBDA) {
		return p.parseLambda()
	}
	expr := p.parseOrExpr()
	if p.at(token.KW_IF) {
		pos := p.pos()
		p.advance()
		test := p.parseOrExpr()
		p.expect(token.KW_ELSE)
		orelse := p.parseExpression()
		return &ast.IfExp{Base: ast.Base{P: pos}, Test: test, Body: expr, OrElse: orelse}
	}
	return expr
}

func (p *Parser) parseLambda() ast.Expression {
	pos := p.pos()
	p.expect(token.KW_LAMBDA)
	var params ast.Params
	for !p.at(token.COLON) {
		name := p.expect(token.IDENT).Literal
		var def ast.Expression
		if p.at(token.ASSIGN) {
			p.advance()
			def = p.parseExpression()
		}
		params.Names = append(params.Names, ast.Param{Name: name, Default: def})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.COLON)
	body := p.parseExpression()
	return &ast.Lambda{Base: ast.Base{P: pos}, Params: params, Body: body}
}

func (p *Parser) parseOrExpr() ast.Expression {
	left := p.parseAndExpr()
	if !p.at(token.KW_OR) {
		return left
	}
	pos := p.pos()
	values := []ast.Expression{left}
	for p.at(token.KW_OR) {
		p.advance()
		values = append(values, p.parseAndExpr())
	}
	return &ast.BoolOp{Base: ast.Base{P: pos}, Op: ast.Or, Values: values}
}

func (p *Parser) parseAndExpr() ast.Expression {
	left := p.parseNotExpr()
	if !p.at(token.KW_AND) {
		return left
	}
	pos := p.pos()
	values := []ast.Expression{left}
	for p.at(token.KW_AND) {
		p.advance()
		values = append(values, p.parseNotExpr())
	}
	return &ast.BoolOp{Base: ast.Base{P: pos}, Op: ast.And, Values: values}
}

func (p *Parser) parseNotExpr() ast.Expression {
	if p.at(token.KW_NOT) {
		pos := p.pos()
		p.advance()
		return &ast.UnaryOp{Base: ast.Base{P: pos}, Op: ast.Not, Operand: p.parseNotExpr()}
	}
	return p.parseComparison()
}

var compareOps = map[token.Kind]ast.CompareOpKind{
	token.EQ:  ast.Eq,
	token.NEQ: ast.NotEq,
	token.LT:  ast.Lt,
	token.LTE: ast.LtE,
	token.GT:  ast.Gt,
	token.GTE: ast.GtE,
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseBitOr()
	var ops []ast.CompareOpKind
	var comparators []ast.Expression
	pos := p.pos()
	for {
		if cmp, ok := compareOps[p.cur.Kind]; ok {
			p.advance()
			ops = append(ops, cmp)
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		if p.at(token.KW_IN) {
			p.advance()
			ops = append(ops, ast.In)
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		if p.at(token.KW_IS) {
			p.advance()
			if p.at(token.KW_NOT) {
				p.advance()
				ops = append(ops, ast.IsNot)
			} else {
				ops = append(ops, ast.Is)
			}
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		if p.at(token.KW_NOT) && p.pk.Kind == token.KW_IN {
			p.advance()
			p.advance()
			ops = append(ops, ast.NotIn)
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		break
	}
	if len(ops) == 0 {
		return left
	}
	return &ast.Compare{Base: ast.Base{P: pos}, Left: left, Ops: ops, Comparators: comparators}
}

func (p *Parser) parseBitOr() ast.Expression {
	left := p.parseBitXor()
	for p.at(token.PIPE) {
		pos := p.pos()
		p.advance()
		right := p.parseBitXor()
		left = &ast.BinOp{Base: ast.Base{P: pos}, Op: ast.BitOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expression {
	left := p.parseBitAnd()
	for p.at(token.CARET) {
		pos := p.pos()
		p.advance()
		right := p.parseBitAnd()
		left = &ast.BinOp{Base: ast.Base{P: pos}, Op: ast.BitXor, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expression {
	left := p.parseShift()
	for p.at(token.AMP) {
		pos := p.pos()
		p.advance()
		right := p.parseShift()
		left = &ast.BinOp{Base: ast.Base{P: pos}, Op: ast.BitAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expression {
	left := p.parseAddSub()
	for p.at(token.LSHIFT) || p.at(token.RSHIFT) {
		pos := p.pos()
		op := ast.LShift
		if p.at(token.RSHIFT) {
			op = ast.RShift
		}
		p.advance()
		right := p.parseAddSub()
		left = &ast.BinOp{Base: ast.Base{P: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAddSub() ast.Expression {
	left := p.parseMulDiv()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		pos := p.pos()
		op := ast.Add
		if p.at(token.MINUS) {
			op = ast.Sub
		}
		p.advance()
		right := p.parseMulDiv()
		left = &ast.BinOp{Base: ast.Base{P: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMulDiv() ast.Expression {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		pos := p.pos()
		var op ast.BinOpKind
		switch p.cur.Kind {
		case token.STAR:
			op = ast.Mult
		case token.SLASH:
			op = ast.Div
		case token.PERCENT:
			op = ast.Mod
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.BinOp{Base: ast.Base{P: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur.Kind {
	case token.MINUS:
		pos := p.pos()
		p.advance()
		return &ast.UnaryOp{Base: ast.Base{P: pos}, Op: ast.USub, Operand: p.parseUnary()}
	case token.PLUS:
		pos := p.pos()
		p.advance()
		return &ast.UnaryOp{Base: ast.Base{P: pos}, Op: ast.UAdd, Operand: p.parseUnary()}
	case token.TILDE:
		pos := p.pos()
		p.advance()
		return &ast.UnaryOp{Base: ast.Base{P: pos}, Op: ast.Invert, Operand: p.parseUnary()}
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expression {
	left := p.parsePostfix()
	if p.at(token.STARSTAR) {
		pos := p.pos()
		p.advance()
		right := p.parseUnary()
		return &ast.BinOp{Base: ast.Base{P: pos}, Op: ast.Pow, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			pos := p.pos()
			p.advance()
			attr := p.expect(token.IDENT).Literal
			expr = &ast.Attribute{Base: ast.Base{P: pos}, Value: expr, Attr: attr}
		case token.LPAREN:
			expr = p.parseCall(expr)
		case token.LBRACKET:
			expr = p.parseSubscript(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	pos := p.pos()
	p.expect(token.LPAREN)
	call := &ast.Call{Base: ast.Base{P: pos}, Func: callee}
	for !p.at(token.RPAREN) {
		if p.at(token.STAR) {
			p.advance()
			call.StarArgs = p.parseExpression()
		} else if p.at(token.STARSTAR) {
			p.advance()
			call.KwArgs = p.parseExpression()
		} else if p.at(token.IDENT) && p.pk.Kind == token.ASSIGN {
			name := p.cur.Literal
			p.advance()
			p.advance()
			call.Keywords = append(call.Keywords, ast.Keyword{Name: name, Value: p.parseExpression()})
		} else {
			call.Args = append(call.Args, p.parseExpression())
		}
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return call
}

func (p *Parser) parseSubscript(value ast.Expression) ast.Expression {
	pos := p.pos()
	p.expect(token.LBRACKET)
	var lower, upper, step ast.Expression
	isSlice := false
	if !p.at(token.COLON) {
		lower = p.parseExpression()
	}
	if p.at(token.COLON) {
		isSlice = true
		p.advance()
		if !p.at(token.COLON) && !p.at(token.RBRACKET) {
			upper = p.parseExpression()
		}
		if p.at(token.COLON) {
			p.advance()
			if !p.at(token.RBRACKET) {
				step = p.parseExpression()
			}
		}
	}
	p.expect(token.RBRACKET)
	if isSlice {
		return &ast.Subscript{Base: ast.Base{P: pos}, Value: value, Slice: &ast.Slice{Base: ast.Base{P: pos}, Lower: lower, Upper: upper, Step: step}}
	}
	return &ast.Subscript{Base: ast.Base{P: pos}, Value: value, Slice: &ast.Index{Base: ast.Base{P: pos}, Value: lower}}
}

func (p *Parser) parsePrimary() ast.Expression {
	pos := p.pos()
	switch p.cur.Kind {
	case token.NUMBER:
		lit := p.cur.Literal
		p.advance()
		v, _ := strconv.ParseFloat(lit, 64)
		return &ast.Num{Base: ast.Base{P: pos}, Value: v}
	case token.STRING:
		lit := p.cur.Literal
		p.advance()
		return &ast.Str{Base: ast.Base{P: pos}, Value: lit}
	case token.BACKTICK:
		lit := p.cur.Literal
		p.advance()
		return &ast.Repr{Base: ast.Base{P: pos}, Value: &ast.Str{Base: ast.Base{P: pos}, Value: lit}}
	case token.KW_NONE:
		p.advance()
		return &ast.Name{Base: ast.Base{P: pos}, Id: "None"}
	case token.KW_TRUE:
		p.advance()
		return &ast.Name{Base: ast.Base{P: pos}, Id: "True"}
	case token.KW_FALSE:
		p.advance()
		return &ast.Name{Base: ast.Base{P: pos}, Id: "False"}
	case token.KW_YIELD:
		p.advance()
		var val ast.Expression
		if !p.at(token.NEWLINE) && !p.at(token.RPAREN) && !p.at(token.RBRACE) && !p.at(token.EOF) {
			val = p.parseExpression()
		}
		return &ast.Yield{Base: ast.Base{P: pos}, Value: val}
	case token.IDENT:
		name := p.cur.Literal
		p.advance()
		return &ast.Name{Base: ast.Base{P: pos}, Id: name}
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListOrComp()
	case token.LBRACE:
		return p.parseDictOrSetOrComp()
	}
	p.fail("unexpected token %q", p.cur.Literal)
	return nil
}

func (p *Parser) parseParenOrTuple() ast.Expression {
	pos := p.pos()
	p.expect(token.LPAREN)
	if p.at(token.RPAREN) {
		p.advance()
		return &ast.Tuple{Base: ast.Base{P: pos}}
	}
	first := p.parseExpression()
	if p.at(token.KW_FOR) {
		gens := p.parseGenerators()
		p.expect(token.RPAREN)
		return &ast.GeneratorExp{Base: ast.Base{P: pos}, Elt: first, Generators: gens}
	}
	if p.at(token.COMMA) {
		elts := []ast.Expression{first}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RPAREN) {
				break
			}
			elts = append(elts, p.parseExpression())
		}
		p.expect(token.RPAREN)
		return &ast.Tuple{Base: ast.Base{P: pos}, Elts: elts}
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseListOrComp() ast.Expression {
	pos := p.pos()
	p.expect(token.LBRACKET)
	if p.at(token.RBRACKET) {
		p.advance()
		return &ast.ListLit{Base: ast.Base{P: pos}}
	}
	first := p.parseExpression()
	if p.at(token.KW_FOR) {
		gens := p.parseGenerators()
		p.expect(token.RBRACKET)
		return &ast.ListComp{Base: ast.Base{P: pos}, Elt: first, Generators: gens}
	}
	elts := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACKET) {
			break
		}
		elts = append(elts, p.parseExpression())
	}
	p.expect(token.RBRACKET)
	return &ast.ListLit{Base: ast.Base{P: pos}, Elts: elts}
}

func (p *Parser) parseDictOrSetOrComp() ast.Expression {
	pos := p.pos()
	p.expect(token.LBRACE)
	if p.at(token.RBRACE) {
		p.advance()
		return &ast.DictLit{Base: ast.Base{P: pos}}
	}
	first := p.parseExpression()
	if p.at(token.COLON) {
		p.advance()
		firstVal := p.parseExpression()
		if p.at(token.KW_FOR) {
			gens := p.parseGenerators()
			p.expect(token.RBRACE)
			return &ast.DictComp{Base: ast.Base{P: pos}, Key: first, Value: firstVal, Generators: gens}
		}
		keys := []ast.Expression{first}
		values := []ast.Expression{firstVal}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RBRACE) {
				break
			}
			k := p.parseExpression()
			p.expect(token.COLON)
			v := p.parseExpression()
			keys = append(keys, k)
			values = append(values, v)
		}
		p.expect(token.RBRACE)
		return &ast.DictLit{Base: ast.Base{P: pos}, Keys: keys, Values: values}
	}
	if p.at(token.KW_FOR) {
		gens := p.parseGenerators()
		p.expect(token.RBRACE)
		return &ast.SetComp{Base: ast.Base{P: pos}, Elt: first, Generators: gens}
	}
	elts := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACE) {
			break
		}
		elts = append(elts, p.parseExpression())
	}
	p.expect(token.RBRACE)
	return &ast.SetLit{Base: ast.Base{P: pos}, Elts: elts}
}

// parseGenerators parses one or more `for target in iter (if cond)*`
// clauses trailing a comprehension/generator element.
func (p *Parser) parseGenerators() []ast.Comprehension {
	var gens []ast.Comprehension
	for p.at(token.KW_FOR) {
		p.advance()
		target := p.parseTargetExpr()
		p.expect(token.KW_IN)
		iter := p.parseOrExpr()
		var ifs []ast.Expression
		for p.at(token.KW_IF) {
			p.advance()
			ifs = append(ifs, p.parseOrExpr())
		}
		gens = append(gens, ast.Comprehension{Target: target, Iter: iter, Ifs: ifs})
	}
	return gens
}
