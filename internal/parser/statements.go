package parser

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.AT:
		return p.parseDecoratedDef()
	case token.KW_DEF:
		return p.parseFunctionDef(nil)
	case token.KW_CLASS:
		return p.parseClassDef()
	case token.KW_RETURN:
		return p.parseReturn()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_WITH:
		return p.parseWith()
	case token.KW_DEL:
		return p.parseDelete()
	case token.KW_IMPORT:
		return p.parseImport()
	case token.KW_FROM:
		return p.parseImportFrom()
	default:
		return p.parseExprOrAssign()
	}
}

// parseDecoratedDef handles `@types(...) def name(...) { ... }`.
func (p *Parser) parseDecoratedDef() ast.Statement {
	p.expect(token.AT)
	name := p.expect(token.IDENT)
	if name.Literal != "types" {
		p.fail("unsupported decorator %q", name.Literal)
	}
	p.expect(token.LPAREN)
	decl := &ast.TypesDecorator{Keyword: map[string]ast.Expression{}}
	for !p.at(token.RPAREN) {
		if p.at(token.IDENT) && p.pk.Kind == token.ASSIGN {
			kw := p.cur.Literal
			p.advance()
			p.advance()
			decl.Keyword[kw] = p.parseExpression()
		} else {
			decl.Positional = append(decl.Positional, p.parseExpression())
		}
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	p.skipNewlines()
	return p.parseFunctionDef(decl)
}

func (p *Parser) parseFunctionDef(decl *ast.TypesDecorator) ast.Statement {
	pos := p.pos()
	p.expect(token.KW_DEF)
	name := p.expect(token.IDENT).Literal
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FunctionDef{Base: ast.Base{P: pos}, Name: name, Params: params, Body: body, TypesDecl: decl}
}

func (p *Parser) parseParams() ast.Params {
	p.expect(token.LPAREN)
	var params ast.Params
	for !p.at(token.RPAREN) {
		if p.at(token.STAR) {
			p.advance()
			params.VarArg = p.expect(token.IDENT).Literal
		} else if p.at(token.STARSTAR) {
			p.advance()
			params.KwArg = p.expect(token.IDENT).Literal
		} else {
			name := p.expect(token.IDENT).Literal
			var def ast.Expression
			if p.at(token.ASSIGN) {
				p.advance()
				def = p.parseExpression()
			}
			params.Names = append(params.Names, ast.Param{Name: name, Default: def})
		}
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseClassDef() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_CLASS)
	name := p.expect(token.IDENT).Literal
	body := p.parseBlock()
	return &ast.ClassDef{Base: ast.Base{P: pos}, Name: name, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_RETURN)
	var val ast.Expression
	if !p.at(token.NEWLINE) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		val = p.parseExpression()
	}
	return &ast.Return{Base: ast.Base{P: pos}, Value: val}
}

func (p *Parser) parseIf() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_IF)
	test := p.parseExpression()
	p.skipNewlines()
	body := p.parseBlock()
	var orelse []ast.Statement
	save := p.cur
	p.skipNewlines()
	if p.at(token.KW_ELSE) {
		p.advance()
		p.skipNewlines()
		if p.at(token.KW_IF) {
			orelse = []ast.Statement{p.parseIf()}
		} else {
			orelse = p.parseBlock()
		}
	} else {
		// no else: the newline(s) we consumed weren't ours; nothing to
		// push back since statement boundaries are newline-delimited
		// and the caller re-skips before the next statement.
		_ = save
	}
	return &ast.If{Base: ast.Base{P: pos}, Test: test, Body: body, OrElse: orelse}
}

func (p *Parser) parseWhile() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_WHILE)
	test := p.parseExpression()
	p.skipNewlines()
	body := p.parseBlock()
	return &ast.While{Base: ast.Base{P: pos}, Test: test, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_FOR)
	target := p.parseTargetExpr()
	p.expect(token.KW_IN)
	iter := p.parseExpression()
	p.skipNewlines()
	body := p.parseBlock()
	return &ast.For{Base: ast.Base{P: pos}, Target: target, Iter: iter, Body: body}
}

func (p *Parser) parseWith() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_WITH)
	ctxExpr := p.parseExpression()
	var target ast.Expression
	if p.at(token.KW_AS) {
		p.advance()
		target = p.parseTargetExpr()
	}
	p.skipNewlines()
	body := p.parseBlock()
	return &ast.With{Base: ast.Base{P: pos}, Context: ctxExpr, Target: target, Body: body}
}

func (p *Parser) parseDelete() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_DEL)
	target := p.parseExpression()
	return &ast.Delete{Base: ast.Base{P: pos}, Target: target}
}

func (p *Parser) parseImport() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_IMPORT)
	name := p.expect(token.IDENT).Literal
	return &ast.Import{Base: ast.Base{P: pos}, Name: name}
}

func (p *Parser) parseImportFrom() ast.Statement {
	pos := p.pos()
	p.expect(token.KW_FROM)
	module := p.expect(token.IDENT).Literal
	p.expect(token.KW_IMPORT)
	names := []string{p.expect(token.IDENT).Literal}
	for p.at(token.COMMA) {
		p.advance()
		names = append(names, p.expect(token.IDENT).Literal)
	}
	return &ast.ImportFrom{Base: ast.Base{P: pos}, Module: module, Names: names}
}

// parseTargetExpr parses an assignment/for/with target: a Name,
// Attribute, Subscript, or a parenthesized/bare tuple/list of those.
func (p *Parser) parseTargetExpr() ast.Expression {
	pos := p.pos()
	first := p.parseBitOr()
	if !p.at(token.COMMA) {
		return first
	}
	elts := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		elts = append(elts, p.parseBitOr())
	}
	return &ast.Tuple{Base: ast.Base{P: pos}, Elts: elts}
}

var augOps = map[token.Kind]ast.BinOpKind{
	token.PLUS_ASSIGN:    ast.Add,
	token.MINUS_ASSIGN:   ast.Sub,
	token.STAR_ASSIGN:    ast.Mult,
	token.SLASH_ASSIGN:   ast.Div,
	token.PERCENT_ASSIGN: ast.Mod,
}

func (p *Parser) parseExprOrAssign() ast.Statement {
	pos := p.pos()
	first := p.parseExpression()

	if op, ok := augOps[p.cur.Kind]; ok {
		p.advance()
		val := p.parseExpression()
		return &ast.AugAssign{Base: ast.Base{P: pos}, Target: first, Op: op, Value: val}
	}

	if p.at(token.ASSIGN) {
		targets := []ast.Expression{first}
		var value ast.Expression
		for p.at(token.ASSIGN) {
			p.advance()
			value = p.parseExpression()
			if p.at(token.ASSIGN) {
				targets = append(targets, value)
			}
		}
		return &ast.Assign{Base: ast.Base{P: pos}, Targets: targets, Value: value}
	}

	return &ast.ExprStmt{Base: ast.Base{P: pos}, Value: first}
}
