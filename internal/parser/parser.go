// Package parser turns a token stream into the internal/ast tree:
// recursive-descent with precedence climbing, a cur/peek token pair,
// and one file per construct group. The grammar is deliberately small;
// the analyzer only needs the closed AST node set internal/ast defines.
package parser

import (
	"fmt"
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/lexer"
	"github.com/vela-lang/vela/internal/token"
)

// ParseError is a fatal syntax error. Unlike analysis findings, which
// become warnings, a file that does not parse aborts the run.
type ParseError struct {
	Line, Column int
	Msg          string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

type Parser struct {
	lex *lexer.Lexer
	cur token.Token
	pk  token.Token
}

// New builds a Parser over src.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.pk
	p.pk = p.lex.NextToken()
}

func (p *Parser) pos() ast.Pos { return ast.Pos{Line: p.cur.Line, Column: p.cur.Column} }

func (p *Parser) fail(format string, args ...any) {
	panic(&ParseError{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.fail("expected %s, found %q", k, p.cur.Literal)
	}
	t := p.cur
	p.advance()
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) skipNewlines() {
	for p.cur.Kind == token.NEWLINE {
		p.advance()
	}
}

// ParseProgram parses a whole source file, recovering a *ParseError
// raised anywhere in the descent into err.
func ParseProgram(file, src string) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	p := New(src)
	stmts := []ast.Statement{}
	p.skipNewlines()
	for !p.at(token.EOF) {
		stmts = append(stmts, p.parseStatement())
		p.skipNewlines()
	}
	return &ast.Program{File: file, Statements: stmts}, nil
}

// parseBlock parses `{ NEWLINE* stmt* }`.
func (p *Parser) parseBlock() []ast.Statement {
	p.expect(token.LBRACE)
	p.skipNewlines()
	var out []ast.Statement
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		out = append(out, p.parseStatement())
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return out
}
