package lexer

import (
	"github.com/vela-lang/vela/internal/token"
	"testing"
)

func collect(src string) []token.Token {
	l := New(src)
	var out []token.Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestNextTokenKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			"assignment",
			"x = 1\n",
			[]token.Kind{token.IDENT, token.ASSIGN, token.NUMBER, token.NEWLINE, token.EOF},
		},
		{
			"keywords",
			"def if else while",
			[]token.Kind{token.KW_DEF, token.KW_IF, token.KW_ELSE, token.KW_WHILE, token.EOF},
		},
		{
			"two-char operators",
			"== != <= >= ** += <<",
			[]token.Kind{token.EQ, token.NEQ, token.LTE, token.GTE, token.STARSTAR, token.PLUS_ASSIGN, token.LSHIFT, token.EOF},
		},
		{
			"comment to end of line",
			"x # trailing\ny",
			[]token.Kind{token.IDENT, token.NEWLINE, token.IDENT, token.EOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(collect(tt.src))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	toks := collect("\"a\\nb\"")
	if toks[0].Kind != token.STRING || toks[0].Literal != "a\nb" {
		t.Errorf("got %v %q, want STRING with a literal newline", toks[0].Kind, toks[0].Literal)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := collect("x = 1\ny = 2\n")
	// y is the first token of line 2.
	var y token.Token
	for _, tok := range toks {
		if tok.Kind == token.IDENT && tok.Literal == "y" {
			y = tok
		}
	}
	if y.Line != 2 {
		t.Errorf("y on line %d, want 2", y.Line)
	}
	if y.Column != 1 {
		t.Errorf("y at column %d, want 1", y.Column)
	}
}

func TestFloatNumber(t *testing.T) {
	toks := collect("3.25")
	if toks[0].Kind != token.NUMBER || toks[0].Literal != "3.25" {
		t.Errorf("got %v %q, want NUMBER 3.25", toks[0].Kind, toks[0].Literal)
	}
}
