package diagnostics

import "github.com/vela-lang/vela/internal/ast"

// NodeLabel renders an expression the way warnings quote it: a Name
// prints its identifier; a Call prints its callee's label
// followed by "()"; an Attribute prepends "." to its own label;
// everything else falls back to its operator/kind name.
func NodeLabel(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Name:
		return n.Id
	case *ast.Call:
		return NodeLabel(n.Func) + "()"
	case *ast.Attribute:
		return NodeLabel(n.Value) + "." + n.Attr
	case *ast.Subscript:
		return NodeLabel(n.Value) + "[]"
	case *ast.BinOp:
		return binOpSymbol(n.Op)
	case *ast.UnaryOp:
		return unaryOpSymbol(n.Op)
	case *ast.BoolOp:
		if n.Op == ast.And {
			return "and"
		}
		return "or"
	case *ast.Compare:
		return "compare"
	case *ast.Num:
		return "<num>"
	case *ast.Str:
		return "<str>"
	default:
		return "<expr>"
	}
}

func binOpSymbol(op ast.BinOpKind) string {
	switch op {
	case ast.Add:
		return "+"
	case ast.Sub:
		return "-"
	case ast.Mult:
		return "*"
	case ast.Div:
		return "/"
	case ast.Mod:
		return "%"
	case ast.Pow:
		return "**"
	case ast.BitAnd:
		return "&"
	case ast.BitOr:
		return "|"
	case ast.BitXor:
		return "^"
	case ast.LShift:
		return "<<"
	case ast.RShift:
		return ">>"
	}
	return "?"
}

func unaryOpSymbol(op ast.UnaryOpKind) string {
	switch op {
	case ast.Not:
		return "not"
	case ast.UAdd:
		return "+"
	case ast.USub:
		return "-"
	case ast.Invert:
		return "~"
	}
	return "?"
}
