package clangast

// WalkExpression renders an enum member's initializer expression as Vesper
// constant-expression text. Expressions are re-printed textually, never
// evaluated (downstream compilation re-type-checks them), with explicit
// parentheses around every sub-expression to keep precedence intact.
// Unrecognised node kinds render as the empty string.
func WalkExpression(n Node) string {
	switch n.Kind() {
	case "ConstantExpr":
		if inner := n.Inner(); len(inner) > 0 {
			return WalkExpression(inner[0])
		}
		return ""

	case "IntegerLiteral":
		return n.Value()

	case "UnaryOperator":
		op := n.Opcode()
		if op == "!" {
			op = "not"
		}
		inner := n.Inner()
		if len(inner) == 0 {
			return ""
		}
		return "(" + op + " " + WalkExpression(inner[0]) + ")"

	case "BinaryOperator":
		op := n.Opcode()
		switch op {
		case "&&":
			op = "and"
		case "||":
			op = "or"
		}
		inner := n.Inner()
		if len(inner) < 2 {
			return ""
		}
		return "(" + WalkExpression(inner[0]) + " " + op + " " + WalkExpression(inner[1]) + ")"

	case "ParenExpr":
		inner := n.Inner()
		if len(inner) == 0 {
			return ""
		}
		return "(" + WalkExpression(inner[0]) + ")"

	case "DeclRefExpr":
		if rd, ok := n["referencedDecl"]; ok {
			if m, ok := rd.(map[string]any); ok {
				return Node(m).Name()
			}
		}
		return ""

	case "ConditionalOperator":
		inner := n.Inner()
		if len(inner) < 3 {
			return ""
		}
		return "(" + WalkExpression(inner[1]) + " if " + WalkExpression(inner[0]) + " else " + WalkExpression(inner[2]) + ")"
	}

	return ""
}
