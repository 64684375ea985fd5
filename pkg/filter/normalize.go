package filter

import "strings"

type nodeKind int

const (
	leafNode nodeKind = iota
	andNode
	orNode
)

// node is the simplified form of an Expression: same-operator groups are
// flattened and single-operand groups collapsed.
type node struct {
	kind     nodeKind
	text     string
	children []*node
}

// Normalize returns s with balanced and minimal parentheses. Nested groups
// with the same operator are merged and a group is only parenthesized when
// it is an operand of the other operator. Normalize is idempotent.
//
// Input that does not parse is returned with its parentheses balanced
// (outside of quoted literals) but otherwise untouched.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if expr, err := Parse(s); err == nil {
		return render(simplifyExpression(expr), nil)
	}
	balanced := Balance(s)
	if expr, err := Parse(balanced); err == nil {
		return render(simplifyExpression(expr), nil)
	}
	return balanced
}

func simplifyExpression(e *Expression) *node {
	var children []*node
	for _, c := range e.Or {
		n := simplifyConjunction(c)
		if n.kind == orNode {
			children = append(children, n.children...)
		} else {
			children = append(children, n)
		}
	}
	if len(children) == 1 {
		return children[0]
	}
	return &node{kind: orNode, children: children}
}

func simplifyConjunction(c *Conjunction) *node {
	var children []*node
	for _, op := range c.And {
		var n *node
		if op.Group != nil {
			n = simplifyExpression(op.Group)
		} else {
			n = &node{kind: leafNode, text: op.Predicate.String()}
		}
		if n.kind == andNode {
			children = append(children, n.children...)
		} else {
			children = append(children, n)
		}
	}
	if len(children) == 1 {
		return children[0]
	}
	return &node{kind: andNode, children: children}
}

func render(n *node, parent *node) string {
	if n.kind == leafNode {
		return n.text
	}
	sep := " && "
	if n.kind == orNode {
		sep = " || "
	}
	parts := make([]string, len(n.children))
	for i, c := range n.children {
		parts[i] = render(c, n)
	}
	s := strings.Join(parts, sep)
	if parent != nil {
		return "(" + s + ")"
	}
	return s
}

func (p *Predicate) String() string {
	return p.Field + p.Op + p.Value.String()
}

func (v *Value) String() string {
	if v.List != nil {
		return "[" + strings.Join(v.List.Items, ",") + "]"
	}
	if v.Scalar != nil {
		return *v.Scalar
	}
	return ""
}

// Balance drops unmatched closing parentheses and appends the missing
// closing ones. Parentheses inside "..." and `...` literals are left alone.
func Balance(s string) string {
	var (
		b     strings.Builder
		depth int
		quote rune
		esc   bool
	)
	for _, r := range s {
		if quote != 0 {
			b.WriteRune(r)
			switch {
			case esc:
				esc = false
			case r == '\\' && quote == '"':
				esc = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '`':
			quote = r
		case '(':
			depth++
		case ')':
			if depth == 0 {
				continue
			}
			depth--
		}
		b.WriteRune(r)
	}
	// Close a dangling literal so the added parentheses stay outside of it.
	if quote != 0 {
		if esc {
			b.WriteRune('\\')
		}
		b.WriteRune(quote)
	}
	b.WriteString(strings.Repeat(")", depth))
	return b.String()
}
