package parse

import (
	"fmt"
	"iter"
	"strings"

	"github.com/dekarrin/grok/internal/lex"
)

// Tree is a node of a parse tree. Value is the name of the symbol at the node.
// Terminal nodes hold the token they matched in Source and have no children.
// A nonterminal expanded by an epsilon rule also has no children.
type Tree struct {
	Terminal bool
	Value    string
	Source   lex.Token
	Children []*Tree
}

// branch markers drawn in front of child nodes by String.
const (
	treeBranch     = "  |---: "
	treeLastBranch = `  \---: `
	treeOngoing    = "  |     "
	treeEmpty      = "        "
)

// String draws the tree one node per line, with each child indented under its
// parent. Nonterminals show as "( E )" and terminals as "(TERM "id")".
func (pt Tree) String() string {
	var sb strings.Builder
	pt.draw(&sb, "", "")
	return sb.String()
}

func (pt Tree) draw(sb *strings.Builder, prefix, indent string) {
	sb.WriteString(prefix)
	if pt.Terminal {
		fmt.Fprintf(sb, "(TERM %q)", pt.Value)
	} else {
		fmt.Fprintf(sb, "( %s )", pt.Value)
	}

	for i, child := range pt.Children {
		sb.WriteRune('\n')
		if i == len(pt.Children)-1 {
			child.draw(sb, indent+treeLastBranch, indent+treeEmpty)
		} else {
			child.draw(sb, indent+treeBranch, indent+treeOngoing)
		}
	}
}

// Equal returns whether o is a Tree or non-nil *Tree with the same shape as pt
// and the same symbol at every node. Source tokens are not compared.
func (pt Tree) Equal(o any) bool {
	var other *Tree
	switch v := o.(type) {
	case Tree:
		other = &v
	case *Tree:
		other = v
	}
	if other == nil {
		return false
	}

	next, stop := iter.Pull(other.Walk())
	defer stop()
	for node := range pt.Walk() {
		otherNode, ok := next()
		if !ok || !node.sameNode(otherNode) {
			return false
		}
	}
	_, more := next()
	return !more
}

// sameNode compares two nodes without looking below them. Matching child
// counts at every node of a pre-order walk means matching shapes.
func (pt *Tree) sameNode(o *Tree) bool {
	return pt.Terminal == o.Terminal && pt.Value == o.Value && len(pt.Children) == len(o.Children)
}

// Copy returns a deep copy of the tree.
func (pt Tree) Copy() *Tree {
	cp := &Tree{
		Terminal: pt.Terminal,
		Value:    pt.Value,
		Source:   pt.Source,
	}
	if pt.Children != nil {
		cp.Children = make([]*Tree, len(pt.Children))
		for i := range pt.Children {
			cp.Children[i] = pt.Children[i].Copy()
		}
	}
	return cp
}

// Walk returns an iterator over every node of the tree in pre-order. Nodes are
// visited as the iterator is advanced.
func (pt *Tree) Walk() iter.Seq[*Tree] {
	return func(yield func(*Tree) bool) {
		pt.walk(yield)
	}
}

func (pt *Tree) walk(yield func(*Tree) bool) bool {
	if !yield(pt) {
		return false
	}
	for _, child := range pt.Children {
		if !child.walk(yield) {
			return false
		}
	}
	return true
}

// Leaves returns the tokens of the terminal nodes of the tree from left to
// right. For a tree produced by a successful parse this is every token that
// was parsed, in input order.
func (pt *Tree) Leaves() []lex.Token {
	var toks []lex.Token
	for node := range pt.Walk() {
		if node.Terminal {
			toks = append(toks, node.Source)
		}
	}
	return toks
}
