package tagtree

import (
	"fmt"
	"strings"
)

// Kind is the closed set of node variants.
type Kind int

const (
	Leaf Kind = iota
	Value
	Iteration
	Fallback
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Value:
		return "value"
	case Iteration:
		return "iteration"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NodeID indexes Tree.Nodes.
type NodeID int

// Root is the id of the anonymous top-level node.
const Root NodeID = 0

// Node is one arena slot. Text is only set on leaves,
// Format only on value nodes.
type Node struct {
	Kind     Kind
	Type     string
	Format   string
	Text     string
	Children []NodeID

	typed bool
}

// Tree owns every node reachable from Root.
type Tree struct {
	Nodes []Node
}

func newTree() *Tree {
	return &Tree{Nodes: []Node{{Kind: Iteration, typed: true}}}
}

// Node returns the node stored under id.
func (tr *Tree) Node(id NodeID) *Node {
	return &tr.Nodes[id]
}

func (tr *Tree) add(nd Node) NodeID {
	tr.Nodes = append(tr.Nodes, nd)

	return NodeID(len(tr.Nodes) - 1)
}

// attach appends child to parent. The first attachment
// settles the parent's type and format label.
func (tr *Tree) attach(parent NodeID, child NodeID, labels []string) {
	pn := &tr.Nodes[parent]

	if !pn.typed {
		pn.typed = true

		cn := &tr.Nodes[child]
		if cn.Kind == Leaf {
			text := cn.Text

			if pn.Kind == Value {
				pn.Format, text = ExtractFormat(text, labels)
			}

			pn.Type, cn.Text = ExtractType(pn.Kind, text)
		}
	}

	pn.Children = append(pn.Children, child)
}

// String renders an indented outline, handy in test
// failure output.
func (tr *Tree) String() string {
	var sb strings.Builder

	tr.dump(&sb, Root, 0)

	return sb.String()
}

func (tr *Tree) dump(sb *strings.Builder, id NodeID, depth int) {
	nd := tr.Node(id)

	sb.WriteString(strings.Repeat("  ", depth))

	switch nd.Kind {
	case Leaf:
		fmt.Fprintf(sb, "leaf %q\n", nd.Text)
	case Value:
		fmt.Fprintf(sb, "value %q format=%q\n", nd.Type, nd.Format)
	default:
		fmt.Fprintf(sb, "%s %q\n", nd.Kind, nd.Type)
	}

	for _, ch := range nd.Children {
		tr.dump(sb, ch, depth+1)
	}
}
