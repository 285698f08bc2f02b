package tree

import (
	"strconv"
	"strings"
)

// Newick renders the topology in Newick format. When labels is non-nil it
// must map taxon indices to names; otherwise the numeric taxon index is
// used. Branch lengths are out of scope here, so none are rendered.
func (n *Node) Newick(labels []string) string {
	var sb strings.Builder
	n.newick(&sb, labels)
	sb.WriteByte(';')
	return sb.String()
}

func (n *Node) newick(sb *strings.Builder, labels []string) {
	if n.IsLeaf() {
		if labels != nil {
			sb.WriteString(labels[n.LeafID()])
		} else {
			sb.WriteString(strconv.Itoa(int(n.LeafID())))
		}
		return
	}
	sb.WriteByte('(')
	for i, c := range n.children {
		if i > 0 {
			sb.WriteByte(',')
		}
		c.newick(sb, labels)
	}
	sb.WriteByte(')')
}

// String renders the topology as Newick with numeric taxon labels.
func (n *Node) String() string { return n.Newick(nil) }
