package tree

import "fmt"

// Canonical node positions. Leaves occupy positions [0, n) by taxon index;
// internal non-root nodes follow in post-order starting at n; the root comes
// last. Positions double as rooting-edge identifiers: every non-root node
// stands for the edge above it.

// Positions assigns canonical positions to every node of the topology and
// returns the assignment together with the total node count.
func Positions(t *Node) (map[*Node]int, int) {
	n := t.LeafCount()
	pos := make(map[*Node]int, 2*n)
	next := n
	t.PostOrder(func(node *Node) {
		if node.IsLeaf() {
			pos[node] = int(node.LeafID())
			return
		}
		pos[node] = next
		next++
	})
	return pos, next
}

// ParentIndexVector flattens the topology into a vector mapping each
// non-root position to its parent's position.
func ParentIndexVector(t *Node) []int {
	pos, total := Positions(t)
	parents := make([]int, total-1)
	t.PreOrder(func(node *Node) {
		for _, c := range node.Children() {
			parents[pos[c]] = pos[node]
		}
	})
	return parents
}

// OfParentIndexVector rebuilds a topology from a parent index vector. The
// root is the one position missing from the vector, i.e. its length.
func OfParentIndexVector(parents []int) (*Node, error) {
	childrenOf := make(map[int][]int, len(parents))
	for child, parent := range parents {
		childrenOf[parent] = append(childrenOf[parent], child)
	}
	var build func(int) (*Node, error)
	build = func(cur int) (*Node, error) {
		kids, ok := childrenOf[cur]
		if !ok {
			// Anything without registered children is a leaf.
			if cur >= len(parents) {
				return nil, fmt.Errorf("tree: childless root position %d", cur)
			}
			return Leaf(uint32(cur)), nil
		}
		nodes := make([]*Node, 0, len(kids))
		for _, k := range kids {
			c, err := build(k)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, c)
		}
		return Join(nodes...), nil
	}
	return build(len(parents))
}
