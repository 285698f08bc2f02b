package tree

import "fmt"

// Unroot returns the canonical unrooted form of a topology: a trifurcation
// at the internal vertex adjacent to taxon 0, with all other vertices
// binary. The input may be rooted (bifurcating root) or already trifurcating
// anywhere; the result is a new topology and the input is left untouched.
// A topology over n leaves must carry the taxa 0..n-1 exactly once each;
// duplicated or out-of-range taxa are rejected. Join only catches a
// duplicate between direct siblings, so this is the place where a corrupt
// topology is caught before it enters a collection.
//
// Canonicalizing the trifurcation point matters because two rooted encodings
// of the same unrooted tree would otherwise hash differently and be counted
// as distinct topologies.
func Unroot(t *Node) (*Node, error) {
	if t.LeafCount() < 3 {
		return nil, fmt.Errorf("tree: cannot unroot a topology with %d leaves", t.LeafCount())
	}
	leaves := t.LeafCount()
	seen := make([]bool, leaves)
	var taxaErr error
	t.PreOrder(func(node *Node) {
		if taxaErr != nil || !node.IsLeaf() {
			return
		}
		id := int(node.LeafID())
		switch {
		case id >= leaves:
			taxaErr = fmt.Errorf("tree: taxon %d out of range for %d leaves", id, leaves)
		case seen[id]:
			taxaErr = fmt.Errorf("tree: duplicate taxon %d", id)
		default:
			seen[id] = true
		}
	})
	if taxaErr != nil {
		return nil, taxaErr
	}
	switch len(t.Children()) {
	case 2, 3:
	default:
		return nil, fmt.Errorf("tree: root has %d children, want 2 or 3", len(t.Children()))
	}

	// Undirected adjacency over the node graph, with a bifurcating root
	// suppressed (its two children become direct neighbors).
	adj := make(map[*Node][]*Node)
	link := func(a, b *Node) {
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children() {
			link(n, c)
			walk(c)
		}
	}
	if len(t.Children()) == 2 {
		link(t.Children()[0], t.Children()[1])
		walk(t.Children()[0])
		walk(t.Children()[1])
	} else {
		walk(t)
	}

	// Find taxon 0 and pivot on its neighboring vertex.
	var zero *Node
	t.PreOrder(func(n *Node) {
		if n.IsLeaf() && n.LeafID() == 0 {
			zero = n
		}
	})
	if zero == nil {
		return nil, fmt.Errorf("tree: taxon 0 not present")
	}
	if len(adj[zero]) != 1 {
		return nil, fmt.Errorf("tree: leaf with %d neighbors", len(adj[zero]))
	}
	pivot := adj[zero][0]

	var build func(n, from *Node) *Node
	build = func(n, from *Node) *Node {
		if n.IsLeaf() {
			return Leaf(n.LeafID())
		}
		kids := make([]*Node, 0, 2)
		for _, nb := range adj[n] {
			if nb != from {
				kids = append(kids, build(nb, n))
			}
		}
		return Join(kids...)
	}

	kids := make([]*Node, 0, 3)
	for _, nb := range adj[pivot] {
		kids = append(kids, build(nb, pivot))
	}
	if len(kids) != 3 {
		return nil, fmt.Errorf("tree: pivot vertex has degree %d, want 3", len(kids))
	}
	return Join(kids...), nil
}

// Detrifurcate converts a trifurcating topology into an arbitrary rooted
// (bifurcating) encoding of the same unrooted tree by rooting on the first
// child's edge. A topology that already bifurcates at the root is returned
// as is.
func Detrifurcate(t *Node) (*Node, error) {
	switch len(t.Children()) {
	case 2:
		return t, nil
	case 3:
		c := t.Children()
		return Join(c[0], Join(c[1], c[2])), nil
	default:
		return nil, fmt.Errorf("tree: root has %d children, want 2 or 3", len(t.Children()))
	}
}
