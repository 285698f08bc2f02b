package tree

// ExampleTopologies returns small canonical-form topologies used across the
// test suite.
//
//	0: (0,1,(2,3))
//	1: (0,1,(2,3)) built in a different child order
//	2: (0,2,(1,3))
//	3: (0,(1,(2,3))) rooted
func ExampleTopologies() []*Node {
	return []*Node{
		Join(Leaf(0), Leaf(1), Join(Leaf(2), Leaf(3))),
		Join(Leaf(1), Leaf(0), Join(Leaf(3), Leaf(2))),
		Join(Leaf(0), Leaf(2), Join(Leaf(1), Leaf(3))),
		Join(Leaf(0), Join(Leaf(1), Join(Leaf(2), Leaf(3)))),
	}
}

// FiveTaxonTopologies returns a set of 5-taxon unrooted topologies whose
// union of rootsplits has exactly 12 distinct elements.
func FiveTaxonTopologies() []*Node {
	return []*Node{
		// (0,1,((2,3),4)) shape written as trifurcations at taxon 0's vertex.
		Join(Leaf(0), Leaf(1), Join(Join(Leaf(2), Leaf(3)), Leaf(4))),
		Join(Leaf(0), Leaf(2), Join(Join(Leaf(1), Leaf(3)), Leaf(4))),
		Join(Leaf(0), Join(Leaf(1), Leaf(2)), Join(Leaf(3), Leaf(4))),
		Join(Leaf(0), Join(Leaf(1), Leaf(4)), Join(Leaf(2), Leaf(3))),
	}
}
