package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCanonicalizesChildOrder(t *testing.T) {
	a := Join(Leaf(0), Leaf(1), Join(Leaf(2), Leaf(3)))
	b := Join(Join(Leaf(3), Leaf(2)), Leaf(1), Leaf(0))
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, "(0,1,(2,3));", a.String())
	assert.Equal(t, "(0,1,(2,3));", b.String())
}

func TestJoinPanics(t *testing.T) {
	assert.Panics(t, func() { Join(Leaf(0)) })
	// A tie in max leaf index means a duplicated taxon.
	assert.Panics(t, func() { Join(Leaf(1), Join(Leaf(0), Leaf(1))) })
}

func TestEqualDistinguishesShapes(t *testing.T) {
	a := Join(Leaf(0), Leaf(1), Join(Leaf(2), Leaf(3)))
	b := Join(Leaf(0), Leaf(2), Join(Leaf(1), Leaf(3)))
	c := Join(Leaf(0), Join(Leaf(1), Join(Leaf(2), Leaf(3))))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, a.Equal(a))
}

func TestNodeAccessors(t *testing.T) {
	cherry := Join(Leaf(2), Leaf(3))
	top := Join(Leaf(0), Leaf(1), cherry)

	assert.True(t, Leaf(5).IsLeaf())
	assert.Equal(t, uint32(5), Leaf(5).LeafID())
	assert.False(t, top.IsLeaf())
	assert.Panics(t, func() { top.LeafID() })

	assert.Equal(t, 4, top.LeafCount())
	assert.Equal(t, uint32(3), top.MaxLeafID())
	assert.Len(t, top.Children(), 3)
}

func TestTraversalOrders(t *testing.T) {
	top := Join(Leaf(0), Leaf(1), Join(Leaf(2), Leaf(3)))

	var pre, post, level []string
	visit := func(dst *[]string) func(*Node) {
		return func(n *Node) {
			if n.IsLeaf() {
				*dst = append(*dst, n.String())
			} else {
				*dst = append(*dst, "*")
			}
		}
	}
	top.PreOrder(visit(&pre))
	top.PostOrder(visit(&post))
	top.LevelOrder(visit(&level))

	assert.Equal(t, []string{"*", "0;", "1;", "*", "2;", "3;"}, pre)
	assert.Equal(t, []string{"0;", "1;", "2;", "3;", "*", "*"}, post)
	assert.Equal(t, []string{"*", "0;", "1;", "*", "2;", "3;"}, level)
}

func TestNewickLabels(t *testing.T) {
	top := Join(Leaf(0), Leaf(1), Join(Leaf(2), Leaf(3)))
	labels := []string{"ape", "bat", "cat", "dog"}
	assert.Equal(t, "(ape,bat,(cat,dog));", top.Newick(labels))
}

func TestParentIndexVectorRoundTrip(t *testing.T) {
	for _, top := range append(ExampleTopologies(), FiveTaxonTopologies()...) {
		parents := ParentIndexVector(top)
		back, err := OfParentIndexVector(parents)
		require.NoError(t, err)
		assert.True(t, top.Equal(back), top.String())
	}
}

func TestPositions(t *testing.T) {
	top := Join(Leaf(0), Leaf(1), Join(Leaf(2), Leaf(3)))
	pos, total := Positions(top)
	assert.Equal(t, 6, total)
	// Leaves sit at their taxon index; the cherry is the first internal
	// position; the root comes last.
	assert.Equal(t, 4, pos[top.Children()[2]])
	assert.Equal(t, 5, pos[top])
	for _, c := range top.Children()[:2] {
		assert.Equal(t, int(c.LeafID()), pos[c])
	}
}
