package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoLayoutGrid(t *testing.T) {
	nodes := []Node{agentNode("A"), agentNode("B"), agentNode("C"), agentNode("D"), agentNode("E")}

	out := AutoLayout(nodes)
	require.Len(t, out, 5)

	// 5 nodes → ceil(sqrt(5)) = 3 per row.
	cellW := 180.0 + 250.0
	cellH := 80.0 + 150.0
	want := []Position{
		{X: 0, Y: 0},
		{X: cellW, Y: 0},
		{X: 2 * cellW, Y: 0},
		{X: 0, Y: cellH},
		{X: cellW, Y: cellH},
	}
	for i, n := range out {
		assert.Equal(t, want[i], n.Position, "node %d", i)
		assert.Equal(t, nodes[i].ID, n.ID, "order preserved")
	}
}

func TestAutoLayoutIdempotent(t *testing.T) {
	nodes := []Node{agentNode("A"), agentNode("B"), agentNode("C"), agentNode("D")}

	once := AutoLayout(nodes)
	twice := AutoLayout(once)
	assert.Equal(t, once, twice)
}

func TestAutoLayoutDoesNotMutateInput(t *testing.T) {
	nodes := []Node{agentNode("A")}
	nodes[0].Position = Position{X: 42, Y: 7}

	out := AutoLayout(nodes)
	assert.Equal(t, Position{X: 42, Y: 7}, nodes[0].Position)
	assert.Equal(t, Position{X: 0, Y: 0}, out[0].Position)
}

func TestAutoLayoutEmpty(t *testing.T) {
	assert.Empty(t, AutoLayout(nil))
}
