package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func agentNode(id string) Node {
	return Node{ID: id, Kind: KindAgent, Ref: &NodeRef{ID: id, Name: id}}
}

func chainData(ids ...string) *ScenarioData {
	d := &ScenarioData{}
	for _, id := range ids {
		d.Nodes = append(d.Nodes, agentNode(id))
	}
	for i := 1; i < len(ids); i++ {
		d.Edges = append(d.Edges, Edge{
			ID: "e" + ids[i-1] + ids[i], Source: ids[i-1], Target: ids[i], Kind: EdgeHandoff,
		})
	}
	return d
}

func TestWouldCreateLoop(t *testing.T) {
	d := chainData("A", "B", "C")

	assert.True(t, WouldCreateLoop("C", "A", d.Edges), "closing A->B->C back to A is a loop")
	assert.True(t, WouldCreateLoop("B", "A", d.Edges))
	assert.True(t, WouldCreateLoop("A", "A", d.Edges), "self loop")
	assert.False(t, WouldCreateLoop("C", "D", d.Edges), "edge to a fresh node is fine")
	assert.False(t, WouldCreateLoop("A", "C", d.Edges), "shortcut along existing direction is fine")
}

func TestWouldCreateLoopDiamond(t *testing.T) {
	// A → B → D and A → C → D: D reachable along two paths must not be a
	// false positive for an edge D → E.
	edges := []Edge{
		{ID: "1", Source: "A", Target: "B"},
		{ID: "2", Source: "A", Target: "C"},
		{ID: "3", Source: "B", Target: "D"},
		{ID: "4", Source: "C", Target: "D"},
	}
	assert.False(t, WouldCreateLoop("D", "E", edges))
	assert.True(t, WouldCreateLoop("A", "D", edges), "D cannot point back at A")
}

func TestWouldCreateLoopTerminatesOnExistingCycle(t *testing.T) {
	// Historical graphs may already contain a cycle; the check must still
	// answer in bounded time.
	edges := []Edge{
		{ID: "1", Source: "X", Target: "Y"},
		{ID: "2", Source: "Y", Target: "X"},
	}
	assert.False(t, WouldCreateLoop("Z", "X", edges))
	assert.True(t, WouldCreateLoop("Y", "X", edges))
}

func TestCanConnectRoleConstraints(t *testing.T) {
	d := &ScenarioData{
		Nodes: []Node{
			{ID: "start", Kind: KindStarter},
			agentNode("A"),
			agentNode("B"),
			{ID: "done", Kind: KindExit},
			{ID: "T", Kind: KindTool, Ref: &NodeRef{ID: "T", Name: "T", Method: "GET", URL: "https://t"}},
		},
	}

	assert.False(t, CanConnect(d, "A", "start"), "starter is never a target")
	assert.False(t, CanConnect(d, "done", "A"), "exit is never a source")
	assert.False(t, CanConnect(d, "T", "A"), "tool is never a source")
	assert.False(t, CanConnect(d, "A", "ghost"), "unknown target")
	assert.False(t, CanConnect(d, "ghost", "A"), "unknown source")

	assert.True(t, CanConnect(d, "start", "A"))
	assert.True(t, CanConnect(d, "A", "B"))
	assert.True(t, CanConnect(d, "A", "done"))
	assert.True(t, CanConnect(d, "A", "T"))
}

func TestCanConnectRejectsCycles(t *testing.T) {
	d := chainData("A", "B", "C")
	assert.False(t, CanConnect(d, "C", "A"))
	assert.True(t, CanConnect(d, "A", "C"))
}

func TestCanConnectToolTargetsSkipCycleCheck(t *testing.T) {
	d := chainData("A", "B", "C")
	d.Nodes = append(d.Nodes, Node{ID: "T", Kind: KindTool, Ref: &NodeRef{ID: "T", Name: "T"}})
	d.Edges = append(d.Edges, Edge{ID: "eAT", Source: "A", Target: "T", Kind: EdgeTool})

	// A second (and third) edge into the same tool is always allowed:
	// tools are sinks and cannot reintroduce a cycle.
	assert.True(t, CanConnect(d, "B", "T"))
	assert.True(t, CanConnect(d, "C", "T"))
}
