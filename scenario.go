package scenario

import (
	"fmt"
	"time"
)

// NodeKind identifies the role a node plays in a scenario graph.
type NodeKind string

const (
	KindAgent   NodeKind = "agent"
	KindTool    NodeKind = "tool"
	KindStarter NodeKind = "starter"
	KindExit    NodeKind = "exit"
)

// EdgeKind distinguishes a tool-invocation edge from an agent handoff.
type EdgeKind string

const (
	EdgeHandoff EdgeKind = "handoff"
	EdgeTool    EdgeKind = "tool"
)

// Default labels applied to new edges. The UI lets users rewrite them.
const (
	DefaultHandoffLabel = "when user wants to"
	DefaultToolLabel    = "Use tool"
)

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeRef carries the identity of the agent or tool a node stands for.
// Method and URL are only meaningful for tool nodes.
type NodeRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Method string `json:"method,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Node is a positioned vertex in a scenario graph.
// Ref is nil for starter and exit nodes.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Position Position `json:"position"`
	Ref      *NodeRef `json:"ref,omitempty"`
}

// Edge is a directed, labeled connection between two nodes of the same graph.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Label  string   `json:"label"`
	Kind   EdgeKind `json:"kind"`
}

// ScenarioData is the nodes+edges payload describing a flow at one point in
// time. It is owned by exactly one Scenario or ScenarioVersion; snapshots
// always work on a Clone, never on a shared reference.
type ScenarioData struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Scenario is the versioned, persisted entity.
type Scenario struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	IsActive       bool         `json:"is_active"`
	Owner          string       `json:"owner"`
	Data           ScenarioData `json:"data"`
	CurrentVersion int          `json:"current_version"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ScenarioVersion is an immutable snapshot of a scenario's graph, taken just
// before an update overwrote it. VersionNumber is the value CurrentVersion
// held while Data was live.
type ScenarioVersion struct {
	ScenarioID        string       `json:"scenario_id"`
	VersionNumber     int          `json:"version_number"`
	Data              ScenarioData `json:"data"`
	CreatedBy         string       `json:"created_by"`
	ChangeDescription string       `json:"change_description"`
	CreatedAt         time.Time    `json:"created_at"`
}

// UpdateFields names the mutable Scenario attributes. A nil slot leaves the
// stored value untouched.
type UpdateFields struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
	Data        *ScenarioData `json:"data,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (f UpdateFields) IsEmpty() bool {
	return f.Name == nil && f.Description == nil && f.IsActive == nil && f.Data == nil
}

// NewNode builds a node of the given kind. The id embeds the kind, the
// referenced identity (or the kind again for starter/exit) and a timestamp.
func NewNode(kind NodeKind, ref *NodeRef, pos Position) Node {
	seed := string(kind)
	if ref != nil {
		seed = ref.ID
	}
	return Node{
		ID:       fmt.Sprintf("%s-%s-%d", kind, seed, time.Now().UnixMilli()),
		Kind:     kind,
		Position: pos,
		Ref:      ref,
	}
}

// NewEdge connects source to target. The edge kind and default label follow
// the target's role: edges into a tool node are tool edges, everything else
// is a handoff. The id embeds both endpoints plus a timestamp so repeated
// pairs stay unique.
func NewEdge(source, target Node) Edge {
	kind := EdgeHandoff
	label := DefaultHandoffLabel
	if target.Kind == KindTool {
		kind = EdgeTool
		label = DefaultToolLabel
	}
	return Edge{
		ID:     fmt.Sprintf("edge-%s-%s-%d", source.ID, target.ID, time.Now().UnixMilli()),
		Source: source.ID,
		Target: target.ID,
		Label:  label,
		Kind:   kind,
	}
}

// NodeByID returns the node with the given id, or nil.
func (d *ScenarioData) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Mutating the copy never touches the original,
// which is what keeps version snapshots independent of the live graph.
func (d *ScenarioData) Clone() ScenarioData {
	out := ScenarioData{}
	if d.Nodes != nil {
		out.Nodes = make([]Node, len(d.Nodes))
		for i, n := range d.Nodes {
			if n.Ref != nil {
				ref := *n.Ref
				n.Ref = &ref
			}
			out.Nodes[i] = n
		}
	}
	if d.Edges != nil {
		out.Edges = make([]Edge, len(d.Edges))
		copy(out.Edges, d.Edges)
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = cloneValue(v)
		}
	}
	return out
}

// cloneValue deep-copies the JSON-shaped values metadata is built from.
// Anything else is treated as a plain value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
