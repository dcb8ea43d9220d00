package scenario

// CanConnect reports whether an edge from sourceID to targetID would keep
// the graph well-formed. Role checks run first (no traversal): a starter
// node is never a target, an exit node is never a source, and a tool node
// is never a source. Edges into a tool node skip the cycle check entirely
// because tools are sinks. Everything else goes through WouldCreateLoop.
//
// The function is total: it never panics or errors, it only answers. The
// caller turns a false into user feedback.
func CanConnect(data *ScenarioData, sourceID, targetID string) bool {
	source := data.NodeByID(sourceID)
	target := data.NodeByID(targetID)
	if source == nil || target == nil {
		return false
	}
	if target.Kind == KindStarter {
		return false
	}
	if source.Kind == KindExit || source.Kind == KindTool {
		return false
	}
	if target.Kind == KindTool {
		return true
	}
	return !WouldCreateLoop(sourceID, targetID, data.Edges)
}

// WouldCreateLoop reports whether adding source -> target would close a
// cycle: it walks existing edges depth-first from target and answers true
// when source is reachable. The visited set bounds the walk to O(V+E) and
// keeps it terminating even on graphs that already contain cycles.
func WouldCreateLoop(source, target string, edges []Edge) bool {
	adj := make(map[string][]string, len(edges))
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	stack := []string{target}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == source {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, adj[id]...)
	}
	return false
}
