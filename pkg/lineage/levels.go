package lineage

import "github.com/flowlens/flowlens/pkg/flow"

// Levels is the result of layer assignment over the projected node graph.
type Levels struct {
	// Groups holds node IDs grouped by ascending level. Each group becomes
	// one layout column. Within a group, IDs keep catalog insertion order.
	// If Unresolved is non-empty, the final group is a catch-all bucket
	// holding exactly those nodes.
	Groups [][]string

	// ByNode maps each resolved node ID to its level. Unresolved nodes are
	// absent from the map.
	ByNode map[string]int

	// Unresolved lists nodes that never reached in-degree zero during
	// propagation - members of a dependency cycle, or nodes only reachable
	// through one. An unresolved node has no defined position relative to
	// integer levels, so it is reported here instead of being silently
	// sorted. IDs keep catalog insertion order.
	Unresolved []string
}

// HasCycle reports whether layer assignment left any node unresolved.
func (l Levels) HasCycle() bool { return len(l.Unresolved) > 0 }

// AssignLevels computes a layering of the flow's nodes from the inferred
// link set.
//
// The field-level links are first projected to node-level adjacency: an
// edge A->B exists for every link from a field of A to a field of B. Levels
// are then assigned by longest-path propagation from all roots (Kahn's
// algorithm):
//
//  1. Every node with projected in-degree zero starts at level 0
//  2. Processing the queue FIFO, each outgoing edge raises its target to
//     max(target level, current level + 1) and decrements its in-degree
//  3. A target reaching in-degree zero is enqueued
//
// On an acyclic projection this guarantees level(target) > level(source)
// for every link. Nodes with no inbound links at all always land at level
// 0, whether or not they have outbound links.
//
// If the projection contains a cycle, its members (and anything downstream
// of them) never reach in-degree zero. They are collected in
// [Levels.Unresolved] and appended as a final catch-all group so a
// partially-broken layering still renders; callers should surface the
// condition to the user.
func AssignLevels(f *flow.Flow, links []flow.Link) Levels {
	ids := f.NodeIDs()

	children := make(map[string][]string, len(ids))
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for _, l := range links {
		children[l.Source.NodeID] = append(children[l.Source.NodeID], l.Target.NodeID)
		inDegree[l.Target.NodeID]++
	}

	byNode := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			byNode[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range children[curr] {
			if lvl := byNode[curr] + 1; lvl > byNode[child] {
				byNode[child] = lvl
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	// A node touched by propagation but never dequeued has a tentative
	// level in byNode; it is still unresolved and must not keep it.
	var unresolved []string
	for _, id := range ids {
		if inDegree[id] > 0 {
			unresolved = append(unresolved, id)
			delete(byNode, id)
		}
	}

	maxLevel := -1
	for _, lvl := range byNode {
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	groups := make([][]string, maxLevel+1)
	for _, id := range ids {
		if lvl, ok := byNode[id]; ok {
			groups[lvl] = append(groups[lvl], id)
		}
	}
	if len(unresolved) > 0 {
		groups = append(groups, unresolved)
	}

	return Levels{Groups: groups, ByNode: byNode, Unresolved: unresolved}
}
