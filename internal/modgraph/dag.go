package modgraph

import (
	"fmt"
	"sort"
	"sync"
)

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// Graph is a thread-safe directed graph of module ids.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a module to the graph. Adding an existing id does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.addNodeLocked(id)
}

func (g *Graph) addNodeLocked(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	return n
}

// AddEdge records that dependentID imports dependencyID. Both nodes must exist.
func (g *Graph) AddEdge(dependencyID, dependentID string) error {
	if dependencyID == dependentID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", dependencyID, dependencyID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	dep, ok := g.nodes[dependencyID]
	if !ok {
		return fmt.Errorf("dependency node not found: %s", dependencyID)
	}
	dependent, ok := g.nodes[dependentID]
	if !ok {
		return fmt.Errorf("dependent node not found: %s", dependentID)
	}

	dependent.deps[dependencyID] = dep
	dep.dependents[dependentID] = dependent
	return nil
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// dependencies returns the sorted ids that id imports directly.
func (g *Graph) dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.deps), nil
}

// dependents returns the sorted ids that import id directly.
func (g *Graph) dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.dependents), nil
}

// Reachable returns every module id reachable from id through imports, sorted,
// excluding id itself.
func (g *Graph) Reachable(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	root, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	visited := map[string]struct{}{root.id: {}}
	stack := []*node{root}
	var out []string
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for depID, dep := range n.deps {
			if _, seen := visited[depID]; seen {
				continue
			}
			visited[depID] = struct{}{}
			out = append(out, depID)
			stack = append(stack, dep)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DetectCycles reports the first import cycle found, if any. Cycles do not stop
// planning; callers use this for diagnostics.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("import cycle detected involving module '%s'", n.id)
		}
		temporary[n.id] = true
		for _, id := range sortedIDs(n.dependents) {
			if err := visit(n.dependents[id]); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !permanent[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedIDs(m map[string]*node) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
