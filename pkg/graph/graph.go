// Package graph assembles the commit ancestry graph from validated objects.
package graph

import (
	"fmt"
	"slices"

	dgraph "github.com/dominikbraun/graph"

	"github.com/odvcencio/guardian/pkg/object"
)

// Node is one commit in the graph.
type Node struct {
	ID object.Hash
	// Metadata is the commit's header mapping, message included.
	Metadata map[string]string
	// Parents lists every parent named by the commit, in header order,
	// whether or not it is present in the graph.
	Parents []object.Hash
	// Merge is set when the commit names more than one parent.
	Merge bool
}

// Edge points from a parent commit to its child.
type Edge struct {
	Parent object.Hash
	Child  object.Hash
}

// Graph is a directed acyclic graph of commits built from one batch of
// objects. It owns its nodes and edges and keeps no link to the object store.
type Graph struct {
	dag     dgraph.Graph[object.Hash, *Node]
	order   []object.Hash
	index   map[object.Hash]int
	edges   []Edge
	skipped []Skipped
}

// Skipped records a commit object that could not be parsed and was left out.
type Skipped struct {
	ID  object.Hash
	Err error
}

func nodeHash(n *Node) object.Hash { return n.ID }

func newGraph() *Graph {
	return &Graph{
		dag:   dgraph.New(nodeHash, dgraph.Directed(), dgraph.Acyclic()),
		index: make(map[object.Hash]int),
	}
}

// Build folds objects into a commit graph. Non-commit objects are ignored and
// commits whose body fails to parse are omitted (see Skipped). An edge
// parent->child is added only when the parent is itself a node of this
// batch; edges do not depend on the order objects are supplied in. A commit
// supplied twice keeps the metadata of its last occurrence.
func Build(objects []object.Object) *Graph {
	g := newGraph()

	nodes := make(map[object.Hash]*Node)
	for i := range objects {
		obj := &objects[i]
		if obj.Type != object.TypeCommit {
			continue
		}
		rec, err := object.ParseCommit(obj)
		if err != nil {
			g.skipped = append(g.skipped, Skipped{ID: obj.ID, Err: err})
			continue
		}
		if _, ok := nodes[rec.ID]; !ok {
			g.index[rec.ID] = len(g.order)
			g.order = append(g.order, rec.ID)
		}
		nodes[rec.ID] = &Node{
			ID:       rec.ID,
			Metadata: rec.Metadata,
			Parents:  rec.Parents,
			Merge:    rec.IsMerge(),
		}
	}

	for _, id := range g.order {
		n := nodes[id]
		// Vertices are unique by construction; the store cannot fail.
		_ = g.dag.AddVertex(n, dgraph.VertexAttribute("label", dotLabel(n)))
	}

	for _, id := range g.order {
		for _, parent := range nodes[id].Parents {
			g.addEdge(parent, id)
		}
	}

	return g
}

func (g *Graph) addEdge(parent, child object.Hash) {
	if parent == child || !g.Has(parent) {
		return
	}
	// A parent listed twice yields ErrEdgeAlreadyExists and keeps one edge.
	if err := g.dag.AddEdge(parent, child); err != nil {
		return
	}
	g.edges = append(g.edges, Edge{Parent: parent, Child: child})
}

// NumNodes returns the number of commits in the graph.
func (g *Graph) NumNodes() int { return len(g.order) }

// NumEdges returns the number of parent->child edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Node returns the node for id.
func (g *Graph) Node(id object.Hash) (*Node, bool) {
	n, err := g.dag.Vertex(id)
	if err != nil {
		return nil, false
	}
	return n, true
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id object.Hash) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns the nodes in the order their commits were first supplied.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		n, _ := g.Node(id)
		out = append(out, n)
	}
	return out
}

// Edges returns the edges, grouped by child in supply order and by parent in
// header order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// HasEdge reports whether the edge parent->child exists.
func (g *Graph) HasEdge(parent, child object.Hash) bool {
	_, err := g.dag.Edge(parent, child)
	return err == nil
}

// Parents returns the in-graph parents of id, in header order.
func (g *Graph) Parents(id object.Hash) []object.Hash {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var out []object.Hash
	for _, p := range n.Parents {
		if g.HasEdge(p, id) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Children returns the in-graph children of id in supply order.
func (g *Graph) Children(id object.Hash) []object.Hash {
	adjacency, err := g.dag.AdjacencyMap()
	if err != nil {
		return nil
	}
	return g.sorted(adjacency[id])
}

// Skipped returns the commits omitted because they failed to parse.
func (g *Graph) Skipped() []Skipped {
	return append([]Skipped(nil), g.skipped...)
}

// Roots returns nodes with no in-graph parent. A commit whose parents all lie
// outside the batch is a root here.
func (g *Graph) Roots() []object.Hash {
	predecessors, err := g.dag.PredecessorMap()
	if err != nil {
		return nil
	}
	return g.withoutNeighbours(predecessors)
}

// Tips returns nodes with no in-graph children.
func (g *Graph) Tips() []object.Hash {
	adjacency, err := g.dag.AdjacencyMap()
	if err != nil {
		return nil
	}
	return g.withoutNeighbours(adjacency)
}

func (g *Graph) withoutNeighbours(m map[object.Hash]map[object.Hash]dgraph.Edge[object.Hash]) []object.Hash {
	var out []object.Hash
	for _, id := range g.order {
		if len(m[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// sorted returns the keys of set in supply order.
func (g *Graph) sorted(set map[object.Hash]dgraph.Edge[object.Hash]) []object.Hash {
	out := make([]object.Hash, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b object.Hash) int { return g.index[a] - g.index[b] })
	return out
}

// TopoOrder returns every node with parents before children. Ties keep the
// order commits were supplied in. Identifiers that reference each other form
// a cycle and fail the sort.
func (g *Graph) TopoOrder() ([]object.Hash, error) {
	order, err := dgraph.StableTopologicalSort(g.dag, func(a, b object.Hash) bool {
		return g.index[a] < g.index[b]
	})
	if err != nil {
		return nil, fmt.Errorf("topological order: %w", err)
	}
	return order, nil
}

// Lineage follows the first in-graph parent from tip back to a root and
// returns the identifiers ordered root to tip.
func (g *Graph) Lineage(tip object.Hash) ([]object.Hash, error) {
	if !g.Has(tip) {
		return nil, fmt.Errorf("lineage: commit %s not in graph", tip)
	}

	var rev []object.Hash
	seen := make(map[object.Hash]struct{})
	for id := tip; ; {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("lineage: cycle at %s", id)
		}
		seen[id] = struct{}{}
		rev = append(rev, id)

		next, ok := g.firstParent(id)
		if !ok {
			break
		}
		id = next
	}

	slices.Reverse(rev)
	return rev, nil
}

func (g *Graph) firstParent(id object.Hash) (object.Hash, bool) {
	n, _ := g.Node(id)
	for _, p := range n.Parents {
		if g.Has(p) && p != id {
			return p, true
		}
	}
	return "", false
}
