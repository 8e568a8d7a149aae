package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/dominikbraun/graph/draw"

	"github.com/odvcencio/guardian/pkg/object"
)

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID       object.Hash       `json:"id"`
	Parents  []object.Hash     `json:"parents,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Merge    bool              `json:"merge,omitempty"`
}

type jsonEdge struct {
	Parent object.Hash `json:"parent"`
	Child  object.Hash `json:"child"`
}

// WriteJSON writes the graph in node-link form.
func (g *Graph) WriteJSON(w io.Writer) error {
	doc := jsonGraph{
		Nodes: make([]jsonNode, 0, len(g.order)),
		Edges: make([]jsonEdge, 0, len(g.edges)),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, jsonNode{ID: n.ID, Parents: n.Parents, Metadata: n.Metadata, Merge: n.Merge})
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, jsonEdge{Parent: e.Parent, Child: e.Child})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write graph json: %w", err)
	}
	return nil
}

// WriteDOT writes the graph in Graphviz DOT syntax, labelling each node with
// its short hash and message subject.
func (g *Graph) WriteDOT(w io.Writer) error {
	if err := draw.DOT(g.dag, w, draw.GraphAttribute("rankdir", "BT")); err != nil {
		return fmt.Errorf("write graph dot: %w", err)
	}
	return nil
}

// dotLabel renders a node label as the body of a DOT quoted string.
func dotLabel(n *Node) string {
	label := n.ID.Short()
	if s := subject(n.Metadata[object.MessageKey]); s != "" {
		label += " " + s
	}
	var b strings.Builder
	for _, r := range label {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case unicode.IsControl(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WriteText writes one line per node in topological order:
// "<hash> <parent-hashes...>  <subject>". Merge commits carry a "(merge)"
// marker before the subject.
func (g *Graph) WriteText(w io.Writer) error {
	order, err := g.TopoOrder()
	if err != nil {
		return fmt.Errorf("write graph text: %w", err)
	}

	var b strings.Builder
	for _, id := range order {
		n, _ := g.Node(id)
		parents := make([]string, 0, len(n.Parents))
		for _, p := range g.Parents(id) {
			parents = append(parents, p.Short())
		}
		sort.Strings(parents)
		b.WriteString(id.Short())
		if len(parents) > 0 {
			fmt.Fprintf(&b, " %s", strings.Join(parents, " "))
		}
		if n.Merge {
			b.WriteString(" (merge)")
		}
		if s := subject(n.Metadata[object.MessageKey]); s != "" {
			fmt.Fprintf(&b, "  %s", s)
		}
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write graph text: %w", err)
	}
	return nil
}

func subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}
