package engine

import (
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

const traceGraph = "search"

type traceNode struct {
	parent int
	depth  int
	label  string
	value  float64
}

// Tracer records the nodes a search explores down to MaxDepth plies below
// the root and renders them as a Graphviz digraph. A nil tracer records
// nothing.
type Tracer struct {
	MaxDepth int
	nodes    []traceNode
}

// NewTracer creates a tracer recording maxDepth plies.
func NewTracer(maxDepth int) *Tracer {
	return &Tracer{MaxDepth: maxDepth}
}

// Reset drops the previous tree and records a new root. It returns the
// root's id, or -1 for a nil tracer.
func (t *Tracer) Reset(label string) int {
	if t == nil {
		return -1
	}
	t.nodes = append(t.nodes[:0], traceNode{parent: -1, label: label})
	return 0
}

// Enter records a child of parent and returns its id. It returns -1 when
// the parent is not recorded or the child would be too deep.
func (t *Tracer) Enter(parent int, label string) int {
	if t == nil || parent < 0 || parent >= len(t.nodes) {
		return -1
	}
	depth := t.nodes[parent].depth + 1
	if depth > t.MaxDepth {
		return -1
	}
	t.nodes = append(t.nodes, traceNode{parent: parent, depth: depth, label: label})
	return len(t.nodes) - 1
}

// Leave sets the value of a recorded node.
func (t *Tracer) Leave(id int, value float64) {
	if t == nil || id < 0 || id >= len(t.nodes) {
		return
	}
	t.nodes[id].value = value
}

// Len returns the number of recorded nodes.
func (t *Tracer) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// DOT renders the recorded tree.
func (t *Tracer) DOT() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(traceGraph); err != nil {
		return "", errors.Wrap(err, "naming graph")
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.Wrap(err, "directing graph")
	}
	if t == nil {
		return g.String(), nil
	}

	for i, n := range t.nodes {
		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprintf("%s\n%s", n.label, formatScore(n.value))),
		}
		if err := g.AddNode(traceGraph, nodeID(i), attrs); err != nil {
			return "", errors.Wrapf(err, "adding node %d", i)
		}
		if n.parent >= 0 {
			if err := g.AddEdge(nodeID(n.parent), nodeID(i), true, nil); err != nil {
				return "", errors.Wrapf(err, "adding edge %d->%d", n.parent, i)
			}
		}
	}
	return g.String(), nil
}

// WriteDOT writes the rendered tree to w.
func (t *Tracer) WriteDOT(w io.Writer) error {
	s, err := t.DOT()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func nodeID(i int) string {
	return "n" + strconv.Itoa(i)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
