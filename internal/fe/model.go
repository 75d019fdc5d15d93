package fe

import (
	"fmt"
	"sort"
)

// Node is a model node with its global coordinates (mm).
type Node struct {
	Tag     int
	X, Y, Z float64
}

// Model is a program under construction that also remembers every node it
// defines, so callers can look up coordinates without asking the engine.
type Model struct {
	Program
	nodes map[int]Node
	order []int
	err   error
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{nodes: make(map[int]Node)}
}

// Node defines a node. A duplicate tag is recorded and reported by Err.
func (m *Model) Node(tag int, x, y, z float64) {
	if _, dup := m.nodes[tag]; dup {
		m.fail(fmt.Errorf("node %d defined twice", tag))
		return
	}
	m.nodes[tag] = Node{Tag: tag, X: x, Y: y, Z: z}
	m.order = append(m.order, tag)
	m.Exec("node", tag, x, y, z)
}

// Mass assigns nodal mass. Missing DOFs are padded with zeros up to six.
func (m *Model) Mass(tag int, dofs ...float64) {
	if _, ok := m.nodes[tag]; !ok {
		m.fail(fmt.Errorf("mass on undefined node %d", tag))
		return
	}
	args := []any{tag}
	for i := 0; i < 6; i++ {
		v := 0.0
		if i < len(dofs) {
			v = dofs[i]
		}
		args = append(args, v)
	}
	m.Exec("mass", args...)
}

// Coord returns the node with the given tag.
func (m *Model) Coord(tag int) (Node, bool) {
	n, ok := m.nodes[tag]
	return n, ok
}

// MustCoord returns the node with the given tag, recording an error when
// it is undefined.
func (m *Model) MustCoord(tag int) Node {
	n, ok := m.nodes[tag]
	if !ok {
		m.fail(fmt.Errorf("node %d is not defined", tag))
	}
	return n
}

// Nodes returns every node in definition order.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.order))
	for i, t := range m.order {
		out[i] = m.nodes[t]
	}
	return out
}

// Range returns the defined nodes with tags in [lo, hi], sorted by tag.
func (m *Model) Range(lo, hi int) []Node {
	var out []Node
	for _, n := range m.nodes {
		if n.Tag >= lo && n.Tag <= hi {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Err returns the first construction error.
func (m *Model) Err() error { return m.err }

func (m *Model) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}
