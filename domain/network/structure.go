// Package network builds the per-generation dependency network of an EDNEL run:
// one node per variable and one edge variable -> parent for every parent that
// appears in the variable's conditional probability table.
package network

import (
	"fmt"
	"sort"

	"ednelkit/domain/cpt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/simple"
)

// EdgeKind tells how a dependency was established
type EdgeKind int

const (
	Probabilistic EdgeKind = iota
	DeterministicEdge
)

func (k EdgeKind) String() string {
	if k == DeterministicEdge {
		return "deterministic"
	}
	return "probabilistic"
}

// Node is a variable of the dependency network
type Node struct {
	id   int64
	Name string
}

func (n Node) ID() int64 { return n.id }

// DOTID names the node in Graphviz output
func (n Node) DOTID() string { return n.Name }

// Edge points from a variable to one of its parents
type Edge struct {
	F, T Node
	Kind EdgeKind
}

func (e Edge) From() graph.Node         { return e.F }
func (e Edge) To() graph.Node           { return e.T }
func (e Edge) ReversedEdge() graph.Edge { return Edge{F: e.T, T: e.F, Kind: e.Kind} }

// Attributes colours edges in DOT output: grey probabilistic, black deterministic
func (e Edge) Attributes() []encoding.Attribute {
	colour := "grey"
	if e.Kind == DeterministicEdge {
		colour = "black"
	}
	return []encoding.Attribute{
		{Key: "color", Value: colour},
		{Key: "type", Value: e.Kind.String()},
	}
}

// EdgeInfo is a name-level view of an edge
type EdgeInfo struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"-"`
}

// RawVariable is one variable's CPT as read from the generations file, rows in file order
type RawVariable struct {
	Name string
	Rows []cpt.RowProbability
}

// RawGeneration is one generation's undecoded CPTs, variables in file order
type RawGeneration struct {
	ID        string
	Variables []RawVariable
}

// Deterministic is the fixed dependency graph between hyperparameter variables
type Deterministic struct {
	Variables []string
	Parents   map[string][]string
}

// Structure is the immutable dependency network of one generation
type Structure struct {
	Generation string

	graph     *simple.DirectedGraph
	nodes     map[string]Node
	order     []string
	variables []string
	tables    map[string]*cpt.Table
}

func newStructure(generation string) *Structure {
	return &Structure{
		Generation: generation,
		graph:      simple.NewDirectedGraph(),
		nodes:      make(map[string]Node),
		tables:     make(map[string]*cpt.Table),
	}
}

func (s *Structure) node(name string) Node {
	if n, ok := s.nodes[name]; ok {
		return n
	}
	n := Node{id: int64(len(s.order)), Name: name}
	s.graph.AddNode(n)
	s.nodes[name] = n
	s.order = append(s.order, name)
	return n
}

func (s *Structure) setEdge(from, to string, kind EdgeKind) {
	if from == to {
		return
	}
	s.graph.SetEdge(Edge{F: s.node(from), T: s.node(to), Kind: kind})
}

// Build builds the structure of one generation from its decoded tables.
// A variable listed among its own parents gets no self edge; the column stays in its table.
func Build(generation string, tables []*cpt.Table) *Structure {
	return BuildWithBase(generation, tables, nil)
}

// BuildWithBase seeds the graph with the deterministic dependencies before adding
// the probabilistic ones. An edge present in both is reported as probabilistic.
func BuildWithBase(generation string, tables []*cpt.Table, base *Deterministic) *Structure {
	s := newStructure(generation)

	if base != nil {
		for _, v := range base.Variables {
			s.node(v)
			for _, p := range base.Parents[v] {
				s.setEdge(v, p, DeterministicEdge)
			}
		}
	}

	for _, t := range tables {
		s.node(t.Variable)
	}
	for _, t := range tables {
		s.variables = append(s.variables, t.Variable)
		s.tables[t.Variable] = t
		for _, p := range t.Parents() {
			s.setEdge(t.Variable, p, Probabilistic)
		}
	}

	return s
}

// DecodeGeneration decodes every CPT of a raw generation
func DecodeGeneration(raw RawGeneration) ([]*cpt.Table, error) {
	tables := make([]*cpt.Table, 0, len(raw.Variables))
	for _, v := range raw.Variables {
		t, err := cpt.DecodeTable(v.Name, v.Rows)
		if err != nil {
			return nil, fmt.Errorf("generation %s: %w", raw.ID, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// BuildAll decodes and builds every generation in file order
func BuildAll(raw []RawGeneration, base *Deterministic) ([]*Structure, error) {
	structures := make([]*Structure, 0, len(raw))
	for _, g := range raw {
		tables, err := DecodeGeneration(g)
		if err != nil {
			return nil, err
		}
		structures = append(structures, BuildWithBase(g.ID, tables, base))
	}
	return structures, nil
}

// Graph exposes the underlying directed graph
func (s *Structure) Graph() graph.Directed {
	return s.graph
}

// Nodes returns every node name in insertion order
func (s *Structure) Nodes() []string {
	return append([]string(nil), s.order...)
}

// Variables returns the variables that own a CPT in this generation
func (s *Structure) Variables() []string {
	return append([]string(nil), s.variables...)
}

// Table returns the CPT of a variable
func (s *Structure) Table(variable string) (*cpt.Table, bool) {
	t, ok := s.tables[variable]
	return t, ok
}

// HasEdge reports whether from depends on to
func (s *Structure) HasEdge(from, to string) bool {
	f, ok := s.nodes[from]
	if !ok {
		return false
	}
	t, ok := s.nodes[to]
	if !ok {
		return false
	}
	return s.graph.HasEdgeFromTo(f.ID(), t.ID())
}

// Parents returns the graph parents of a variable in insertion order
func (s *Structure) Parents(variable string) []string {
	n, ok := s.nodes[variable]
	if !ok {
		return nil
	}
	ids := graph.NodesOf(s.graph.From(n.ID()))
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID() < ids[j].ID() })

	parents := make([]string, len(ids))
	for i, p := range ids {
		parents[i] = p.(Node).Name
	}
	return parents
}

// Edges lists every edge ordered by source then target insertion order
func (s *Structure) Edges() []EdgeInfo {
	var edges []EdgeInfo
	for _, name := range s.order {
		from := s.nodes[name]
		for _, to := range s.Parents(name) {
			e := s.graph.Edge(from.ID(), s.nodes[to].ID()).(Edge)
			edges = append(edges, EdgeInfo{From: name, To: to, Kind: e.Kind})
		}
	}
	return edges
}
