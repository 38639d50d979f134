// Package graphrank ranks players by the stationary distribution of a
// weighted loser -> winner graph.
package graphrank

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

// Default ranking parameters.
const (
	defaultDamping       = 0.85
	defaultTolerance     = 1e-9
	defaultMaxIterations = 1000
)

// Edge is one directed loser -> winner edge.
type Edge struct {
	From   model.PlayerID
	To     model.PlayerID
	Weight float64
}

// Score is one player's centrality.
type Score struct {
	ID    model.PlayerID
	Score float64
}

// Graph is the rank graph. Node ids follow first-seen player order.
type Graph struct {
	g     *simple.WeightedDirectedGraph
	ids   map[model.PlayerID]int64
	names []model.PlayerID
}

func newGraph() *Graph {
	return &Graph{
		g:   simple.NewWeightedDirectedGraph(0, 0),
		ids: make(map[model.PlayerID]int64),
	}
}

func (g *Graph) node(id model.PlayerID) graph.Node {
	if nid, ok := g.ids[id]; ok {
		return g.g.Node(nid)
	}
	n := simple.Node(len(g.names))
	g.g.AddNode(n)
	g.ids[id] = n.ID()
	g.names = append(g.names, id)
	return n
}

func (g *Graph) addEdge(from, to model.PlayerID, w float64, policy EdgePolicy) {
	u, v := g.node(from), g.node(to)
	if policy == Accumulate {
		if e := g.g.WeightedEdge(u.ID(), v.ID()); e != nil {
			w += e.Weight()
		}
	}
	g.g.SetWeightedEdge(g.g.NewWeightedEdge(u, v, w))
}

// Len returns the number of players in the graph.
func (g *Graph) Len() int { return len(g.names) }

// Edges lists every edge ordered by (from, to) node insertion order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for from := range g.names {
		succ := graph.NodesOf(g.g.From(int64(from)))
		sort.Slice(succ, func(i, j int) bool { return succ[i].ID() < succ[j].ID() })
		for _, to := range succ {
			w, _ := g.g.Weight(int64(from), to.ID())
			out = append(out, Edge{From: g.names[from], To: g.names[to.ID()], Weight: w})
		}
	}
	return out
}

// Weight returns the weight of the from -> to edge and whether it exists.
func (g *Graph) Weight(from, to model.PlayerID) (float64, bool) {
	u, ok := g.ids[from]
	if !ok {
		return 0, false
	}
	v, ok := g.ids[to]
	if !ok {
		return 0, false
	}
	e := g.g.WeightedEdge(u, v)
	if e == nil {
		return 0, false
	}
	return e.Weight(), true
}

// Ranker builds rank graphs and scores them.
type Ranker struct {
	damping       float64
	tolerance     float64
	maxIterations int
	policy        EdgePolicy
	partition     string
	logger        logger.Logger
}

// New creates a Ranker.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		damping:       defaultDamping,
		tolerance:     defaultTolerance,
		maxIterations: defaultMaxIterations,
		policy:        Accumulate,
		partition:     "default",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("graphrank")
	}
	return r
}

// Build adds four edges per match, one from each loser to each winner,
// weighted by the margin.
func (r *Ranker) Build(matches []model.Match) (*Graph, error) {
	g := newGraph()
	for i := range matches {
		m := &matches[i]
		out, err := m.Outcome()
		if err != nil {
			return nil, err
		}
		w := float64(m.Margin())
		for _, loser := range out.Losers.Members() {
			for _, winner := range out.Winners.Members() {
				g.addEdge(loser, winner, w, r.policy)
			}
		}
	}
	return g, nil
}

// Rank runs a damped power iteration until the L1 change drops under the
// tolerance or the iteration cap is hit. Players with no positive outgoing
// weight spread their score uniformly. Scores sum to one and are returned
// highest first; ties keep first-seen order.
func (r *Ranker) Rank(ctx context.Context, g *Graph) []Score {
	n := g.Len()
	if n == 0 {
		return nil
	}

	outWeight := make([]float64, n)
	for u := range outWeight {
		for _, v := range graph.NodesOf(g.g.From(int64(u))) {
			w, _ := g.g.Weight(int64(u), v.ID())
			outWeight[u] += w
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	next := make([]float64, n)
	base := (1 - r.damping) / float64(n)

	iterations := 0
	for iterations < r.maxIterations {
		iterations++
		var dangling float64
		for u, ow := range outWeight {
			if ow <= 0 {
				dangling += rank[u]
			}
		}
		for i := range next {
			next[i] = base + r.damping*dangling/float64(n)
		}
		for u, ow := range outWeight {
			if ow <= 0 {
				continue
			}
			for _, v := range graph.NodesOf(g.g.From(int64(u))) {
				w, _ := g.g.Weight(int64(u), v.ID())
				next[v.ID()] += r.damping * rank[u] * w / ow
			}
		}
		floats.Scale(1/floats.Sum(next), next)

		delta := floats.Distance(next, rank, 1)
		rank, next = next, rank
		if delta < r.tolerance {
			break
		}
	}

	metrics.RecordGraphIterations(r.partition, iterations)
	r.logger.Debug(ctx, "graph ranked",
		logger.String("partition", r.partition),
		logger.Int("players", n),
		logger.Int("iterations", iterations),
	)

	out := make([]Score, n)
	for i, id := range g.names {
		out[i] = Score{ID: id, Score: rank[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
