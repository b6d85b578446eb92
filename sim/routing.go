package sim

import (
	"cmp"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Router draws the next station for a job leaving a station.
// Routing is Markovian: row i of the matrix is a categorical distribution
// over destinations, independent of the job's past path.
type Router struct {
	matrix *mat.Dense
	rows   []distuv.Categorical
}

// NewRouter builds a Router over a validated row-stochastic matrix.
// All rows share the SubsystemRouting stream.
func NewRouter(routing [][]float64, rng *PartitionedRNG) *Router {
	n := len(routing)
	m := mat.NewDense(n, n, nil)
	for i, row := range routing {
		m.SetRow(i, row)
	}
	r := &Router{matrix: m, rows: make([]distuv.Categorical, n)}
	for i := 0; i < n; i++ {
		r.rows[i] = rng.Categorical(SubsystemRouting, m.RawRowView(i))
	}
	return r
}

// Next draws the destination for a job leaving station from.
func (r *Router) Next(from int) int {
	return int(r.rows[from].Rand())
}

// Probability returns P(next = to | leaving from).
func (r *Router) Probability(from, to int) float64 {
	return r.matrix.At(from, to)
}

// Size returns the number of stations the router covers.
func (r *Router) Size() int {
	n, _ := r.matrix.Dims()
	return n
}

// RoutingAnalysis describes the structure of the routing graph
// (an edge i→j exists when P(i→j) > 0).
type RoutingAnalysis struct {
	Components  [][]int // strongly connected components, each sorted, ordered by smallest member
	Unreachable []int   // stations no job can ever reach from the initial station
}

// StronglyConnected reports whether every station can reach every other.
func (a RoutingAnalysis) StronglyConnected() bool {
	return len(a.Components) == 1
}

// AnalyzeRouting computes the strongly connected components of the routing
// graph and the stations unreachable from initial.
func AnalyzeRouting(routing [][]float64, initial int) RoutingAnalysis {
	g := simple.NewDirectedGraph()
	for i := range routing {
		g.AddNode(simple.Node(i))
	}
	for i, row := range routing {
		for j, p := range row {
			// simple graphs reject self edges; a self-loop never changes reachability
			if p > 0 && i != j {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}

	var a RoutingAnalysis
	for _, comp := range topo.TarjanSCC(g) {
		a.Components = append(a.Components, nodeIDs(comp))
	}
	slices.SortFunc(a.Components, func(x, y []int) int {
		return cmp.Compare(x[0], y[0])
	})

	from := g.Node(int64(initial))
	for i := range routing {
		if i == initial {
			continue
		}
		if !topo.PathExistsIn(g, from, g.Node(int64(i))) {
			a.Unreachable = append(a.Unreachable, i)
		}
	}
	return a
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	slices.Sort(ids)
	return ids
}
