package network

import (
	"math"

	"gonum.org/v1/gonum/graph/layout"
)

// Point is a 2-D node position
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout places nodes with the Eades spring embedder. The layout is a
// rendering aid only; coordinates are not stable across calls.
func Layout(s *Structure) map[string]Point {
	positions := make(map[string]Point, len(s.order))
	if len(s.order) == 0 {
		return positions
	}

	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   60,
		Theta:     0.2,
	}
	optimizer := layout.NewOptimizerR2(s.graph, eades.Update)
	for optimizer.Update() {
	}

	for _, name := range s.order {
		c := optimizer.Coord2(s.nodes[name].ID())
		x, y := c.X, c.Y
		if math.IsNaN(x) || math.IsInf(x, 0) {
			x = 0
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			y = 0
		}
		positions[name] = Point{X: x, Y: y}
	}
	return positions
}
