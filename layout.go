package scenario

import "math"

// Grid cell geometry for auto-layout, in canvas pixels.
const (
	layoutNodeWidth  = 180.0
	layoutNodeHeight = 80.0
	layoutGapX       = 250.0
	layoutGapY       = 150.0
)

// AutoLayout places nodes on a near-square grid: ceil(sqrt(n)) per row,
// filled left to right in input order. It returns a new slice and never
// reorders nodes, so running it twice on the same input yields identical
// positions.
func AutoLayout(nodes []Node) []Node {
	if len(nodes) == 0 {
		return []Node{}
	}
	perRow := int(math.Ceil(math.Sqrt(float64(len(nodes)))))

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		col := i % perRow
		row := i / perRow
		n.Position = Position{
			X: float64(col) * (layoutNodeWidth + layoutGapX),
			Y: float64(row) * (layoutNodeHeight + layoutGapY),
		}
		out[i] = n
	}
	return out
}
