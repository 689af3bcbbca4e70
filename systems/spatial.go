// Package systems provides the sensory and decision systems for the simulation.
package systems

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// sweepCellSize is the grid cell edge used to bucket agents for ring sweeps.
const sweepCellSize = 4.0

// AgentGrid buckets agents by ground position so a ring sweep only visits
// agents near the noise. Cells hold indices into the slice passed to Reset.
type AgentGrid struct {
	cellSize float64
	half     float64
	cols     int
	cells    [][]int
	pos      []r3.Vec
}

// NewAgentGrid creates a grid covering [-worldHalf, worldHalf] on X and Z.
func NewAgentGrid(worldHalf, cellSize float64) *AgentGrid {
	if cellSize <= 0 {
		cellSize = sweepCellSize
	}
	cols := int(2*worldHalf/cellSize) + 1

	cells := make([][]int, cols*cols)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &AgentGrid{
		cellSize: cellSize,
		half:     worldHalf,
		cols:     cols,
		cells:    cells,
	}
}

// Reset clears the grid and inserts every agent.
func (g *AgentGrid) Reset(agents []AgentRef) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.pos = g.pos[:0]
	for i, a := range agents {
		g.pos = append(g.pos, a.Body.Pos)
		col, row := g.cell(a.Body.Pos)
		idx := row*g.cols + col
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// QueryInto appends the indices of agents within radius of center on the
// ground plane, in ascending order. Reuse dst across calls.
func (g *AgentGrid) QueryInto(dst []int, center r3.Vec, radius float64) []int {
	start := len(dst)
	minCol, minRow := g.cell(r3.Vec{X: center.X - radius, Z: center.Z - radius})
	maxCol, maxRow := g.cell(r3.Vec{X: center.X + radius, Z: center.Z + radius})
	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, i := range g.cells[row*g.cols+col] {
				d := groundDelta(center, g.pos[i])
				if r3.Dot(d, d) <= radiusSq {
					dst = append(dst, i)
				}
			}
		}
	}

	// Sweeps resolve agents in spawn order.
	slices.Sort(dst[start:])
	return dst
}

// cell returns the clamped column and row for a world position.
func (g *AgentGrid) cell(p r3.Vec) (col, row int) {
	col = int((p.X + g.half) / g.cellSize)
	row = int((p.Z + g.half) / g.cellSize)
	return min(max(col, 0), g.cols-1), min(max(row, 0), g.cols-1)
}
