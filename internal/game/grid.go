// internal/game/grid.go
//
// Fixed-size letter grid. Pure data: bounds and occupancy queries plus the
// column-collapse and row-shift mutations the resolver and quiz penalty use.
// Cell origin is the top-left; y grows downward. A zero rune means empty.

package game

// Cell is a board coordinate (or a local shape offset).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a cols × rows letter board. Dimensions never change after
// construction.
type Grid struct {
	cols, rows int
	cells      [][]rune // [row][col]; 0 = empty
}

// NewGrid returns an empty cols × rows grid.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for y := range g.cells {
		g.cells[y] = make([]rune, cols)
	}
	return g
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// In reports whether (x, y) is inside the board.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// At returns the letter at (x, y), or 0 for empty or out-of-bounds cells.
func (g *Grid) At(x, y int) rune {
	if !g.In(x, y) {
		return 0
	}
	return g.cells[y][x]
}

// Occupied reports whether (x, y) holds a letter.
func (g *Grid) Occupied(x, y int) bool {
	return g.In(x, y) && g.cells[y][x] != 0
}

func (g *Grid) set(x, y int, r rune) {
	if g.In(x, y) {
		g.cells[y][x] = r
	}
}

func (g *Grid) clear(x, y int) {
	if g.In(x, y) {
		g.cells[y][x] = 0
	}
}

// Collapse compacts every column downward, preserving the relative order of
// its letters and leaving the vacated cells empty at the top.
func (g *Grid) Collapse() {
	for x := 0; x < g.cols; x++ {
		write := g.rows - 1
		for y := g.rows - 1; y >= 0; y-- {
			if g.cells[y][x] == 0 {
				continue
			}
			if y != write {
				g.cells[write][x] = g.cells[y][x]
				g.cells[y][x] = 0
			}
			write--
		}
	}
}

// ShiftUp discards the top row, moves every remaining row up by one, and
// installs bottom as the new last row. len(bottom) must equal Cols.
func (g *Grid) ShiftUp(bottom []rune) {
	for y := 0; y < g.rows-1; y++ {
		copy(g.cells[y], g.cells[y+1])
	}
	copy(g.cells[g.rows-1], bottom)
}

// RowString renders row y using sentinel for empty cells.
func (g *Grid) RowString(y int, sentinel rune) string {
	out := make([]rune, g.cols)
	for x := 0; x < g.cols; x++ {
		if r := g.cells[y][x]; r != 0 {
			out[x] = r
		} else {
			out[x] = sentinel
		}
	}
	return string(out)
}

// SetRow installs row y from a sentinel-encoded string. Rows of the wrong
// length are ignored.
func (g *Grid) SetRow(y int, row string, sentinel rune) {
	rs := []rune(row)
	if y < 0 || y >= g.rows || len(rs) != g.cols {
		return
	}
	for x, r := range rs {
		if r == sentinel {
			g.cells[y][x] = 0
		} else {
			g.cells[y][x] = r
		}
	}
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.cells[y][x] != 0 {
				n++
			}
		}
	}
	return n
}
