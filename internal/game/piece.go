// internal/game/piece.go
//
// Piece geometry, movement, rotation and locking.
//
// A piece is a small multi-cell shape with one letter bound to each cell.
// The first shape offset is the rotation pivot. Movement primitives check
// legality against the grid; the active piece's cells are never written into
// the grid until Lock.

package game

import (
	"errors"

	"lettris/server/internal/rng"
)

// Shape is a named set of local cell offsets; Offsets[0] is the pivot.
type Shape struct {
	Name    string
	Offsets []Cell
}

// Shapes is the spawnable shape table. Weights skew toward the small shapes.
var Shapes = []Shape{
	{Name: "I2", Offsets: []Cell{{0, 0}, {1, 0}}},
	{Name: "I3", Offsets: []Cell{{0, 0}, {-1, 0}, {1, 0}}},
	{Name: "L3", Offsets: []Cell{{0, 0}, {1, 0}, {0, 1}}},
	{Name: "I4", Offsets: []Cell{{0, 0}, {-1, 0}, {1, 0}, {2, 0}}},
	{Name: "O4", Offsets: []Cell{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
	{Name: "T4", Offsets: []Cell{{0, 0}, {-1, 0}, {1, 0}, {0, 1}}},
}

var shapeWeights = []int{4, 5, 4, 2, 2, 2}

var shapeNames = func() []string {
	names := make([]string, len(Shapes))
	for i, s := range Shapes {
		names[i] = s.Name
	}
	return names
}()

// RandomShape picks a shape from the table using the weighted source.
func RandomShape(src rng.Source) Shape {
	name := src.WeightedChoice(shapeNames, shapeWeights)
	for _, s := range Shapes {
		if s.Name == name {
			return s
		}
	}
	return Shapes[0]
}

// Piece is a shape instance with per-cell letters and absolute positions.
// Invariant: len(Offsets) == len(Letters) == len(Cells).
type Piece struct {
	Offsets []Cell // local shape, Offsets[0] is the rotation pivot
	Letters []rune
	Cells   []Cell // absolute board cells, parallel to Offsets
}

// NewPiece places a shape so its pivot lands on origin.
func NewPiece(offsets []Cell, letters []rune, origin Cell) *Piece {
	p := &Piece{
		Offsets: append([]Cell(nil), offsets...),
		Letters: append([]rune(nil), letters...),
		Cells:   make([]Cell, len(offsets)),
	}
	for i, o := range offsets {
		p.Cells[i] = Cell{X: origin.X + o.X, Y: origin.Y + o.Y}
	}
	return p
}

// Clone returns a deep copy.
func (p *Piece) Clone() *Piece {
	return &Piece{
		Offsets: append([]Cell(nil), p.Offsets...),
		Letters: append([]rune(nil), p.Letters...),
		Cells:   append([]Cell(nil), p.Cells...),
	}
}

// legal reports whether every cell is in bounds and unoccupied.
func legal(g *Grid, cells []Cell) bool {
	for _, c := range cells {
		if !g.In(c.X, c.Y) || g.Occupied(c.X, c.Y) {
			return false
		}
	}
	return true
}

// Legal reports whether the piece's current position is legal.
func (p *Piece) Legal(g *Grid) bool { return legal(g, p.Cells) }

// translated returns the piece's cells shifted by (dx, dy).
func (p *Piece) translated(dx, dy int) []Cell {
	out := make([]Cell, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = Cell{X: c.X + dx, Y: c.Y + dy}
	}
	return out
}

// CanMove reports whether a (dx, dy) translation would be legal.
func (p *Piece) CanMove(g *Grid, dx, dy int) bool {
	return legal(g, p.translated(dx, dy))
}

// Move applies a (dx, dy) translation if legal; reports whether it moved.
func (p *Piece) Move(g *Grid, dx, dy int) bool {
	cells := p.translated(dx, dy)
	if !legal(g, cells) {
		return false
	}
	p.Cells = cells
	return true
}

// rotation kick candidates, tried in order. The order decides which kick
// wins when several would fit; do not reorder.
var kicks = []Cell{{0, 0}, {1, 0}, {-1, 0}, {0, -1}}

// TryRotate rotates the piece 90° about its pivot cell, testing each kick
// candidate in fixed order. On failure the piece is unchanged.
func (p *Piece) TryRotate(g *Grid) bool {
	pivot := p.Cells[0]
	rotated := make([]Cell, len(p.Cells))
	for i, c := range p.Cells {
		dx, dy := c.X-pivot.X, c.Y-pivot.Y
		rotated[i] = Cell{X: pivot.X - dy, Y: pivot.Y + dx}
	}
	for _, k := range kicks {
		cells := make([]Cell, len(rotated))
		for i, c := range rotated {
			cells[i] = Cell{X: c.X + k.X, Y: c.Y + k.Y}
		}
		if legal(g, cells) {
			p.Cells = cells
			// keep local offsets in sync with the new orientation
			np := cells[0]
			for i, c := range cells {
				p.Offsets[i] = Cell{X: c.X - np.X, Y: c.Y - np.Y}
			}
			return true
		}
	}
	return false
}

// HardDrop descends one cell at a time until blocked and returns the number
// of cells dropped. Zero means the piece was already resting.
func (p *Piece) HardDrop(g *Grid) int {
	n := 0
	for p.Move(g, 0, 1) {
		n++
	}
	return n
}

var errIllegalLock = errors.New("game: lock of piece in illegal position")

// Lock writes the piece's letters into the grid. Calling it with a piece in
// an illegal position is a programming error; it is refused rather than
// corrupting the board.
func (p *Piece) Lock(g *Grid) error {
	if !p.Legal(g) {
		return errIllegalLock
	}
	for i, c := range p.Cells {
		g.set(c.X, c.Y, p.Letters[i])
	}
	return nil
}

// MinCorner returns the minimum x and y over the piece's absolute cells.
// Snapshots store this corner instead of raw cell positions.
func (p *Piece) MinCorner() Cell {
	min := p.Cells[0]
	for _, c := range p.Cells[1:] {
		if c.X < min.X {
			min.X = c.X
		}
		if c.Y < min.Y {
			min.Y = c.Y
		}
	}
	return min
}

// CornerOffsets returns the piece's cells relative to its min corner,
// preserving order (element 0 stays the pivot).
func (p *Piece) CornerOffsets() []Cell {
	min := p.MinCorner()
	out := make([]Cell, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = Cell{X: c.X - min.X, Y: c.Y - min.Y}
	}
	return out
}
