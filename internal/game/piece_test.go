package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i3(letters string, origin Cell) *Piece {
	return NewPiece([]Cell{{0, 0}, {-1, 0}, {1, 0}}, []rune(letters), origin)
}

func TestNewPiecePlacesPivotAtOrigin(t *testing.T) {
	p := i3("cat", Cell{X: 5, Y: 3})
	assert.Equal(t, Cell{X: 5, Y: 3}, p.Cells[0])
	assert.Equal(t, Cell{X: 4, Y: 3}, p.Cells[1])
	assert.Equal(t, Cell{X: 6, Y: 3}, p.Cells[2])
}

func TestPieceMoveRespectsWallsAndLetters(t *testing.T) {
	g := NewGrid(5, 5)
	p := i3("cat", Cell{X: 2, Y: 0})

	assert.True(t, p.Move(g, 0, 1))
	assert.Equal(t, Cell{X: 2, Y: 1}, p.Cells[0])

	// left edge blocks at x=1 (leftmost cell would leave the board)
	assert.True(t, p.Move(g, -1, 0))
	assert.False(t, p.Move(g, -1, 0))
	assert.Equal(t, Cell{X: 1, Y: 1}, p.Cells[0])

	// a locked letter blocks too
	g.set(3, 1, 'x')
	assert.False(t, p.Move(g, 1, 0))
}

func TestPieceRotateAboutPivot(t *testing.T) {
	g := NewGrid(7, 7)
	p := i3("cat", Cell{X: 3, Y: 3})
	require.True(t, p.TryRotate(g))
	// horizontal I3 becomes vertical, pivot fixed
	assert.Equal(t, Cell{X: 3, Y: 3}, p.Cells[0])
	assert.Equal(t, Cell{X: 3, Y: 2}, p.Cells[1])
	assert.Equal(t, Cell{X: 3, Y: 4}, p.Cells[2])
	// offsets track the new orientation
	assert.Equal(t, Cell{X: 0, Y: -1}, p.Offsets[1])
}

func TestPieceRotateKickOrder(t *testing.T) {
	// vertical I3 against the top edge: in-place rotation is legal, so the
	// (0,0) kick must win even though other kicks would also fit.
	g := NewGrid(7, 7)
	p := NewPiece([]Cell{{0, 0}, {0, -1}, {0, 1}}, []rune("cat"), Cell{X: 3, Y: 3})
	require.True(t, p.TryRotate(g))
	assert.Equal(t, Cell{X: 3, Y: 3}, p.Cells[0])

	// pushed against the left wall, in-place rotation of a vertical I3 to
	// horizontal would stick out at x=-1; the (+1,0) kick resolves it.
	q := NewPiece([]Cell{{0, 0}, {0, -1}, {0, 1}}, []rune("cat"), Cell{X: 0, Y: 3})
	require.True(t, q.TryRotate(g))
	assert.Equal(t, Cell{X: 1, Y: 3}, q.Cells[0])
}

func TestPieceRotateFailureLeavesPieceUnchanged(t *testing.T) {
	// box the piece in so no kick candidate lands
	g := NewGrid(3, 5)
	for y := 0; y < 5; y++ {
		g.set(0, y, 'x')
	}
	g.set(1, 2, 'x')
	g.set(1, 4, 'x')
	g.set(2, 4, 'x')
	p := NewPiece([]Cell{{0, 0}, {1, 0}}, []rune("ab"), Cell{X: 1, Y: 3})
	before := append([]Cell(nil), p.Cells...)

	assert.False(t, p.TryRotate(g))
	assert.Equal(t, before, p.Cells)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}}, p.Offsets)
}

func TestPieceHardDropCountsCells(t *testing.T) {
	g := NewGrid(5, 10)
	p := i3("cat", Cell{X: 2, Y: 1})
	assert.Equal(t, 8, p.HardDrop(g))
	assert.Equal(t, Cell{X: 2, Y: 9}, p.Cells[0])
	assert.Equal(t, 0, p.HardDrop(g))
}

func TestPieceLockWritesLetters(t *testing.T) {
	g := NewGrid(5, 5)
	p := i3("cat", Cell{X: 2, Y: 4})
	require.NoError(t, p.Lock(g))
	assert.Equal(t, ".cat.", g.RowString(4, EmptySentinel))
}

func TestPieceLockRefusesIllegalPosition(t *testing.T) {
	g := NewGrid(5, 5)
	g.set(2, 4, 'x')
	p := i3("cat", Cell{X: 2, Y: 4})
	assert.Error(t, p.Lock(g))
	// board untouched
	assert.Equal(t, 1, g.Count())
}

func TestPieceCornerRoundTrip(t *testing.T) {
	p := NewPiece([]Cell{{0, 0}, {-1, 0}, {1, 0}, {0, 1}}, []rune("cats"), Cell{X: 4, Y: 6})
	corner := p.MinCorner()
	assert.Equal(t, Cell{X: 3, Y: 6}, corner)
	offs := p.CornerOffsets()
	require.Len(t, offs, 4)
	// element 0 stays the pivot
	assert.Equal(t, Cell{X: 1, Y: 0}, offs[0])
	for i, o := range offs {
		assert.Equal(t, p.Cells[i], Cell{X: corner.X + o.X, Y: corner.Y + o.Y})
	}
}
