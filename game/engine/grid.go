package engine

import (
	"fmt"
	"sort"
)

// Grid owns the cell states of one puzzle and its domino topology
type Grid struct {
	width   int
	height  int
	plan    []string
	cells   [][]Symbol
	partner [][]Position
	filled  map[byte]bool
}

// PlaceResult lists the cells a placement changed
type PlaceResult struct {
	Applied CellChange  `json:"applied"`
	Partner *CellChange `json:"partner,omitempty"`
}

// Changed returns the applied cell and its partner, if any
func (r PlaceResult) Changed() []CellChange {
	changed := []CellChange{r.Applied}
	if r.Partner != nil {
		changed = append(changed, *r.Partner)
	}
	return changed
}

// NewGrid builds an empty grid for the plan. Domino membership is taken
// from the full identifier partition, never from neighbour probing order.
func NewGrid(width, height int, plan []string) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidPlan, width, height)
	}
	if len(plan) != height {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidPlan, height, len(plan))
	}

	members := make(map[byte][]Position)
	for y, row := range plan {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d must have %d characters, got %d", ErrInvalidPlan, y, width, len(row))
		}
		for x := 0; x < width; x++ {
			id := row[x]
			members[id] = append(members[id], Position{X: x, Y: y})
		}
	}

	partner := make([][]Position, height)
	for y := range partner {
		partner[y] = make([]Position, width)
	}

	ids := make([]int, 0, len(members))
	for id := range members {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	for _, id := range ids {
		cells := members[byte(id)]
		if len(cells) != 2 {
			return nil, fmt.Errorf("%w: domino '%c' has %d cells, expected 2", ErrInvalidPlan, id, len(cells))
		}
		a, b := cells[0], cells[1]
		if ManhattanDistance(a, b) != 1 {
			return nil, fmt.Errorf("%w: domino '%c' cells [%d, %d] and [%d, %d] are not adjacent",
				ErrInvalidPlan, id, a.X, a.Y, b.X, b.Y)
		}
		partner[a.Y][a.X] = b
		partner[b.Y][b.X] = a
	}

	cells := make([][]Symbol, height)
	for y := range cells {
		cells[y] = make([]Symbol, width)
		for x := range cells[y] {
			cells[y][x] = Empty
		}
	}

	rows := make([]string, height)
	copy(rows, plan)

	return &Grid{
		width:   width,
		height:  height,
		plan:    rows,
		cells:   cells,
		partner: partner,
		filled:  make(map[byte]bool),
	}, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether x,y lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Cell returns the symbol at x,y
func (g *Grid) Cell(x, y int) Symbol {
	return g.cells[y][x]
}

// DominoID returns the plan identifier of the domino covering x,y
func (g *Grid) DominoID(x, y int) byte {
	return g.plan[y][x]
}

// Partner returns the other cell of the domino covering x,y
func (g *Grid) Partner(x, y int) Position {
	return g.partner[y][x]
}

// IsFilled reports whether the domino covering x,y has been played
func (g *Grid) IsFilled(x, y int) bool {
	return g.filled[g.plan[y][x]]
}

// Place sets x,y to symbol and its partner to the opposite polarity,
// or neutral when symbol is neutral, then marks the domino as filled.
func (g *Grid) Place(x, y int, symbol Symbol) (PlaceResult, error) {
	if !symbol.Placeable() {
		return PlaceResult{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol.String())
	}
	if !g.InBounds(x, y) {
		return PlaceResult{}, fmt.Errorf("%w: [%d, %d]", ErrOutOfBounds, x, y)
	}
	if g.IsFilled(x, y) {
		return PlaceResult{}, fmt.Errorf("%w: [%d, %d]", ErrAlreadyFilled, x, y)
	}

	g.cells[y][x] = symbol
	result := PlaceResult{Applied: CellChange{X: x, Y: y, Symbol: symbol}}

	p := g.partner[y][x]
	other := symbol.Opposite()
	g.cells[p.Y][p.X] = other
	result.Partner = &CellChange{X: p.X, Y: p.Y, Symbol: other}

	g.filled[g.plan[y][x]] = true
	return result, nil
}

// IsComplete reports whether no cell is empty
func (g *Grid) IsComplete() bool {
	for _, row := range g.cells {
		for _, c := range row {
			if c == Empty {
				return false
			}
		}
	}
	return true
}

// Snapshot returns a copy of the cell matrix
func (g *Grid) Snapshot() [][]Symbol {
	out := make([][]Symbol, g.height)
	for y, row := range g.cells {
		out[y] = append([]Symbol(nil), row...)
	}
	return out
}

// Rows renders the cells one string per row
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	for y, row := range g.cells {
		b := make([]byte, len(row))
		for x, c := range row {
			b[x] = byte(c)
		}
		rows[y] = string(b)
	}
	return rows
}

// FilledIDs returns the played domino identifiers in sorted order
func (g *Grid) FilledIDs() []string {
	ids := make([]string, 0, len(g.filled))
	for id := range g.filled {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	return ids
}

// Restore loads cell rows produced by Rows. Filled dominoes are derived
// from the non-empty cells.
func (g *Grid) Restore(rows []string) error {
	if len(rows) != g.height {
		return fmt.Errorf("restore: expected %d rows, got %d", g.height, len(rows))
	}
	cells := make([][]Symbol, g.height)
	filled := make(map[byte]bool)
	for y, row := range rows {
		if len(row) != g.width {
			return fmt.Errorf("restore: row %d must have %d cells, got %d", y, g.width, len(row))
		}
		cells[y] = make([]Symbol, g.width)
		for x := 0; x < g.width; x++ {
			s := Symbol(row[x])
			if s != Empty && !s.Placeable() {
				return fmt.Errorf("restore: %w at [%d, %d]: %q", ErrInvalidSymbol, x, y, row[x])
			}
			cells[y][x] = s
			if s != Empty {
				filled[g.plan[y][x]] = true
			}
		}
	}
	g.cells = cells
	g.filled = filled
	return nil
}
