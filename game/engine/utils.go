package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountCells counts the cells holding s across the whole grid
func CountCells(cells [][]Symbol, s Symbol) int {
	count := 0
	for _, row := range cells {
		count += CountSymbols(row, s)
	}
	return count
}

// SnapshotLines renders the later-turn player input: decided cells show
// their symbol, undecided cells show their domino identifier.
func SnapshotLines(plan []string, cells [][]Symbol) []string {
	lines := make([]string, len(plan))
	for y, row := range plan {
		b := []byte(row)
		for x := range b {
			if y < len(cells) && x < len(cells[y]) && cells[y][x] != Empty {
				b[x] = byte(cells[y][x])
			}
		}
		lines[y] = string(b)
	}
	return lines
}

// DominoOrientations counts horizontal and vertical dominoes in a valid plan
func DominoOrientations(plan []string) (horizontal, vertical int) {
	for y, row := range plan {
		for x := 0; x < len(row); x++ {
			if x+1 < len(row) && row[x+1] == row[x] {
				horizontal++
			}
			if y+1 < len(plan) && x < len(plan[y+1]) && plan[y+1][x] == row[x] {
				vertical++
			}
		}
	}
	return horizontal, vertical
}
