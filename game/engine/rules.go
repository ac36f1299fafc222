package engine

import (
	"fmt"
	"strings"
)

// ViolationKind names the rule a violation breaks
type ViolationKind string

const (
	ColumnTopExceeded    ViolationKind = "column_top_exceeded"
	ColumnBottomExceeded ViolationKind = "column_bottom_exceeded"
	RowLeftExceeded      ViolationKind = "row_left_exceeded"
	RowRightExceeded     ViolationKind = "row_right_exceeded"
	AdjacentSamePolarity ViolationKind = "adjacent_same_polarity"
)

// Violation is one broken rule, localized to a column, a row or a cell pair.
// Column and Row are -1 when they do not apply.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Column  int           `json:"column"`
	Row     int           `json:"row"`
	X1      int           `json:"x1"`
	Y1      int           `json:"y1"`
	X2      int           `json:"x2"`
	Y2      int           `json:"y2"`
	Message string        `json:"message"`
}

func columnViolation(kind ViolationKind, column int, s Symbol) Violation {
	return Violation{
		Kind:    kind,
		Column:  column,
		Row:     -1,
		Message: fmt.Sprintf("Too many '%s' in column %d", s, column),
	}
}

func rowViolation(kind ViolationKind, row int, s Symbol) Violation {
	return Violation{
		Kind:    kind,
		Column:  -1,
		Row:     row,
		Message: fmt.Sprintf("Too many '%s' in row %d", s, row),
	}
}

func polesViolation(x1, y1, x2, y2 int) Violation {
	return Violation{
		Kind:    AdjacentSamePolarity,
		Column:  -1,
		Row:     -1,
		X1:      x1,
		Y1:      y1,
		X2:      x2,
		Y2:      y2,
		Message: fmt.Sprintf("Neighboring cells with same polarity at [%d, %d] [%d, %d]", x1, y1, x2, y2),
	}
}

// Evaluate checks the whole grid against the markers and returns every
// violation found, columns first, then rows, then horizontal and vertical
// neighbours in row-major order. It keeps no state between calls.
func Evaluate(cells [][]Symbol, markers Markers) []Violation {
	var violations []Violation
	height := len(cells)
	if height == 0 {
		return nil
	}
	width := len(cells[0])

	for x := 0; x < width; x++ {
		pos, neg := 0, 0
		for y := 0; y < height; y++ {
			switch cells[y][x] {
			case Positive:
				pos++
			case Negative:
				neg++
			}
		}
		if exceeds(markers.Top, x, pos) {
			violations = append(violations, columnViolation(ColumnTopExceeded, x, Positive))
		}
		if exceeds(markers.Bottom, x, neg) {
			violations = append(violations, columnViolation(ColumnBottomExceeded, x, Negative))
		}
	}

	for y := 0; y < height; y++ {
		pos, neg := CountSymbols(cells[y], Positive), CountSymbols(cells[y], Negative)
		if exceeds(markers.Left, y, pos) {
			violations = append(violations, rowViolation(RowLeftExceeded, y, Positive))
		}
		if exceeds(markers.Right, y, neg) {
			violations = append(violations, rowViolation(RowRightExceeded, y, Negative))
		}
	}

	for y := 0; y < height; y++ {
		for x := 1; x < width; x++ {
			if cells[y][x].IsPolar() && cells[y][x] == cells[y][x-1] {
				violations = append(violations, polesViolation(x-1, y, x, y))
			}
		}
	}

	for y := 1; y < height; y++ {
		for x := 0; x < width; x++ {
			if cells[y][x].IsPolar() && cells[y][x] == cells[y-1][x] {
				violations = append(violations, polesViolation(x, y-1, x, y))
			}
		}
	}

	return violations
}

func exceeds(markers []int, i, count int) bool {
	if i >= len(markers) || markers[i] == Unconstrained {
		return false
	}
	return count > markers[i]
}

// CountSymbols counts occurrences of s in a row of cells
func CountSymbols(row []Symbol, s Symbol) int {
	n := 0
	for _, c := range row {
		if c == s {
			n++
		}
	}
	return n
}

// FormatViolations builds the combined loss message
func FormatViolations(violations []Violation) string {
	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, v.Message)
	}
	return "You broke the rules!\n" + strings.Join(lines, "\n")
}
