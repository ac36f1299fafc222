package engine

import (
	"reflect"
	"testing"
)

func parseCells(rows ...string) [][]Symbol {
	cells := make([][]Symbol, len(rows))
	for y, row := range rows {
		cells[y] = make([]Symbol, len(row))
		for x := 0; x < len(row); x++ {
			cells[y][x] = Symbol(row[x])
		}
	}
	return cells
}

func openMarkers(width, height int) Markers {
	return Markers{
		Top:    unconstrained(width),
		Bottom: unconstrained(width),
		Left:   unconstrained(height),
		Right:  unconstrained(height),
	}
}

func TestEvaluate_Adjacency(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want []Violation
	}{
		{"empty grid", []string{"..", ".."}, nil},
		{"neutral pair horizontal", []string{"xx", ".."}, nil},
		{"neutral pair vertical", []string{"x.", "x."}, nil},
		{"opposite polarity", []string{"+-", "-+"}, nil},
		{"positive horizontal", []string{"++", ".."}, []Violation{polesViolation(0, 0, 1, 0)}},
		{"negative horizontal", []string{"..", "--"}, []Violation{polesViolation(0, 1, 1, 1)}},
		{"positive vertical", []string{"+.", "+."}, []Violation{polesViolation(0, 0, 0, 1)}},
		{"negative vertical", []string{".-", ".-"}, []Violation{polesViolation(1, 0, 1, 1)}},
		{"polar next to neutral", []string{"+x", "x-"}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Evaluate(parseCells(test.rows...), openMarkers(2, 2))
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("Expected %+v, got %+v", test.want, got)
			}
		})
	}
}

func TestEvaluate_Markers(t *testing.T) {
	markers := Markers{
		Top:    []int{0, Unconstrained, 1},
		Bottom: []int{Unconstrained, 0, 2},
		Left:   []int{1, Unconstrained},
		Right:  []int{0, 1},
	}

	// +.+
	// -x-
	cells := parseCells("+.+", "-x-")
	got := Evaluate(cells, markers)

	want := []Violation{
		columnViolation(ColumnTopExceeded, 0, Positive),
		rowViolation(RowLeftExceeded, 0, Positive),
		rowViolation(RowRightExceeded, 1, Negative),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestEvaluate_DiscoveryOrder(t *testing.T) {
	markers := Markers{
		Top:    []int{0, 0},
		Bottom: []int{0, 0},
		Left:   []int{0, 0},
		Right:  []int{0, 0},
	}

	// ++
	// --
	got := Evaluate(parseCells("++", "--"), markers)
	var kinds []ViolationKind
	for _, v := range got {
		kinds = append(kinds, v.Kind)
	}
	want := []ViolationKind{
		ColumnTopExceeded, ColumnBottomExceeded,
		ColumnTopExceeded, ColumnBottomExceeded,
		RowLeftExceeded,
		RowRightExceeded,
		AdjacentSamePolarity,
		AdjacentSamePolarity,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("Expected order %v, got %v", want, kinds)
	}
	if got[6].Y1 != 0 || got[7].Y1 != 1 {
		t.Errorf("Expected horizontal pairs row-major, got %+v %+v", got[6], got[7])
	}
}

func TestEvaluate_HorizontalBeforeVertical(t *testing.T) {
	// +.
	// ++
	got := Evaluate(parseCells("+.", "++"), openMarkers(2, 2))
	want := []Violation{polesViolation(0, 1, 1, 1), polesViolation(0, 0, 0, 1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestEvaluate_OrderIndependent(t *testing.T) {
	config := createOpenConfig(2, 4, "aa", "bb", "cc", "dd")
	config.TopMarkers = []int{1, Unconstrained}

	first := mustEngine(t, config)
	for _, line := range []string{"0 0 +", "0 1 -", "0 2 x"} {
		mustPlay(t, first, line)
	}
	second := mustEngine(t, config)
	for _, line := range []string{"1 2 x", "1 1 +", "1 0 -"} {
		mustPlay(t, second, line)
	}

	if !reflect.DeepEqual(first.GetState().Cells, second.GetState().Cells) {
		t.Fatalf("Expected identical grids, got %v and %v", first.GetState().Cells, second.GetState().Cells)
	}

	a := Evaluate(first.Grid().Snapshot(), config.Markers())
	b := Evaluate(second.Grid().Snapshot(), config.Markers())
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical violations, got %+v and %+v", a, b)
	}
	if again := Evaluate(first.Grid().Snapshot(), config.Markers()); !reflect.DeepEqual(a, again) {
		t.Errorf("Expected repeated evaluation to match, got %+v and %+v", a, again)
	}
}

func TestFormatViolations(t *testing.T) {
	msg := FormatViolations([]Violation{
		columnViolation(ColumnBottomExceeded, 2, Negative),
		polesViolation(1, 0, 2, 0),
	})
	want := "You broke the rules!\nToo many '-' in column 2\nNeighboring cells with same polarity at [1, 0] [2, 0]"
	if msg != want {
		t.Errorf("Expected %q, got %q", want, msg)
	}
}
