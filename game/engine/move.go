package engine

import (
	"strconv"
	"strings"
)

// ParseMove reads one player output line of the form "x y s".
// Any failure is a MalformedOutput MoveError.
func ParseMove(line string) (Move, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Move{}, malformed("Empty output; space separated 'x', 'y' and '+/-/x' character expected.")
	}

	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return Move{}, malformed("Space separated 'x', 'y' and '+/-/x' symbol expected.")
	}

	x, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Move{}, malformed("Invalid output. X coordinate should be integer.")
	}
	y, err := strconv.Atoi(tokens[1])
	if err != nil {
		return Move{}, malformed("Invalid output. Y coordinate should be integer.")
	}
	symbol, err := ParseSymbol(tokens[2])
	if err != nil {
		return Move{}, malformed("Invalid output. Symbol should be one of +/-/x.")
	}

	return Move{X: x, Y: y, Symbol: symbol}, nil
}
