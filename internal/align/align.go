package align

import (
	"slices"

	"pronounce/internal/transcript"
)

// Move is the choice recorded in a table cell.
type Move uint8

const (
	MoveNone Move = iota
	MoveDelete
	MoveInsert
	MoveDiagonal
)

type cell struct {
	cost int
	move Move
}

// table is a row-major (rows x cols) grid of cells.
type table struct {
	cols  int
	cells []cell
}

func newTable(rows, cols int) *table {
	return &table{cols: cols, cells: make([]cell, rows*cols)}
}

func (t *table) at(i, j int) *cell {
	return &t.cells[i*t.cols+j]
}

// choose picks the cheapest move. Ties resolve delete, then insert, then
// diagonal.
func choose(del, ins, diag int) (int, Move) {
	best, move := del, MoveDelete
	if ins < best {
		best, move = ins, MoveInsert
	}
	if diag < best {
		best, move = diag, MoveDiagonal
	}
	return best, move
}

func fill(ref []string, hyp []transcript.Word) *table {
	n, m := len(ref), len(hyp)
	t := newTable(n+1, m+1)
	for i := 1; i <= n; i++ {
		*t.at(i, 0) = cell{cost: i, move: MoveDelete}
	}
	for j := 1; j <= m; j++ {
		*t.at(0, j) = cell{cost: j, move: MoveInsert}
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := 1
			if ref[i-1] == hyp[j-1].Text {
				sub = 0
			}
			cost, move := choose(
				t.at(i-1, j).cost+1,
				t.at(i, j-1).cost+1,
				t.at(i-1, j-1).cost+sub,
			)
			*t.at(i, j) = cell{cost: cost, move: move}
		}
	}
	return t
}

// Align returns the minimum-cost alignment of ref against hyp in
// left-to-right order. Either side may be empty.
func Align(ref []string, hyp []transcript.Word) []Op {
	t := fill(ref, hyp)

	ops := make([]Op, 0, max(len(ref), len(hyp)))
	i, j := len(ref), len(hyp)
	for i > 0 || j > 0 {
		switch t.at(i, j).move {
		case MoveDiagonal:
			word := hyp[j-1]
			kind := Substitution
			if ref[i-1] == word.Text {
				kind = Equal
			}
			ops = append(ops, Op{Kind: kind, Ref: ref[i-1], Hyp: &word})
			i--
			j--
		case MoveDelete:
			ops = append(ops, Op{Kind: Deletion, Ref: ref[i-1]})
			i--
		default:
			word := hyp[j-1]
			ops = append(ops, Op{Kind: Insertion, Hyp: &word})
			j--
		}
	}
	slices.Reverse(ops)
	return ops
}

// Distance returns the word-level Levenshtein distance between a and b using
// two rolling rows.
func Distance(a, b []string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
