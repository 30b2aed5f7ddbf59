// Package board implements the 3x3 mark-placement rules engine shared by
// every game session on a game-server.
package board

import "errors"

// Mark identifies a cell occupant, or the absence of one.
type Mark int

const (
	Empty Mark = 0
	Mark1 Mark = 1
	Mark2 Mark = 2
)

// ErrInvalidMove is returned by Place for any rule violation: finished game,
// unknown user, out-of-range coordinate, occupied cell, or playing out of
// turn.
var ErrInvalidMove = errors.New("invalid move")

// Board is a 3x3 tic-tac-toe board bound to exactly two usernames.
type Board struct {
	user1, user2 string
	cells        [3][3]Mark
	currentMark  Mark
	winner       Mark
}

// New creates a board with user1 assigned Mark1 and user2 assigned Mark2.
// Mark1 moves first.
func New(user1, user2 string) *Board {
	return &Board{
		user1:       user1,
		user2:       user2,
		currentMark: Mark1,
	}
}

// MarkOf returns the mark assigned to user, or Empty if user is neither
// user1 nor user2.
func (b *Board) MarkOf(user string) Mark {
	switch user {
	case b.user1:
		return Mark1
	case b.user2:
		return Mark2
	default:
		return Empty
	}
}

// OpponentMarkOf returns the mark of user's opponent, or Empty if user is
// neither user1 nor user2.
func (b *Board) OpponentMarkOf(user string) Mark {
	switch user {
	case b.user1:
		return Mark2
	case b.user2:
		return Mark1
	default:
		return Empty
	}
}

// Cells returns a copy of the current board state.
func (b *Board) Cells() [3][3]Mark {
	return b.cells
}

// CurrentMark returns the mark whose turn it is to play next.
func (b *Board) CurrentMark() Mark {
	return b.currentMark
}

// Winner returns the winning mark, or Empty if no winner yet (which may
// mean the game is still running, or that it ended in a draw).
func (b *Board) Winner() Mark {
	return b.winner
}

// Finished reports whether the game has a winner or the board is full.
func (b *Board) Finished() bool {
	if b.winner != Empty {
		return true
	}
	for i := range b.cells {
		for j := range b.cells[i] {
			if b.cells[i][j] == Empty {
				return false
			}
		}
	}
	return true
}

// Place records user's mark at (row, col). It toggles CurrentMark and runs
// win detection on success.
func (b *Board) Place(user string, row, col int) error {
	mark := b.MarkOf(user)
	if mark == Empty {
		return ErrInvalidMove
	}
	if b.Finished() {
		return ErrInvalidMove
	}
	if mark != b.currentMark {
		return ErrInvalidMove
	}
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return ErrInvalidMove
	}
	if b.cells[row][col] != Empty {
		return ErrInvalidMove
	}

	b.cells[row][col] = mark
	b.toggleCurrentMark()
	b.setWinnerIfAny(row, col)
	return nil
}

func (b *Board) toggleCurrentMark() {
	if b.currentMark == Mark1 {
		b.currentMark = Mark2
	} else {
		b.currentMark = Mark1
	}
}

func (b *Board) setWinnerIfAny(row, col int) {
	value := b.cells[row][col]
	if b.lineFilled(value, func(i int) (int, int) { return row, i }) ||
		b.lineFilled(value, func(i int) (int, int) { return i, col }) ||
		b.diagonalFilled(value, row, col, false) ||
		b.diagonalFilled(value, row, col, true) {
		b.winner = value
	}
}

func (b *Board) lineFilled(value Mark, at func(i int) (int, int)) bool {
	for i := 0; i < 3; i++ {
		r, c := at(i)
		if b.cells[r][c] != value {
			return false
		}
	}
	return true
}

// diagonalFilled reports whether the main diagonal (anti=false) or the
// anti-diagonal (anti=true) is fully occupied by value. It is called for
// both diagonals on every placement but returns false without scanning when
// (row, col) does not lie on that diagonal.
func (b *Board) diagonalFilled(value Mark, row, col int, anti bool) bool {
	onDiagonal := row == col
	if anti {
		onDiagonal = row+col == 2
	}
	if !onDiagonal {
		return false
	}
	for i := 0; i < 3; i++ {
		r, c := i, i
		if anti {
			c = 2 - i
		}
		if b.cells[r][c] != value {
			return false
		}
	}
	return true
}
