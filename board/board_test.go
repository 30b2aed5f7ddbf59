package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_PlaceTogglesCurrentMark(t *testing.T) {
	b := New("alice", "bob")
	require.Equal(t, Mark1, b.CurrentMark())

	require.NoError(t, b.Place("alice", 0, 0))
	assert.Equal(t, Mark2, b.CurrentMark())

	require.NoError(t, b.Place("bob", 1, 1))
	assert.Equal(t, Mark1, b.CurrentMark())
}

func TestBoard_PlaceRejectsOutOfTurn(t *testing.T) {
	b := New("alice", "bob")
	err := b.Place("bob", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestBoard_PlaceRejectsUnknownUser(t *testing.T) {
	b := New("alice", "bob")
	err := b.Place("mallory", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestBoard_PlaceRejectsOutOfRange(t *testing.T) {
	b := New("alice", "bob")
	assert.ErrorIs(t, b.Place("alice", -1, 0), ErrInvalidMove)
	assert.ErrorIs(t, b.Place("alice", 0, 3), ErrInvalidMove)
}

func TestBoard_PlaceRejectsOccupiedCell(t *testing.T) {
	b := New("alice", "bob")
	require.NoError(t, b.Place("alice", 0, 0))
	require.NoError(t, b.Place("bob", 1, 1))
	err := b.Place("alice", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestBoard_AntiDiagonalWin(t *testing.T) {
	b := New("alice", "bob")
	moves := []struct {
		user    string
		r, c    int
	}{
		{"alice", 0, 2},
		{"bob", 0, 0},
		{"alice", 1, 1},
		{"bob", 0, 1},
		{"alice", 2, 0},
	}
	for _, m := range moves {
		require.NoError(t, b.Place(m.user, m.r, m.c))
	}
	assert.True(t, b.Finished())
	assert.Equal(t, Mark1, b.Winner())
}

func TestBoard_MainDiagonalWin(t *testing.T) {
	b := New("alice", "bob")
	moves := []struct {
		user string
		r, c int
	}{
		{"alice", 0, 0},
		{"bob", 0, 1},
		{"alice", 1, 1},
		{"bob", 0, 2},
		{"alice", 2, 2},
	}
	for _, m := range moves {
		require.NoError(t, b.Place(m.user, m.r, m.c))
	}
	assert.True(t, b.Finished())
	assert.Equal(t, Mark1, b.Winner())
}

func TestBoard_RowWin(t *testing.T) {
	b := New("alice", "bob")
	moves := []struct {
		user string
		r, c int
	}{
		{"alice", 1, 0},
		{"bob", 0, 0},
		{"alice", 1, 1},
		{"bob", 0, 1},
		{"alice", 1, 2},
	}
	for _, m := range moves {
		require.NoError(t, b.Place(m.user, m.r, m.c))
	}
	assert.True(t, b.Finished())
	assert.Equal(t, Mark1, b.Winner())
}

func TestBoard_Draw(t *testing.T) {
	b := New("alice", "bob")
	// X O X
	// X X O
	// O X O
	moves := []struct {
		user string
		r, c int
	}{
		{"alice", 0, 0}, {"bob", 0, 1}, {"alice", 0, 2},
		{"bob", 1, 2}, {"alice", 1, 0}, {"bob", 2, 0},
		{"alice", 1, 1}, {"bob", 2, 2}, {"alice", 2, 1},
	}
	for _, m := range moves {
		require.NoError(t, b.Place(m.user, m.r, m.c))
	}
	assert.True(t, b.Finished())
	assert.Equal(t, Empty, b.Winner())
}

func TestBoard_NoMoveAfterFinished(t *testing.T) {
	b := New("alice", "bob")
	moves := []struct {
		user string
		r, c int
	}{
		{"alice", 0, 0}, {"bob", 1, 0}, {"alice", 0, 1},
		{"bob", 1, 1}, {"alice", 0, 2},
	}
	for _, m := range moves {
		require.NoError(t, b.Place(m.user, m.r, m.c))
	}
	require.True(t, b.Finished())
	assert.ErrorIs(t, b.Place("bob", 2, 2), ErrInvalidMove)
}
