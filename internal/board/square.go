// Package board holds the bitboard position model: move generation with
// check and pin analysis, the functional mutator, FEN text and Zobrist
// fingerprints.
package board

import "fmt"

// Square is a board square index, a1=0 through h8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// Location is the (file, rank) view of a square. Both are 0-7.
type Location struct {
	File int
	Rank int
}

// Square converts the location back to a square index.
func (l Location) Square() Square {
	return NewSquare(l.File, l.Rank)
}

// Valid reports whether the location lies on the board.
func (l Location) Valid() bool {
	return l.File >= 0 && l.File < 8 && l.Rank >= 0 && l.Rank < 8
}

// Location returns the (file, rank) pair for sq.
func (sq Square) Location() Location {
	return Location{File: sq.File(), Rank: sq.Rank()}
}

// File returns the file of the square (0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank of the square (0=rank 1, 7=rank 8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String returns the algebraic name of the square, "-" for NoSquare.
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}
