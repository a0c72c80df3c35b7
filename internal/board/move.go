package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is returned for move text that is not 4-5 characters of
	// coordinate notation.
	ErrInvalidMove = errors.New("invalid move")
	// ErrIllegalMove is returned when well-formed move text is not legal in
	// the position it is applied to.
	ErrIllegalMove = errors.New("illegal move")
)

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-13: promotion piece (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
// bit  14:    promotion flag
//
// Castling is a king move of two files and en passant is a diagonal pawn move
// onto the en-passant square; Push recognises both from the position.
type Move uint16

const flagPromotion Move = 1 << 14

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a non-promoting move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promotion move. promo must be Knight..Queen.
func NewPromotion(from, to Square, promo PieceType) Move {
	return NewMove(from, to) | Move(promo-Knight)<<12 | flagPromotion
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m&flagPromotion != 0
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

var promoChars = [4]byte{'n', 'b', 'r', 'q'}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoChars[m.Promotion()-Knight])
	}
	return s
}

// ParseMove parses 4-5 characters of coordinate notation. It does not look
// at any position; use FindMove to resolve text against the legal moves.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if len(s) == 4 {
		return NewMove(from, to), nil
	}
	for i, c := range promoChars {
		if s[4] == c {
			return NewPromotion(from, to, Knight+PieceType(i)), nil
		}
	}
	return NoMove, fmt.Errorf("%w: bad promotion piece %q", ErrInvalidMove, s[4])
}

// FindMove parses s and returns it if it is legal in pos.
func FindMove(pos *Position, s string) (Move, error) {
	m, err := ParseMove(s)
	if err != nil {
		return NoMove, err
	}
	for _, legal := range pos.Moves() {
		if legal == m {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, pos.FEN())
}
