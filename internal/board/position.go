package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Position is an immutable snapshot of a game. New positions come from
// ParseFEN or Push; nothing modifies one in place after that.
type Position struct {
	// Boards holds one bitboard per Piece. The twelve are pairwise disjoint.
	Boards [PieceCount]Bitboard

	Turn     Color
	Castling CastlingRights

	// EPFlag is set only directly after a double pawn push. EPSquare is the
	// square the capturing pawn lands on.
	EPFlag   bool
	EPSquare Square

	HalfMove int // plies since the last capture or pawn move
	FullMove int // starts at 1, incremented after Black moves

	History []Move

	// Eval caches a scorer result for this position when HasEval is set.
	Eval    float64
	HasEval bool
}

// NewPosition returns the starting position.
func NewPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Side returns the union of the six boards of color c.
func (p *Position) Side(c Color) Bitboard {
	base := int(c) * 6
	b := p.Boards[base]
	for i := base + 1; i < base+6; i++ {
		b |= p.Boards[i]
	}
	return b
}

// Occupied returns every occupied square.
func (p *Position) Occupied() Bitboard {
	var b Bitboard
	for _, bb := range p.Boards {
		b |= bb
	}
	return b
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	for i, b := range p.Boards {
		if b&bb != 0 {
			return Piece(i)
		}
	}
	return NoPiece
}

// KingSquare returns the square of c's king, or NoSquare if it has none.
func (p *Position) KingSquare(c Color) Square {
	return p.Boards[NewPiece(King, c)].LSB()
}

// Location returns the (file, rank) view of sq.
func (p *Position) Location(sq Square) Location {
	return sq.Location()
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	k := p.KingSquare(p.Turn)
	return k != NoSquare && p.Attacked(p.Turn.Other()).IsSet(k)
}

// Moves returns the legal moves for the side to move.
func (p *Position) Moves() []Move {
	return p.LegalMoves(p.Attacked(p.Turn.Other()))
}

// Signature returns the fields that identify the position for
// transposition purposes. Counters, history and eval are excluded.
func (p *Position) Signature() Signature {
	return Signature{
		Boards:   p.Boards,
		Turn:     p.Turn,
		Castling: p.Castling,
		EPFlag:   p.EPFlag,
		EPSquare: p.EPSquare,
	}
}

// Signature is the comparable identity of a position.
type Signature struct {
	Boards   [PieceCount]Bitboard
	Turn     Color
	Castling CastlingRights
	EPFlag   bool
	EPSquare Square
}

// validate checks the one-king-per-side and pawn rank invariants.
func (p *Position) validate() error {
	if p.Boards[WhiteKing].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Boards[BlackKing].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if (p.Boards[WhitePawn]|p.Boards[BlackPawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}
	return nil
}

// String returns an ASCII diagram of the position followed by its FEN.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\n", p.FEN())
	return sb.String()
}
