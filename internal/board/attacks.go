package board

// Direction indexes the eight ray directions. The first four step toward
// higher square indices, the last four toward lower ones.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	NorthWest
	South
	SouthWest
	West
	SouthEast
)

var dirDelta = [8][2]int{ // file, rank
	North:     {0, 1},
	NorthEast: {1, 1},
	East:      {1, 0},
	NorthWest: {-1, 1},
	South:     {0, -1},
	SouthWest: {-1, -1},
	West:      {-1, 0},
	SouthEast: {1, -1},
}

// Diagonal reports whether d is a bishop direction.
func (d Direction) Diagonal() bool {
	return d == NorthEast || d == NorthWest || d == SouthWest || d == SouthEast
}

func (d Direction) positive() bool {
	return d < South
}

// Pre-computed attack tables
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	// rays[d][sq] holds every square from sq (exclusive) to the board edge.
	rays [8][64]Bitboard

	// betweenBB holds the squares strictly between two aligned squares.
	betweenBB [64][64]Bitboard
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>17)&NotFileH | (bb>>15)&NotFileA |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>10)&NotFileGH | (bb>>6)&NotFileAB

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		for d, delta := range dirDelta {
			l := Location{File: sq.File() + delta[0], Rank: sq.Rank() + delta[1]}
			for ; l.Valid(); l.File, l.Rank = l.File+delta[0], l.Rank+delta[1] {
				rays[d][sq] |= SquareBB(l.Square())
			}
		}
	}

	for sq := A1; sq <= H8; sq++ {
		for d := range rays {
			ray := rays[d][sq]
			for r := ray; r != 0; {
				to := r.PopLSB()
				betweenBB[sq][to] = ray &^ rays[d][to] &^ SquareBB(to)
			}
		}
	}
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the capture squares of a pawn of color c on sq.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// Ray returns the squares from sq toward the board edge in direction d.
func Ray(d Direction, sq Square) Bitboard {
	return rays[d][sq]
}

// firstBlocker returns the nearest occupied square from sq in direction d.
func firstBlocker(d Direction, sq Square, occupied Bitboard) Square {
	blockers := rays[d][sq] & occupied
	if d.positive() {
		return blockers.LSB()
	}
	return blockers.MSB()
}

// rayAttacks returns the ray from sq in direction d cut after the first
// blocker. The blocker square is included.
func rayAttacks(d Direction, sq Square, occupied Bitboard) Bitboard {
	attacks := rays[d][sq]
	if b := firstBlocker(d, sq, occupied); b != NoSquare {
		attacks &^= rays[d][b]
	}
	return attacks
}

// BishopAttacks returns the bishop attack bitboard for a square with given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(NorthEast, sq, occupied) | rayAttacks(NorthWest, sq, occupied) |
		rayAttacks(SouthEast, sq, occupied) | rayAttacks(SouthWest, sq, occupied)
}

// RookAttacks returns the rook attack bitboard for a square with given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(North, sq, occupied) | rayAttacks(South, sq, occupied) |
		rayAttacks(East, sq, occupied) | rayAttacks(West, sq, occupied)
}

// QueenAttacks returns the queen attack bitboard for a square with given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Between returns the squares strictly between two squares, or Empty if
// they do not share a rank, file or diagonal.
func Between(sq1, sq2 Square) Bitboard {
	return betweenBB[sq1][sq2]
}

// Attacked returns every square attacked by side. Squares holding pieces of
// either color are included; pins and legality are ignored.
func (p *Position) Attacked(side Color) Bitboard {
	occupied := p.Occupied()
	base := Piece(side) * 6

	pawns := p.Boards[base+Piece(Pawn)]
	var attacks Bitboard
	if side == White {
		attacks = pawns.NorthEast() | pawns.NorthWest()
	} else {
		attacks = pawns.SouthEast() | pawns.SouthWest()
	}

	for b := p.Boards[base+Piece(Knight)]; b != 0; {
		attacks |= knightAttacks[b.PopLSB()]
	}
	for b := p.Boards[base+Piece(King)]; b != 0; {
		attacks |= kingAttacks[b.PopLSB()]
	}

	queens := p.Boards[base+Piece(Queen)]
	for b := p.Boards[base+Piece(Bishop)] | queens; b != 0; {
		attacks |= BishopAttacks(b.PopLSB(), occupied)
	}
	for b := p.Boards[base+Piece(Rook)] | queens; b != 0; {
		attacks |= RookAttacks(b.PopLSB(), occupied)
	}

	return attacks
}
