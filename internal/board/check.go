package board

// slidesAlong reports whether piece moves along direction d.
func slidesAlong(piece Piece, d Direction) bool {
	switch piece.Type() {
	case Queen:
		return true
	case Bishop:
		return d.Diagonal()
	case Rook:
		return !d.Diagonal()
	}
	return false
}

// Checkers returns the enemy pieces giving check to the side to move, and
// their count. attacked must be the opponent's attack set; when it does not
// contain the king the call returns at once. The count saturates at two.
func (p *Position) Checkers(attacked Bitboard) (Bitboard, int) {
	us := p.Turn
	king := p.KingSquare(us)
	if king == NoSquare || !attacked.IsSet(king) {
		return Empty, 0
	}
	them := us.Other()
	enemy := Piece(them) * 6

	checkers := pawnAttacks[us][king]&p.Boards[enemy+Piece(Pawn)] |
		knightAttacks[king]&p.Boards[enemy+Piece(Knight)]
	count := checkers.PopCount()
	if count >= 2 {
		return checkers, 2
	}

	occupied := p.Occupied()
	for d := North; d <= SouthEast; d++ {
		sq := firstBlocker(d, king, occupied)
		if sq == NoSquare {
			continue
		}
		piece := p.PieceAt(sq)
		if piece.Color() != them || !slidesAlong(piece, d) {
			continue
		}
		checkers |= SquareBB(sq)
		if count++; count == 2 {
			break
		}
	}
	return checkers, count
}

// directionTo returns the ray direction leading from one square to another,
// and false when they are not aligned.
func directionTo(from, to Square) (Direction, bool) {
	for d := North; d <= SouthEast; d++ {
		if rays[d][from].IsSet(to) {
			return d, true
		}
	}
	return 0, false
}

// Pinned reports whether the piece on sq is pinned against king. If it is,
// mask holds the squares it may still move to: the ray between king and
// pinner with the pinner included. Otherwise mask is the full board.
func (p *Position) Pinned(king, sq Square) (bool, Bitboard) {
	d, ok := directionTo(king, sq)
	if !ok {
		return false, Universe
	}
	occupied := p.Occupied()
	if firstBlocker(d, king, occupied) != sq {
		return false, Universe
	}
	pinner := firstBlocker(d, sq, occupied)
	if pinner == NoSquare {
		return false, Universe
	}
	piece := p.PieceAt(pinner)
	if piece.Color() == p.PieceAt(king).Color() || !slidesAlong(piece, d) {
		return false, Universe
	}
	return true, rays[d][king] &^ rays[d][pinner]
}
