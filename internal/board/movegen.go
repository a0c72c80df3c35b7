package board

// castle describes one castling option: the rook's home square, the squares
// that must be empty and the squares the king crosses or lands on.
type castle struct {
	right   CastlingRights
	king    Square
	to      Square
	rook    Square
	empty   Bitboard
	transit Bitboard
}

var castles = [2][2]castle{
	White: {
		{WhiteKingSideCastle, E1, G1, H1, SquareBB(F1) | SquareBB(G1), SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSideCastle, E1, C1, A1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(C1) | SquareBB(D1)},
	},
	Black: {
		{BlackKingSideCastle, E8, G8, H8, SquareBB(F8) | SquareBB(G8), SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSideCastle, E8, C8, A8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(C8) | SquareBB(D8)},
	},
}

// LegalMoves returns every legal move for the side to move. attacked must
// be the opponent's attack set (Attacked(Turn.Other())). Moves are not
// ordered.
func (p *Position) LegalMoves(attacked Bitboard) []Move {
	us := p.Turn
	king := p.KingSquare(us)
	if king == NoSquare {
		return nil
	}
	own := p.Side(us)
	occupied := p.Occupied()
	moves := make([]Move, 0, 48)

	checkers, count := p.Checkers(attacked)

	// King steps. While in check, the square behind the king on a slider's
	// line is not in attacked because the king itself shadows it.
	kingTargets := kingAttacks[king] &^ own &^ attacked
	for c := checkers; c != 0; {
		sq := c.PopLSB()
		if d, ok := directionTo(sq, king); ok && slidesAlong(p.PieceAt(sq), d) {
			kingTargets &^= rays[d][king]
		}
	}
	for t := kingTargets; t != 0; {
		moves = append(moves, NewMove(king, t.PopLSB()))
	}

	if count >= 2 {
		return moves
	}

	// target limits non-king destinations: anywhere when not in check,
	// otherwise the checker plus the squares blocking a sliding checker.
	target := Universe
	if count == 1 {
		checker := checkers.LSB()
		target = checkers
		if p.PieceAt(checker).Type() != Knight && p.PieceAt(checker).Type() != Pawn {
			target |= Between(king, checker)
		}
	}

	base := Piece(us) * 6
	enemies := occupied &^ own

	for b := p.Boards[base+Piece(Pawn)]; b != 0; {
		from := b.PopLSB()
		moves = p.appendPawnMoves(moves, from, king, target, enemies, occupied)
	}

	for pt := Knight; pt <= Queen; pt++ {
		for b := p.Boards[base+Piece(pt)]; b != 0; {
			from := b.PopLSB()
			var dests Bitboard
			switch pt {
			case Knight:
				dests = knightAttacks[from]
			case Bishop:
				dests = BishopAttacks(from, occupied)
			case Rook:
				dests = RookAttacks(from, occupied)
			case Queen:
				dests = QueenAttacks(from, occupied)
			}
			dests &^= own
			dests &= target
			if dests == 0 {
				continue
			}
			if pinned, mask := p.Pinned(king, from); pinned {
				dests &= mask
			}
			for dests != 0 {
				moves = append(moves, NewMove(from, dests.PopLSB()))
			}
		}
	}

	if count == 0 {
		for _, c := range castles[us] {
			if p.Castling&c.right == 0 || king != c.king {
				continue
			}
			if !p.Boards[base+Piece(Rook)].IsSet(c.rook) {
				continue
			}
			if occupied&c.empty != 0 || attacked&c.transit != 0 {
				continue
			}
			moves = append(moves, NewMove(c.king, c.to))
		}
	}

	return moves
}

// appendPawnMoves adds the legal moves of the pawn on from.
func (p *Position) appendPawnMoves(moves []Move, from, king Square, target, enemies, occupied Bitboard) []Move {
	us := p.Turn
	var dests Bitboard

	push := SquareBB(from).North()
	startRank, lastRank := Rank2, Rank8
	if us == Black {
		push = SquareBB(from).South()
		startRank, lastRank = Rank7, Rank1
	}
	push &^= occupied
	dests |= push
	if push != 0 && SquareBB(from)&startRank != 0 {
		if us == White {
			dests |= push.North() &^ occupied
		} else {
			dests |= push.South() &^ occupied
		}
	}
	dests |= pawnAttacks[us][from] & enemies
	dests &= target

	pinned, mask := p.Pinned(king, from)
	dests &= mask

	for dests != 0 {
		to := dests.PopLSB()
		if SquareBB(to)&lastRank != 0 {
			for pt := Queen; pt >= Knight; pt-- {
				moves = append(moves, NewPromotion(from, to, pt))
			}
			continue
		}
		moves = append(moves, NewMove(from, to))
	}

	if p.EPFlag && pawnAttacks[us][from].IsSet(p.EPSquare) {
		m := NewMove(from, p.EPSquare)
		if !pinned || mask.IsSet(p.EPSquare) {
			// Removing two pawns from one rank can expose the king, and the
			// capture may also be the only answer to a pawn check. Both are
			// settled by looking at the resulting position.
			next := p.Push(m)
			if !next.Attacked(us.Other()).IsSet(king) {
				moves = append(moves, m)
			}
		}
	}

	return moves
}
