package board

// castleMask maps a square to the rights lost when a piece leaves or lands on it.
var castleMask [64]CastlingRights

func init() {
	castleMask[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	castleMask[H1] = WhiteKingSideCastle
	castleMask[A1] = WhiteQueenSideCastle
	castleMask[E8] = BlackKingSideCastle | BlackQueenSideCastle
	castleMask[H8] = BlackKingSideCastle
	castleMask[A8] = BlackQueenSideCastle
}

// Push returns the position after m. m must be legal in p; Push does not
// check. The receiver is left untouched.
func (p *Position) Push(m Move) Position {
	next := *p
	from, to := m.From(), m.To()
	fromBB, toBB := SquareBB(from), SquareBB(to)
	piece := p.PieceAt(from)
	us := p.Turn

	capture := p.Occupied()&toBB != 0
	for i := range next.Boards {
		next.Boards[i] &^= fromBB | toBB
	}

	placed := piece
	if m.IsPromotion() {
		placed = NewPiece(m.Promotion(), us)
	}
	next.Boards[placed] |= toBB

	next.EPFlag = false
	next.EPSquare = NoSquare

	switch piece.Type() {
	case King:
		if d := int(to) - int(from); d == 2 || d == -2 {
			rookFrom, rookTo := to+1, to-1
			if d < 0 {
				rookFrom, rookTo = to-2, to+1
			}
			rook := NewPiece(Rook, us)
			next.Boards[rook] = next.Boards[rook]&^SquareBB(rookFrom) | SquareBB(rookTo)
		}
	case Pawn:
		switch int(to) - int(from) {
		case 16, -16:
			next.EPFlag = true
			next.EPSquare = Square((int(from) + int(to)) / 2)
		case 7, 9, -7, -9:
			if p.EPFlag && to == p.EPSquare && !capture {
				victim := to - 8
				if us == Black {
					victim = to + 8
				}
				next.Boards[NewPiece(Pawn, us.Other())] &^= SquareBB(victim)
				capture = true
			}
		}
	}

	next.Castling &^= castleMask[from] | castleMask[to]

	if capture || piece.Type() == Pawn {
		next.HalfMove = 0
	} else {
		next.HalfMove = p.HalfMove + 1
	}
	if us == Black {
		next.FullMove = p.FullMove + 1
	}
	next.Turn = us.Other()

	// Siblings pushed from one parent must not share a backing array.
	next.History = append(p.History[:len(p.History):len(p.History)], m)

	next.Eval = 0
	next.HasEval = false
	return next
}
