package engine

import (
	"cmp"

	"golang.org/x/exp/slices"

	"github.com/hailam/megalodon/internal/board"
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

const (
	ttMoveScore    = 1 << 20
	captureBase    = 1 << 16
	promotionBase  = 1 << 12
	enPassantScore = captureBase + 15
)

type scoredMove struct {
	move  board.Move
	score int
}

// orderMoves sorts moves in place: the stored move first, then captures by
// MVV-LVA, then promotions, then quiet moves in generation order.
func orderMoves(pos *board.Position, moves []board.Move, ttMove board.Move) {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: moveScore(pos, m, ttMove)}
	}
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		return cmp.Compare(b.score, a.score)
	})
	for i := range scored {
		moves[i] = scored[i].move
	}
}

func moveScore(pos *board.Position, m, ttMove board.Move) int {
	if m == ttMove && ttMove != board.NoMove {
		return ttMoveScore
	}
	attacker := pos.PieceAt(m.From()).Type()
	score := 0
	if victim := pos.PieceAt(m.To()); victim != board.NoPiece {
		score = captureBase + mvvLva[victim.Type()][attacker]
	} else if attacker == board.Pawn && pos.EPFlag && m.To() == pos.EPSquare && m.From().File() != m.To().File() {
		score = enPassantScore
	}
	if m.IsPromotion() {
		score += promotionBase + int(m.Promotion())
	}
	return score
}
