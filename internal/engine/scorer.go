package engine

import "github.com/hailam/megalodon/internal/board"

// Scorer is the static evaluation used at search leaves. It must be
// deterministic. Positive scores favour White, negative favour Black.
// moves holds the side to move's legal moves and oppAttacks the squares the
// opponent attacks; both are already computed by the search.
type Scorer interface {
	Score(pos *board.Position, moves []board.Move, ply int, oppAttacks board.Bitboard) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(pos *board.Position, moves []board.Move, ply int, oppAttacks board.Bitboard) float64

// Score implements Scorer.
func (f ScorerFunc) Score(pos *board.Position, moves []board.Move, ply int, oppAttacks board.Bitboard) float64 {
	return f(pos, moves, ply, oppAttacks)
}

// Piece values in pawns, indexed by PieceType.
var pieceValues = [6]float64{1, 3, 3, 5, 9, 0}

// MaterialScorer counts material and rewards central presence. Weights are
// percentages; 100/100 is the default balance.
type MaterialScorer struct {
	Material int
	Center   int
}

// NewMaterialScorer returns a scorer with the given percentage weights.
func NewMaterialScorer(material, center int) *MaterialScorer {
	return &MaterialScorer{Material: material, Center: center}
}

// Score implements Scorer.
func (s *MaterialScorer) Score(pos *board.Position, moves []board.Move, ply int, oppAttacks board.Bitboard) float64 {
	if pos.IsInsufficientMaterial() {
		return 0
	}

	var material float64
	for pt := board.Pawn; pt < board.King; pt++ {
		white := pos.Boards[board.NewPiece(pt, board.White)].PopCount()
		black := pos.Boards[board.NewPiece(pt, board.Black)].PopCount()
		material += float64(white-black) * pieceValues[pt]
	}

	white, black := pos.Side(board.White), pos.Side(board.Black)
	center := 0.2*float64((white&board.Center).PopCount()-(black&board.Center).PopCount()) +
		0.05*float64((white&board.BigCenter).PopCount()-(black&board.BigCenter).PopCount())

	// Control: central destinations of our moves against the opponent's
	// attacks there, from the mover's point of view.
	var reach board.Bitboard
	for _, m := range moves {
		reach |= board.SquareBB(m.To())
	}
	control := 0.02 * float64((reach&board.BigCenter).PopCount()-(oppAttacks&board.BigCenter).PopCount())
	if pos.Turn == board.Black {
		control = -control
	}

	return material*float64(s.Material)/100 + (center+control)*float64(s.Center)/100
}
