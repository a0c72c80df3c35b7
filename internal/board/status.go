package board

// IsInsufficientMaterial reports the material-only draws: bare kings, and a
// lone minor piece against a bare king.
func (p *Position) IsInsufficientMaterial() bool {
	heavy := p.Boards[WhitePawn] | p.Boards[BlackPawn] |
		p.Boards[WhiteRook] | p.Boards[BlackRook] |
		p.Boards[WhiteQueen] | p.Boards[BlackQueen]
	if heavy != 0 {
		return false
	}
	minors := p.Boards[WhiteKnight] | p.Boards[BlackKnight] |
		p.Boards[WhiteBishop] | p.Boards[BlackBishop]
	return minors.PopCount() <= 1
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && len(p.Moves()) == 0
}

// IsStalemate returns true if the side to move has no moves and is not in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && len(p.Moves()) == 0
}
