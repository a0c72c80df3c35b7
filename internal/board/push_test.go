package board

import "testing"

func pushAll(t *testing.T, fen string, moves ...string) Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	for _, s := range moves {
		m, err := FindMove(&pos, s)
		if err != nil {
			t.Fatalf("FindMove(%s): %v", s, err)
		}
		pos = pos.Push(m)
	}
	return pos
}

func TestPush(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string
		want  string
	}{
		{
			name:  "double push sets en passant",
			fen:   StartFEN,
			moves: []string{"e2e4"},
			want:  "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		},
		{
			name:  "en passant cleared by next move",
			fen:   StartFEN,
			moves: []string{"e2e4", "g8f6"},
			want:  "rnbqkb1r/pppppppp/5n2/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 1 2",
		},
		{
			name:  "white castles kingside",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			moves: []string{"e1g1"},
			want:  "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1",
		},
		{
			name:  "white castles queenside",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			moves: []string{"e1c1"},
			want:  "r3k2r/8/8/8/8/8/8/2KR3R b kq - 1 1",
		},
		{
			name:  "black castles both ways",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
			moves: []string{"e8c8"},
			want:  "2kr3r/8/8/8/8/8/8/R3K2R w KQ - 1 2",
		},
		{
			name:  "rook capture drops both rights",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			moves: []string{"a1a8"},
			want:  "R3k2r/8/8/8/8/8/8/4K2R b Kk - 0 1",
		},
		{
			name:  "rook move drops one right",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			moves: []string{"h1h4"},
			want:  "r3k2r/8/8/8/7R/8/8/R3K3 b Qkq - 1 1",
		},
		{
			name:  "en passant removes the passed pawn",
			fen:   "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
			moves: []string{"e5d6"},
			want:  "4k3/8/3P4/8/8/8/8/4K3 b - - 0 1",
		},
		{
			name:  "black en passant",
			fen:   "4k3/8/8/8/3Pp3/8/8/4K3 b - d3 0 1",
			moves: []string{"e4d3"},
			want:  "4k3/8/8/8/8/3p4/8/4K3 w - - 0 2",
		},
		{
			name:  "promotion with capture",
			fen:   "3rk3/4P3/8/8/8/8/8/4K3 w - - 5 9",
			moves: []string{"e7d8n"},
			want:  "3Nk3/8/8/8/8/8/8/4K3 b - - 0 9",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pushAll(t, tc.fen, tc.moves...)
			if got.FEN() != tc.want {
				t.Errorf("FEN = %q, want %q", got.FEN(), tc.want)
			}
			if len(got.History) != len(tc.moves) {
				t.Errorf("history length = %d, want %d", len(got.History), len(tc.moves))
			}
		})
	}
}

func TestPushLeavesParentUntouched(t *testing.T) {
	parent := pushAll(t, StartFEN, "e2e4")
	before := parent.FEN()

	e5 := parent.Push(NewMove(E7, E5))
	c5 := parent.Push(NewMove(C7, C5))

	if parent.FEN() != before || len(parent.History) != 1 {
		t.Errorf("parent changed: %s, history %v", parent.FEN(), parent.History)
	}
	if e5.History[1] != NewMove(E7, E5) || c5.History[1] != NewMove(C7, C5) {
		t.Errorf("sibling histories alias: %v / %v", e5.History, c5.History)
	}
}

func TestPushKeepsBoardsDisjoint(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	var walk func(p *Position, depth int)
	walk = func(p *Position, depth int) {
		var seen Bitboard
		for i, b := range p.Boards {
			if seen&b != 0 {
				t.Fatalf("board %v overlaps in %s", Piece(i), p.FEN())
			}
			seen |= b
		}
		if p.Boards[WhiteKing].PopCount() != 1 || p.Boards[BlackKing].PopCount() != 1 {
			t.Fatalf("king count broken in %s", p.FEN())
		}
		if depth == 0 {
			return
		}
		for _, m := range p.Moves() {
			child := p.Push(m)
			if child.Castling&^p.Castling != 0 {
				t.Fatalf("castling rights grew after %v in %s", m, p.FEN())
			}
			walk(&child, depth-1)
		}
	}
	walk(&pos, 2)
}
