package oracle

import (
	"testing"

	"github.com/hailam/megalodon/internal/board"
)

var positions = []struct {
	name  string
	fen   string
	depth int
}{
	{"start", board.StartFEN, 3},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2},
	{"position 3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3},
	{"position 4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 2},
	{"position 5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 2},
	{"ep pin", "8/8/8/2k5/3Pp3/8/8/4K2Q b - d3 0 1", 2},
}

func TestPerftAgreesWithReference(t *testing.T) {
	for _, tc := range positions {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			mismatches, err := Compare(&pos, tc.depth)
			if err != nil {
				t.Fatalf("Compare: %v", err)
			}
			for _, m := range mismatches {
				t.Errorf("%s: got %d, want %d", m.Move, m.Got, m.Want)
			}

			want, err := Perft(tc.fen, tc.depth)
			if err != nil {
				t.Fatal(err)
			}
			if got := board.Perft(&pos, tc.depth); got != want {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, want)
			}
		})
	}
}

func TestLegalMovesAgreeWithReference(t *testing.T) {
	for _, tc := range positions {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			// Walk one ply so that positions after captures, castling and
			// promotions are covered too.
			children := []board.Position{pos}
			for _, m := range pos.Moves() {
				children = append(children, pos.Push(m))
			}
			for i := range children {
				missing, extra, err := SameMoves(&children[i])
				if err != nil {
					t.Fatalf("SameMoves: %v", err)
				}
				if len(missing) > 0 || len(extra) > 0 {
					t.Errorf("%s: missing %v, extra %v", children[i].FEN(), missing, extra)
				}
			}
		})
	}
}

func TestStartPerft(t *testing.T) {
	n, err := Perft(board.StartFEN, 3)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8902 {
		t.Errorf("perft(3) = %d, want 8902", n)
	}
	div, err := Divide(board.StartFEN, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(div) != 20 || div["e2e4"] != 1 {
		t.Errorf("divide(1) = %v", div)
	}
}

func TestInvalidFEN(t *testing.T) {
	if _, err := Perft("not a fen", 1); err == nil {
		t.Error("Perft accepted an invalid FEN")
	}
	if _, err := LegalMoves("8/8/8 w - - 0 1"); err == nil {
		t.Error("LegalMoves accepted an invalid FEN")
	}
}
