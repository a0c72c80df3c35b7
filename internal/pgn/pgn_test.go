package pgn

import (
	"errors"
	"strings"
	"testing"

	"github.com/hailam/megalodon/internal/board"
)

const scholarsMate = `[Event "Casual"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0
`

func TestImport(t *testing.T) {
	g, err := Import(scholarsMate)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if g.Event != "Casual" || g.White != "Alice" || g.Black != "Bob" || g.Result != "1-0" {
		t.Errorf("tags = %q %q %q %q", g.Event, g.White, g.Black, g.Result)
	}

	want := "e2e4 e7e5 f1c4 b8c6 d1h5 g8f6 h5f7"
	if got := strings.Join(g.UCIMoves(), " "); got != want {
		t.Errorf("moves = %s, want %s", got, want)
	}
	if !g.Final.IsCheckmate() {
		t.Errorf("final position is not mate:\n%s", g.Final.String())
	}
	if g.Start.FEN() != board.StartFEN {
		t.Errorf("start = %s", g.Start.FEN())
	}

	positions := g.Positions()
	if len(positions) != 8 {
		t.Fatalf("Positions returned %d, want 8", len(positions))
	}
	if positions[7].FEN() != g.Final.FEN() {
		t.Error("last position differs from Final")
	}
	if len(g.Final.History) != 7 {
		t.Errorf("history length %d", len(g.Final.History))
	}
}

func TestImportSpecialMoves(t *testing.T) {
	text := `[Event "?"]

1. e4 d5 2. exd5 e5 3. dxe6 Be7 4. exf7+ Kf8 5. fxg8=N Rxg8 6. Nf3 Nc6 7. Bc4 Nd4 8. O-O *
`
	g, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	moves := g.UCIMoves()
	for _, want := range []string{"d5e6", "f7g8n", "e1g1"} {
		found := false
		for _, m := range moves {
			found = found || m == want
		}
		if !found {
			t.Errorf("%s missing from %v", want, moves)
		}
	}
	if g.Final.PieceAt(board.F1) != board.WhiteRook || g.Final.PieceAt(board.G1) != board.WhiteKing {
		t.Errorf("castling not replayed:\n%s", g.Final.String())
	}
}

func TestImportFromFEN(t *testing.T) {
	text := `[Event "Endgame"]
[SetUp "1"]
[FEN "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"]

1. Ra8# 1-0
`
	g, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if g.Start.FEN() != "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1" {
		t.Errorf("start = %s", g.Start.FEN())
	}
	if len(g.Moves) != 1 || g.Moves[0].String() != "a1a8" {
		t.Errorf("moves = %v", g.UCIMoves())
	}
}

func TestImportMovetextOnly(t *testing.T) {
	g, err := Import("  1. f3 e5 2. g4 *\n")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := strings.Join(g.UCIMoves(), " "); got != "f2f3 e7e5 g2g4" {
		t.Errorf("moves = %s", got)
	}
	want := "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq g3 0 2"
	if g.Final.FEN() != want {
		t.Errorf("final = %s, want %s", g.Final.FEN(), want)
	}
}

func TestImportErrors(t *testing.T) {
	for _, text := range []string{
		"",
		"1. e4 e5 2. Ke3 Ke6 3. Qxh8",
	} {
		if _, err := Import(text); !errors.Is(err, ErrInvalidPGN) {
			t.Errorf("Import(%q): err = %v, want ErrInvalidPGN", text, err)
		}
	}
}
