package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate: Ra8 against Kh8 boxed in by its own pawns.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	checkers, n := pos.Checkers(pos.Attacked(White))
	if n != 1 || checkers != SquareBB(A8) {
		t.Errorf("Checkers = %v (%d), want a8 (1)", checkers.LSB(), n)
	}
	if moves := pos.Moves(); len(moves) != 0 {
		t.Errorf("black has %d legal moves, want 0: %v", len(moves), moves)
	}
	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.IsStalemate() {
		t.Error("checkmate reported as stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// The king can take the undefended rook.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.InCheck() {
		t.Fatal("expected black to be in check")
	}
	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}
	if !pos.IsStalemate() {
		t.Errorf("expected stalemate, moves = %v", pos.Moves())
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/2B1K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/1N2K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/1NB1K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/3RK3 w - - 0 1", false},
	}
	for _, tc := range tests {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("IsInsufficientMaterial(%q) = %v, want %v", tc.fen, got, tc.want)
		}
	}
}
