package board

import (
	"sort"
	"strings"
	"testing"
)

func moveSet(t *testing.T, fen string) []string {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	var out []string
	for _, m := range pos.Moves() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want []string // full sorted move list
	}{
		{
			name: "bare kings",
			fen:  "4k3/8/8/8/8/8/8/4K3 w - - 0 1",
			want: []string{"e1d1", "e1d2", "e1e2", "e1f1", "e1f2"},
		},
		{
			name: "kings in opposition",
			fen:  "8/8/8/8/8/4k3/8/4K3 w - - 0 1",
			want: []string{"e1d1", "e1f1"},
		},
		{
			name: "double check allows only king steps",
			fen:  "4k3/8/3N4/8/8/8/8/4R2K b - - 0 1",
			want: []string{"e8d7", "e8d8", "e8f8"},
		},
		{
			name: "single slider check blocks",
			fen:  "k3r3/8/8/8/2B5/8/8/4K3 w - - 0 1",
			want: []string{"c4e2", "c4e6", "e1d1", "e1d2", "e1f1", "e1f2"},
		},
		{
			name: "king may not retreat along the checking ray",
			fen:  "k3r3/8/8/8/4K3/8/8/8 w - - 0 1",
			want: []string{"e4d3", "e4d4", "e4d5", "e4f3", "e4f4", "e4f5"},
		},
		{
			name: "knight check cannot be blocked",
			fen:  "k7/8/8/8/8/3n4/8/R3K3 w - - 0 1",
			want: []string{"e1d1", "e1d2", "e1e2", "e1f1"},
		},
		{
			name: "pinned rook slides along the pin",
			fen:  "4r1k1/8/8/8/4R3/8/8/4K3 w - - 0 1",
			want: []string{"e1d1", "e1d2", "e1e2", "e1f1", "e1f2", "e4e2", "e4e3", "e4e5", "e4e6", "e4e7", "e4e8"},
		},
		{
			name: "promotion emits four moves",
			fen:  "k7/4P3/8/8/8/8/8/K7 w - - 0 1",
			want: []string{"a1a2", "a1b1", "a1b2", "e7e8b", "e7e8n", "e7e8q", "e7e8r"},
		},
		{
			name: "en passant resolves pawn check",
			fen:  "8/8/8/2k5/3Pp3/8/8/4K3 b - d3 0 1",
			want: []string{"c5b4", "c5b5", "c5b6", "c5c4", "c5c6", "c5d4", "c5d5", "c5d6", "e4d3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := moveSet(t, tc.fen)
			if strings.Join(got, " ") != strings.Join(tc.want, " ") {
				t.Errorf("moves = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want bool
	}{
		{"kingside open", "k7/8/8/8/8/8/8/4K2R w K - 0 1", "e1g1", true},
		{"queenside open", "k7/8/8/8/8/8/8/R3K3 w Q - 0 1", "e1c1", true},
		{"no right", "k7/8/8/8/8/8/8/4K2R w - - 0 1", "e1g1", false},
		{"blocked", "k7/8/8/8/8/8/8/4KN1R w K - 0 1", "e1g1", false},
		{"b-file blocker", "k7/8/8/8/8/8/8/RN2K3 w Q - 0 1", "e1c1", false},
		{"transit attacked", "k4r2/8/8/8/8/8/8/4K2R w K - 0 1", "e1g1", false},
		{"b-file attacked is fine", "kr6/8/8/8/8/8/8/R3K3 w Q - 0 1", "e1c1", true},
		{"in check", "k3r3/8/8/8/8/8/8/4K2R w K - 0 1", "e1g1", false},
		{"black kingside", "r3k2r/8/8/8/8/8/8/K7 b kq - 0 1", "e8g8", true},
		{"black queenside", "r3k2r/8/8/8/8/8/8/K7 b kq - 0 1", "e8c8", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			found := false
			for _, m := range moveSet(t, tc.fen) {
				if m == tc.move {
					found = true
				}
			}
			if found != tc.want {
				t.Errorf("%s legal = %v, want %v", tc.move, found, tc.want)
			}
		})
	}
}

func TestFindMove(t *testing.T) {
	pos := NewPosition()
	if _, err := FindMove(&pos, "e2e4"); err != nil {
		t.Fatalf("FindMove(e2e4): %v", err)
	}
	if _, err := FindMove(&pos, "e2e5"); err == nil {
		t.Error("FindMove(e2e5) accepted an illegal move")
	}
	if _, err := FindMove(&pos, "e2"); err == nil {
		t.Error("FindMove(e2) accepted malformed text")
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"e2e4", false},
		{"e7e8q", false},
		{"a7a8n", false},
		{"e7e8k", true},
		{"e9e4", true},
		{"e2e4e", true},
		{"", true},
	}
	for _, tc := range tests {
		m, err := ParseMove(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMove(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && m.String() != tc.in {
			t.Errorf("ParseMove(%q).String() = %q", tc.in, m.String())
		}
	}
}
