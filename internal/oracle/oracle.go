// Package oracle runs independent move generators over the same positions
// as the engine's, for cross-checking perft counts and legal move sets.
package oracle

import (
	"fmt"
	"sort"

	"github.com/corentings/chess/v2"
	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/megalodon/internal/board"
)

// Mismatch is one root move whose subtree count differs between the
// engine and the reference.
type Mismatch struct {
	Move string
	Got  uint64 // engine count, 0 if the engine lacks the move
	Want uint64 // reference count, 0 if the reference lacks the move
}

// normalize validates fen with the engine's parser, so the reference
// generators only ever see well-formed input.
func normalize(fen string) (string, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return "", err
	}
	return pos.FEN(), nil
}

// Perft counts leaf nodes with dragontoothmg.
func Perft(fen string, depth int) (uint64, error) {
	fen, err := normalize(fen)
	if err != nil {
		return 0, err
	}
	b := dragontoothmg.ParseFen(fen)
	return perft(&b, depth), nil
}

func perft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += perft(b, depth-1)
		unapply()
	}
	return nodes
}

// Divide counts leaf nodes below each root move with dragontoothmg.
func Divide(fen string, depth int) (map[string]uint64, error) {
	fen, err := normalize(fen)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64)
	if depth < 1 {
		return out, nil
	}
	b := dragontoothmg.ParseFen(fen)
	moves := b.GenerateLegalMoves()
	for i := range moves {
		unapply := b.Apply(moves[i])
		out[moves[i].String()] = perft(&b, depth-1)
		unapply()
	}
	return out, nil
}

// LegalMoves lists the legal moves of fen in UCI text, sorted, as computed
// by corentings/chess.
func LegalMoves(fen string) ([]string, error) {
	fen, err := normalize(fen)
	if err != nil {
		return nil, err
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("chess: %w", err)
	}
	game := chess.NewGame(opt)
	valid := game.ValidMoves()
	out := make([]string, len(valid))
	for i := range valid {
		out[i] = chess.UCINotation{}.Encode(game.Position(), &valid[i])
	}
	sort.Strings(out)
	return out, nil
}

// Compare divides pos at depth with both the engine and dragontoothmg and
// returns the root moves whose counts differ, sorted by move.
func Compare(pos *board.Position, depth int) ([]Mismatch, error) {
	want, err := Divide(pos.FEN(), depth)
	if err != nil {
		return nil, err
	}
	got := board.Divide(pos, depth)

	var out []Mismatch
	for m, n := range want {
		if got[m] != n {
			out = append(out, Mismatch{Move: m, Got: got[m], Want: n})
		}
	}
	for m, n := range got {
		if _, ok := want[m]; !ok {
			out = append(out, Mismatch{Move: m, Got: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Move < out[j].Move })
	return out, nil
}

// SameMoves reports the moves only one side generates for pos: missing
// from the engine, and extra in the engine, compared with corentings/chess.
func SameMoves(pos *board.Position) (missing, extra []string, err error) {
	want, err := LegalMoves(pos.FEN())
	if err != nil {
		return nil, nil, err
	}
	have := make(map[string]bool)
	for _, m := range pos.Moves() {
		have[m.String()] = true
	}
	for _, m := range want {
		if !have[m] {
			missing = append(missing, m)
		}
		delete(have, m)
	}
	for m := range have {
		extra = append(extra, m)
	}
	sort.Strings(extra)
	return missing, extra, nil
}
