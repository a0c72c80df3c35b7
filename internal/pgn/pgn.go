// Package pgn imports games written in Portable Game Notation and replays
// them on the engine's board.
package pgn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/hailam/megalodon/internal/board"
)

// ErrInvalidPGN is returned for text that does not hold a playable game.
var ErrInvalidPGN = errors.New("pgn: invalid game")

// untaggedHeader is put in front of movetext that has no tags; the parser
// only finds a game after a tag section.
const untaggedHeader = "[Event \"?\"]\n\n"

// Game is an imported game: its tags, the position it starts from, the main
// line and the position the main line reaches.
type Game struct {
	Event   string
	White   string
	Black   string
	Result  string
	Start   board.Position
	Moves   []board.Move
	Final   board.Position
	Outcome string
}

// Import parses the first game in text. Bare movetext without a tag section
// is accepted. Games that set up their own start position through a FEN tag
// are replayed from it.
func Import(text string) (*Game, error) {
	if s := strings.TrimSpace(text); s != "" && !strings.HasPrefix(s, "[") {
		text = untaggedHeader + s
	}
	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPGN, err)
	}
	cg := chess.NewGame(opt)

	g := &Game{
		Event:   cg.GetTagPair("Event"),
		White:   cg.GetTagPair("White"),
		Black:   cg.GetTagPair("Black"),
		Result:  cg.GetTagPair("Result"),
		Outcome: cg.Outcome().String(),
		Start:   board.NewPosition(),
	}
	if fen := cg.GetTagPair("FEN"); fen != "" {
		if g.Start, err = board.ParseFEN(fen); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPGN, err)
		}
	}

	pos := g.Start
	for i, cm := range cg.Moves() {
		text := chess.UCINotation{}.Encode(nil, cm)
		m, err := board.FindMove(&pos, text)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d (%s): %v", ErrInvalidPGN, i+1, text, err)
		}
		g.Moves = append(g.Moves, m)
		pos = pos.Push(m)
	}
	g.Final = pos
	return g, nil
}

// UCIMoves returns the main line in UCI move text.
func (g *Game) UCIMoves() []string {
	out := make([]string, len(g.Moves))
	for i, m := range g.Moves {
		out[i] = m.String()
	}
	return out
}

// Positions returns the start position followed by the position after each
// move of the main line.
func (g *Game) Positions() []board.Position {
	out := make([]board.Position, 0, len(g.Moves)+1)
	pos := g.Start
	out = append(out, pos)
	for _, m := range g.Moves {
		pos = pos.Push(m)
		out = append(out, pos)
	}
	return out
}
