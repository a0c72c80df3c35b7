// Package uci implements the Universal Chess Interface front end.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/megalodon/internal/board"
	"github.com/hailam/megalodon/internal/book"
	"github.com/hailam/megalodon/internal/engine"
	"github.com/hailam/megalodon/internal/storage"
)

// Option limits advertised to the GUI.
const (
	maxHashMB       = 4096
	maxDepth        = 64
	maxMoveOverhead = 5000
	maxEvalWeight   = 1000
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	store  *storage.Storage
	in     io.Reader

	outMu sync.Mutex
	out   io.Writer

	position board.Position
	// played holds the moves from the start position, or is nil when the
	// position was set up from a FEN.
	played    []string
	fromStart bool

	// Book configuration
	ownBook  bool
	bookPath string
	book     *book.Book
	rnd      *rand.Rand

	// Search state
	searchDone chan struct{}
	cancel     context.CancelFunc
}

// New creates a new UCI protocol handler reading commands from in and
// writing responses to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	u := &UCI{
		engine:    eng,
		in:        in,
		out:       out,
		position:  board.NewPosition(),
		fromStart: true,
		bookPath:  storage.DefaultBookPath(),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	eng.OnInfo = u.sendInfo
	return u
}

// Attach makes the handler persist its options and search results in s,
// and applies the options stored there.
func (u *UCI) Attach(s *storage.Storage) error {
	u.store = s
	set, found, err := s.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !found {
		return nil
	}
	if set.HashMB > 0 {
		u.engine.Resize(set.HashMB)
	}
	u.engine.SetMaxDepth(set.MaxDepth)
	u.engine.SetMoveOverhead(set.MoveOverhead)
	u.engine.SetWeights(set.EvalMaterial, set.EvalCenter)
	u.ownBook = set.OwnBook
	if set.BookPath != "" {
		u.bookPath = set.BookPath
	}
	return nil
}

// Run reads commands until "quit" or the end of input. A running search is
// stopped before Run returns.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println(u.position.String())
		case "perft":
			u.handlePerft(args)
		case "hash":
			u.printf("hash %016x\n", u.engine.Hash(&u.position))
		default:
			u.printf("info string unknown command: %s\n", cmd)
		}
	}

	u.handleStop()
	return scanner.Err()
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	u.printf("%s\n", s)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.handleStop()
	opts := u.engine.Options()
	u.println("id name Megalodon")
	u.println("id author the Megalodon developers")
	u.println("")
	u.printf("option name Hash type spin default %d min 1 max %d\n", opts.HashMB, maxHashMB)
	u.printf("option name Depth type spin default %d min 1 max %d\n", opts.MaxDepth, maxDepth)
	u.printf("option name MoveOverhead type spin default %d min 0 max %d\n", opts.MoveOverhead.Milliseconds(), maxMoveOverhead)
	u.printf("option name EvalMaterial type spin default %d min 0 max %d\n", opts.EvalMaterial, maxEvalWeight)
	u.printf("option name EvalCenter type spin default %d min 0 max %d\n", opts.EvalCenter, maxEvalWeight)
	u.printf("option name OwnBook type check default %t\n", u.ownBook)
	u.printf("option name BookPath type string default %s\n", orEmpty(u.bookPath))
	u.println("uciok")
}

func orEmpty(s string) string {
	if s == "" {
		return "<empty>"
	}
	return s
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = board.NewPosition()
	u.played, u.fromStart = nil, true
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
		u.fromStart = true
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.fromStart = false
	default:
		return
	}

	u.played = nil
	if movesAt < len(args) {
		for _, text := range args[movesAt+1:] {
			m, err := board.FindMove(&pos, text)
			if err != nil {
				u.printf("info string %v\n", err)
				break
			}
			pos = pos.Push(m)
			u.played = append(u.played, text)
		}
	}
	u.position = pos
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// ParseGo parses "go" command arguments. Unknown tokens are ignored.
func ParseGo(args []string) GoOptions {
	opts := GoOptions{}
	next := func(i *int) int {
		if *i+1 >= len(args) {
			return 0
		}
		*i++
		n, _ := strconv.Atoi(args[*i])
		return n
	}
	ms := func(i *int) time.Duration {
		return time.Duration(next(i)) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			opts.Depth = next(&i)
		case "movetime":
			opts.MoveTime = ms(&i)
		case "infinite":
			opts.Infinite = true
		case "wtime":
			opts.WTime = ms(&i)
		case "btime":
			opts.BTime = ms(&i)
		case "winc":
			opts.WInc = ms(&i)
		case "binc":
			opts.BInc = ms(&i)
		case "movestogo":
			opts.MovesToGo = next(&i)
		}
	}
	return opts
}

// limits converts GoOptions to engine limits for the side to move.
func (u *UCI) limits(opts GoOptions) engine.Limits {
	if opts.Infinite {
		return engine.Limits{Infinite: true}
	}
	limits := engine.Limits{Depth: opts.Depth}
	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
		return limits
	}

	ourTime, ourInc := opts.WTime, opts.WInc
	if u.position.Turn == board.Black {
		ourTime, ourInc = opts.BTime, opts.BInc
	}
	if ourTime > 0 {
		limits.MoveTime = u.engine.Budget(ourTime, ourInc, opts.MovesToGo)
	}
	return limits
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	opts := ParseGo(args)

	if m, ok := u.bookMove(); ok {
		u.printf("bestmove %s\n", m)
		return
	}

	limits := u.limits(opts)
	pos := u.position
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	u.cancel, u.searchDone = cancel, done

	go func() {
		defer close(done)
		defer cancel()

		res := u.engine.Search(ctx, pos, limits)
		u.record(&pos, res)

		if res.BestMove == board.NoMove {
			// Only for checkmate/stalemate
			u.println("bestmove 0000")
			return
		}
		if len(res.PV) > 1 {
			u.printf("bestmove %s ponder %s\n", res.BestMove, res.PV[1])
			return
		}
		u.printf("bestmove %s\n", res.BestMove)
	}()
}

// bookMove consults the opening book when enabled and the game started
// from the initial position.
func (u *UCI) bookMove() (board.Move, bool) {
	if !u.ownBook || !u.fromStart {
		return board.NoMove, false
	}
	if u.book == nil {
		b, err := book.LoadFile(u.bookPath)
		if err != nil {
			u.printf("info string book: %v\n", err)
			u.ownBook = false
			return board.NoMove, false
		}
		u.book = b
	}
	return u.book.Probe(&u.position, u.played, u.rnd)
}

// record journals a finished search when storage is attached.
func (u *UCI) record(pos *board.Position, res engine.Result) {
	if u.store == nil || res.BestMove == board.NoMove {
		return
	}
	pv := make([]string, len(res.PV))
	for i, m := range res.PV {
		pv[i] = m.String()
	}
	err := u.store.RecordAnalysis(&storage.Analysis{
		FEN:      pos.FEN(),
		BestMove: res.BestMove.String(),
		PV:       pv,
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		Time:     res.Time,
	})
	if err != nil {
		log.Printf("record analysis: %v", err)
	}
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.Info) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, "score "+engine.ScoreString(info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searchDone == nil {
		return
	}
	u.cancel()
	u.engine.Stop()
	<-u.searchDone
	u.searchDone, u.cancel = nil, nil
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	u.handleStop()

	// Format: setoption name <name> value <value>
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}
	val := strings.Join(value, " ")
	spin := func(lo, hi int) (int, bool) {
		n, err := strconv.Atoi(val)
		if err != nil || n < lo || n > hi {
			u.printf("info string invalid value %q for %s\n", val, strings.Join(name, " "))
			return 0, false
		}
		return n, true
	}

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		if n, ok := spin(1, maxHashMB); ok {
			u.engine.Resize(n)
		}
	case "depth":
		if n, ok := spin(1, maxDepth); ok {
			u.engine.SetMaxDepth(n)
		}
	case "moveoverhead":
		if n, ok := spin(0, maxMoveOverhead); ok {
			u.engine.SetMoveOverhead(time.Duration(n) * time.Millisecond)
		}
	case "evalmaterial":
		if n, ok := spin(0, maxEvalWeight); ok {
			u.engine.SetWeights(n, u.engine.Options().EvalCenter)
		}
	case "evalcenter":
		if n, ok := spin(0, maxEvalWeight); ok {
			u.engine.SetWeights(u.engine.Options().EvalMaterial, n)
		}
	case "ownbook":
		u.ownBook = strings.EqualFold(val, "true")
	case "bookpath":
		if val == "<empty>" {
			val = ""
		}
		u.bookPath = val
		u.book = nil
	default:
		u.printf("info string unknown option: %s\n", strings.Join(name, " "))
		return
	}
	u.saveSettings()
}

func (u *UCI) saveSettings() {
	if u.store == nil {
		return
	}
	opts := u.engine.Options()
	err := u.store.SaveSettings(&storage.Settings{
		HashMB:       opts.HashMB,
		MaxDepth:     opts.MaxDepth,
		MoveOverhead: opts.MoveOverhead,
		EvalMaterial: opts.EvalMaterial,
		EvalCenter:   opts.EvalCenter,
		OwnBook:      u.ownBook,
		BookPath:     u.bookPath,
	})
	if err != nil {
		log.Printf("save settings: %v", err)
	}
}

// handlePerft runs a perft test, printing the count below each root move.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}

	start := time.Now()
	div := board.Divide(&u.position, depth)
	elapsed := time.Since(start)

	moves := make([]string, 0, len(div))
	var nodes uint64
	for m, n := range div {
		moves = append(moves, m)
		nodes += n
	}
	sort.Strings(moves)
	for _, m := range moves {
		u.printf("%s: %d\n", m, div[m])
	}

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
