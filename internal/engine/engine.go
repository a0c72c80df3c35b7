// Package engine implements the iterative-deepening alpha-beta search and
// the session state around it: transposition table, scorer, time policy.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/megalodon/internal/board"
)

// Options holds the tunables of an engine session.
type Options struct {
	HashMB        int    // transposition table size
	MaxDepth      int    // iteration limit when Limits.Depth is 0
	MinStoreDepth int    // shallowest completed iteration written to the table
	CheckInterval uint64 // nodes between cancellation checks
	MoveOverhead  time.Duration
	EvalMaterial  int // percent
	EvalCenter    int // percent
	Seed          uint64
}

// DefaultOptions returns the session defaults.
func DefaultOptions() Options {
	return Options{
		HashMB:        16,
		MaxDepth:      6,
		MinStoreDepth: 2,
		CheckInterval: 4096,
		MoveOverhead:  30 * time.Millisecond,
		EvalMaterial:  100,
		EvalCenter:    100,
		Seed:          board.DefaultSeed,
	}
}

// Limits bounds a single search.
type Limits struct {
	Depth    int           // maximum depth (0 = Options.MaxDepth)
	MoveTime time.Duration // time for this move (0 = no limit)
	Infinite bool          // ignore Depth and MoveTime; stop on Stop or ctx
}

// Info reports one completed iteration.
type Info struct {
	Depth    int
	Score    float64
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // permille of the table in use
}

// Result is the outcome of a search: the deepest completed iteration.
type Result struct {
	BestMove board.Move
	PV       []board.Move
	Score    float64 // side to move's view
	Nodes    uint64
	Depth    int
	Time     time.Duration
	Stopped  bool // true if the last started iteration was cancelled
}

// Engine is a search session. It owns the hasher and the transposition
// table; searches on one Engine are serialized.
type Engine struct {
	mu     sync.Mutex
	opts   Options
	hasher *board.Hasher
	table  *Table
	scorer Scorer

	// stops counts Stop calls. A search is cancelled once the count moves
	// past the value it saw when Search was called.
	stops atomic.Uint64

	// OnInfo, if set, is called after every completed iteration from the
	// searching goroutine.
	OnInfo func(Info)
}

// New creates an engine session.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.HashMB <= 0 {
		opts.HashMB = def.HashMB
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.MinStoreDepth <= 0 {
		opts.MinStoreDepth = def.MinStoreDepth
	}
	if opts.CheckInterval == 0 {
		opts.CheckInterval = def.CheckInterval
	}
	return &Engine{
		opts:   opts,
		hasher: board.NewHasher(opts.Seed),
		table:  NewTableMB(opts.HashMB),
		scorer: NewMaterialScorer(opts.EvalMaterial, opts.EvalCenter),
	}
}

// Options returns the current session options.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetScorer replaces the leaf evaluation.
func (e *Engine) SetScorer(s Scorer) {
	e.mu.Lock()
	e.scorer = s
	e.mu.Unlock()
}

// SetWeights rebuilds the default scorer with new percentage weights.
func (e *Engine) SetWeights(material, center int) {
	e.mu.Lock()
	e.opts.EvalMaterial, e.opts.EvalCenter = material, center
	e.scorer = NewMaterialScorer(material, center)
	e.mu.Unlock()
}

// SetMaxDepth changes the default iteration limit.
func (e *Engine) SetMaxDepth(depth int) {
	if depth < 1 {
		return
	}
	e.mu.Lock()
	e.opts.MaxDepth = depth
	e.mu.Unlock()
}

// SetMoveOverhead changes the time reserved per move for communication lag.
func (e *Engine) SetMoveOverhead(d time.Duration) {
	e.mu.Lock()
	e.opts.MoveOverhead = d
	e.mu.Unlock()
}

// Resize replaces the table with an empty one of sizeMB megabytes.
func (e *Engine) Resize(sizeMB int) {
	if sizeMB < 1 {
		return
	}
	e.mu.Lock()
	e.table.Close()
	e.table = NewTableMB(sizeMB)
	e.opts.HashMB = sizeMB
	e.mu.Unlock()
}

// Hash returns the session fingerprint of pos.
func (e *Engine) Hash(pos *board.Position) uint64 {
	return e.hasher.Hash(pos)
}

// Table exposes the session transposition table.
func (e *Engine) Table() *Table {
	return e.table
}

// Search runs iterative deepening on pos until the depth limit, the move
// time, Stop or ctx ends it. A depth-1 result is always produced when pos
// has a legal move. Concurrent calls wait for each other; a Stop issued
// while a call is waiting also ends that call.
func (e *Engine) Search(ctx context.Context, pos board.Position, limits Limits) Result {
	stops := e.stops.Load()
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	maxDepth := e.opts.MaxDepth
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	if limits.Infinite {
		maxDepth = MaxPly - 1
	}
	maxDepth = min(maxDepth, MaxPly-1)

	s := &searcher{
		ctx:           ctx,
		hasher:        e.hasher,
		table:         e.table,
		scorer:        e.scorer,
		stops:         &e.stops,
		stopsAtStart:  stops,
		checkInterval: e.opts.CheckInterval,
		pending:       make(map[uint64]pendingEntry),
	}
	if limits.MoveTime > 0 && !limits.Infinite {
		s.deadline = start.Add(limits.MoveTime)
	}

	var res Result
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && s.expired() {
			res.Stopped = true
			break
		}
		s.checking = depth > 1
		clear(s.pending)

		score := s.negamax(&pos, depth, 0, -Infinity, Infinity)
		if s.aborted {
			res.Stopped = true
			break
		}

		pv := s.pv.root()
		if len(pv) == 0 {
			// No legal moves: the score is terminal and deeper search is moot.
			res.Score, res.Depth = score, depth
			break
		}
		if depth >= e.opts.MinStoreDepth {
			s.flush()
		}

		res.BestMove, res.PV, res.Score, res.Depth = pv[0], pv, score, depth
		res.Nodes, res.Time = s.nodes, time.Since(start)

		if e.OnInfo != nil {
			e.OnInfo(Info{
				Depth:    depth,
				Score:    score,
				Nodes:    s.nodes,
				Time:     res.Time,
				PV:       pv,
				HashFull: e.table.HashFull(),
			})
		}

		// A forced mate inside the horizon will not change with depth.
		if !limits.Infinite && math.Abs(score) > MateScore-MaxPly && int(MateScore-math.Abs(score)) <= depth {
			break
		}
	}

	res.Nodes, res.Time = s.nodes, time.Since(start)
	return res
}

// Stop asks the running search, and any search already waiting to run, to
// finish. It returns at once; the search notices at its next checkpoint.
func (e *Engine) Stop() {
	e.stops.Add(1)
}

// Clear empties the transposition table.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.table.Clear()
	e.mu.Unlock()
}

// Close releases the transposition table. The engine must not be used after.
func (e *Engine) Close() {
	e.Stop()
	e.mu.Lock()
	e.table.Close()
	e.mu.Unlock()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return board.Perft(pos, depth)
}

// Budget turns clock state into a move time using the session overhead.
func (e *Engine) Budget(timeLeft, inc time.Duration, movesToGo int) time.Duration {
	return AllotWithOverhead(timeLeft, inc, movesToGo, e.Options().MoveOverhead)
}

// ScoreString formats a score the way the UCI "score" field expects:
// "cp N" or "mate N".
func ScoreString(score float64) string {
	if score > MateScore-MaxPly {
		plies := int(MateScore - score)
		return fmt.Sprintf("mate %d", (plies+1)/2)
	}
	if score < -MateScore+MaxPly {
		plies := int(MateScore + score)
		return fmt.Sprintf("mate -%d", (plies+1)/2)
	}
	return fmt.Sprintf("cp %d", int(math.Round(score*100)))
}
