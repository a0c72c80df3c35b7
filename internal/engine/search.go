package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hailam/megalodon/internal/board"
)

// Search constants. Scores are in pawns from the side to move's view.
const (
	Infinity  = 1e9
	MateScore = 100000.0
	MaxPly    = 128
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	copy(pv.moves[ply][ply+1:pv.length[ply+1]], pv.moves[ply+1][ply+1:pv.length[ply+1]])
	pv.length[ply] = max(pv.length[ply+1], ply+1)
}

func (pv *PVTable) root() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

type pendingEntry struct {
	hash  uint64
	entry Entry
}

// searcher holds the state of one iterative-deepening run. It is used by a
// single goroutine and discarded afterwards.
type searcher struct {
	ctx      context.Context
	hasher   *board.Hasher
	table    *Table
	scorer   Scorer
	deadline time.Time

	stops        *atomic.Uint64
	stopsAtStart uint64

	checkInterval uint64

	nodes   uint64
	aborted bool
	// checking is off during the first iteration so that depth 1 always
	// completes.
	checking bool

	pv PVTable

	// pending holds this iteration's table writes keyed by slot, so it
	// never outgrows the table.
	pending map[uint64]pendingEntry
}

// expired reports whether the run must stop. It is polled every
// checkInterval nodes, not per node.
func (s *searcher) expired() bool {
	if s.stops.Load() != s.stopsAtStart {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return true
	}
	return s.ctx.Err() != nil
}

// negamax returns the fail-soft score of pos from the side to move's view.
func (s *searcher) negamax(pos *board.Position, depth, ply int, alpha, beta float64) float64 {
	s.nodes++
	if s.checking && s.nodes%s.checkInterval == 0 && s.expired() {
		s.aborted = true
	}
	if s.aborted {
		return 0
	}
	s.pv.length[ply] = ply

	attacked := pos.Attacked(pos.Turn.Other())
	moves := pos.LegalMoves(attacked)
	if len(moves) == 0 {
		if attacked.IsSet(pos.KingSquare(pos.Turn)) {
			return -(MateScore - float64(ply))
		}
		return 0
	}
	if depth <= 0 || ply >= MaxPly-1 {
		return s.evaluate(pos, moves, ply, attacked)
	}

	hash := s.hasher.Hash(pos)
	sig := pos.Signature()
	ttMove := board.NoMove
	if entry, ok := s.table.Probe(hash, &sig); ok {
		ttMove = entry.Move
		// The root is always searched so that its move and PV are fresh.
		if ply > 0 && entry.Depth >= depth {
			score := scoreFromTT(entry.Score, ply)
			if entry.Bound == BoundExact ||
				(entry.Bound == BoundLower && score >= beta) ||
				(entry.Bound == BoundUpper && score <= alpha) {
				if entry.Move != board.NoMove {
					s.pv.moves[ply][ply] = entry.Move
					s.pv.length[ply] = ply + 1
				}
				return score
			}
		}
	}

	orderMoves(pos, moves, ttMove)

	alphaOrig := alpha
	best := -Infinity
	bestMove := board.NoMove
	for _, m := range moves {
		child := pos.Push(m)
		score := -s.negamax(&child, depth-1, ply+1, -beta, -alpha)
		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			bestMove = m
			if score > alpha {
				alpha = score
				s.pv.update(ply, m)
			}
		}
		if alpha >= beta {
			break
		}
	}

	bound := BoundExact
	switch {
	case best <= alphaOrig:
		bound = BoundUpper
	case best >= beta:
		bound = BoundLower
	}
	s.record(hash, Entry{Depth: depth, Move: bestMove, Score: scoreToTT(best, ply), Bound: bound, Sig: sig})
	return best
}

// evaluate calls the scorer and flips it to the side to move.
func (s *searcher) evaluate(pos *board.Position, moves []board.Move, ply int, attacked board.Bitboard) float64 {
	var v float64
	if pos.HasEval {
		v = pos.Eval
	} else {
		v = s.scorer.Score(pos, moves, ply, attacked)
	}
	if pos.Turn == board.Black {
		return -v
	}
	return v
}

// record buffers a table write until the iteration is known to complete.
// Writes that share a slot follow the table's depth-preferred rule.
func (s *searcher) record(hash uint64, e Entry) {
	slot, ok := s.table.slot(hash)
	if !ok {
		return
	}
	if old, ok := s.pending[slot]; ok && e.Depth < old.entry.Depth {
		return
	}
	s.pending[slot] = pendingEntry{hash: hash, entry: e}
}

// flush writes the buffered entries of a completed iteration.
func (s *searcher) flush() {
	for _, p := range s.pending {
		s.table.Store(p.hash, p.entry)
	}
	clear(s.pending)
}
