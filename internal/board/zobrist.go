package board

// DefaultSeed seeds the hasher used by the engine session.
const DefaultSeed uint64 = 0x98F107A2BEEF1234

// Hasher produces Zobrist fingerprints. Its key table is filled once by
// NewHasher and never changes, so one Hasher can be shared freely; a
// transposition table is only meaningful alongside the Hasher that filled it.
type Hasher struct {
	pieces    [PieceCount][64]uint64
	enPassant [8]uint64
	castling  [16]uint64
	side      uint64
}

// xorshift64*
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// NewHasher builds a key table from seed. A zero seed is replaced by
// DefaultSeed since xorshift never leaves the zero state.
func NewHasher(seed uint64) *Hasher {
	if seed == 0 {
		seed = DefaultSeed
	}
	rng := &prng{state: seed}
	h := &Hasher{}

	for pc := range h.pieces {
		for sq := range h.pieces[pc] {
			h.pieces[pc][sq] = rng.next()
		}
	}
	for file := range h.enPassant {
		h.enPassant[file] = rng.next()
	}
	for i := range h.castling {
		h.castling[i] = rng.next()
	}
	h.side = rng.next()
	return h
}

// Hash computes the fingerprint of p from scratch.
func (h *Hasher) Hash(p *Position) uint64 {
	var hash uint64
	for pc, bb := range p.Boards {
		for bb != 0 {
			hash ^= h.pieces[pc][bb.PopLSB()]
		}
	}
	if p.EPFlag {
		hash ^= h.enPassant[p.EPSquare.File()]
	}
	hash ^= h.castling[p.Castling]
	if p.Turn == Black {
		hash ^= h.side
	}
	return hash
}
