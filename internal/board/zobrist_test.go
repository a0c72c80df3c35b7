package board

import (
	"math/rand"
	"testing"
)

func TestHashTransposition(t *testing.T) {
	h := NewHasher(DefaultSeed)
	a := pushAll(t, StartFEN, "g1f3", "g8f6", "b1c3")
	b := pushAll(t, StartFEN, "b1c3", "g8f6", "g1f3")
	if h.Hash(&a) != h.Hash(&b) {
		t.Errorf("transposed positions hash differently: %x vs %x", h.Hash(&a), h.Hash(&b))
	}
	parsed, err := ParseFEN(a.FEN())
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if h.Hash(&parsed) != h.Hash(&a) {
		t.Error("parsed position hashes differently from pushed one")
	}
}

func TestHashSensitivity(t *testing.T) {
	h := NewHasher(DefaultSeed)
	base, _ := ParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 1")
	want := h.Hash(&base)

	variants := map[string]func(p *Position){
		"side":     func(p *Position) { p.Turn = Black },
		"castling": func(p *Position) { p.Castling &^= WhiteKingSideCastle },
		"ep flag":  func(p *Position) { p.EPFlag = false },
		"ep file":  func(p *Position) { p.EPSquare = F6 },
		"piece":    func(p *Position) { p.Boards[WhiteRook] ^= SquareBB(A1) | SquareBB(B1) },
		"piece kind": func(p *Position) {
			p.Boards[WhiteRook] &^= SquareBB(A1)
			p.Boards[WhiteQueen] |= SquareBB(A1)
		},
	}
	for name, mutate := range variants {
		p := base
		mutate(&p)
		if h.Hash(&p) == want {
			t.Errorf("%s change left hash unchanged", name)
		}
	}

	// Counters and history are not part of the fingerprint.
	p := base
	p.HalfMove, p.FullMove = 40, 77
	p.History = []Move{NewMove(E2, E4)}
	if h.Hash(&p) != want {
		t.Error("counters changed the hash")
	}
}

func TestHashSampledCollisions(t *testing.T) {
	h := NewHasher(DefaultSeed)
	rng := rand.New(rand.NewSource(7))
	seen := make(map[uint64]Signature)

	for game := 0; game < 20; game++ {
		pos := NewPosition()
		for ply := 0; ply < 80; ply++ {
			key := h.Hash(&pos)
			if sig, ok := seen[key]; ok && sig != pos.Signature() {
				t.Fatalf("hash %x shared by different positions", key)
			}
			seen[key] = pos.Signature()

			moves := pos.Moves()
			if len(moves) == 0 {
				break
			}
			pos = pos.Push(moves[rng.Intn(len(moves))])
		}
	}
	if len(seen) < 500 {
		t.Errorf("only %d distinct positions sampled", len(seen))
	}
}

func TestHasherSeeds(t *testing.T) {
	pos := NewPosition()
	a, b := NewHasher(1), NewHasher(2)
	if a.Hash(&pos) == b.Hash(&pos) {
		t.Error("different seeds produced the same key")
	}
	if NewHasher(1).Hash(&pos) != a.Hash(&pos) {
		t.Error("same seed is not deterministic")
	}
	if NewHasher(0).Hash(&pos) != NewHasher(DefaultSeed).Hash(&pos) {
		t.Error("zero seed should fall back to DefaultSeed")
	}
}
