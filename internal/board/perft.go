package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := p.Moves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := p.Push(m)
		nodes += Perft(&child, depth-1)
	}
	return nodes
}

// Divide returns the perft count below each root move, keyed by move text.
func Divide(p *Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth < 1 {
		return out
	}
	for _, m := range p.Moves() {
		child := p.Push(m)
		out[m.String()] = Perft(&child, depth-1)
	}
	return out
}
