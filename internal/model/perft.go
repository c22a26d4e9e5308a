package model

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (b *BoardState) Perft(depth int) int {
	if depth == 0 {
		return 1
	}
	moves := b.LegalMoves()
	if depth == 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		b.Apply(m)
		nodes += b.Perft(depth - 1)
		b.Undo()
	}
	return nodes
}
