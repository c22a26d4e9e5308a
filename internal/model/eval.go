package model

const (
	// CheckmateScore dominates any material sum.
	CheckmateScore = 1000
	StalemateScore = 0
)

// ScoreMaterial sums piece values, positive for white and negative for black.
func (b *BoardState) ScoreMaterial() int {
	score := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b.Board[y][x]
			if p.IsEmpty() {
				continue
			}
			score += p.Color.Sign() * p.Type.Value()
		}
	}
	return score
}

// ScorePosition scores from white's point of view. Terminal states come from the
// Checkmate/Stalemate flags; they are computed first if LegalMoves has not run on this
// position yet.
func (b *BoardState) ScorePosition() int {
	if !b.statusKnown {
		b.LegalMoves()
	}
	switch {
	case b.Checkmate && b.ToMove == White:
		return -CheckmateScore
	case b.Checkmate:
		return CheckmateScore
	case b.Stalemate:
		return StalemateScore
	}
	return b.ScoreMaterial()
}

// Evaluate refreshes the terminal flags and scores the position.
func (b *BoardState) Evaluate() int {
	b.LegalMoves()
	return b.ScorePosition()
}
