package model

// Apply plays m on the board. m must come from LegalMoves or PseudoMoves for this position.
func (b *BoardState) Apply(m Move) {
	m.prevCastling = b.Castling
	m.prevEnPassant = b.EnPassantTarget

	placed := m.Piece
	if m.IsPromotion {
		placed.Type = Queen
	}
	b.Board.set(m.From, Empty)
	b.Board.set(m.To, placed)

	switch {
	case m.Piece.Type == King:
		b.setKingPosition(m.Piece.Color, m.To)
		if m.IsCastle {
			rookFrom, rookTo := castleRookSquares(m)
			b.Board.set(rookTo, b.Board.at(rookFrom))
			b.Board.set(rookFrom, Empty)
		}
	case m.IsEnPassant:
		b.Board.set(Position{X: m.To.X, Y: m.From.Y}, Empty)
	}

	if m.Piece.Type == Pawn && abs(m.To.Y-m.From.Y) == 2 {
		b.EnPassantTarget = Position{X: m.From.X, Y: (m.From.Y + m.To.Y) / 2}
	} else {
		b.EnPassantTarget = NoPosition
	}
	b.updateCastlingRights(m)

	b.History = append(b.History, m)
	b.ToMove = b.ToMove.Opponent()
	b.Checkmate, b.Stalemate, b.statusKnown = false, false, false
}

// Undo takes back the last applied move. It does nothing when there is no history.
func (b *BoardState) Undo() {
	if len(b.History) == 0 {
		return
	}
	m := b.History[len(b.History)-1]
	b.History = b.History[:len(b.History)-1]

	b.Board.set(m.From, m.Piece)
	if m.IsEnPassant {
		b.Board.set(m.To, Empty)
		b.Board.set(Position{X: m.To.X, Y: m.From.Y}, m.Captured)
	} else {
		b.Board.set(m.To, m.Captured)
	}
	if m.Piece.Type == King {
		b.setKingPosition(m.Piece.Color, m.From)
		if m.IsCastle {
			rookFrom, rookTo := castleRookSquares(m)
			b.Board.set(rookFrom, b.Board.at(rookTo))
			b.Board.set(rookTo, Empty)
		}
	}

	b.Castling = m.prevCastling
	b.EnPassantTarget = m.prevEnPassant
	b.ToMove = m.Piece.Color
	b.Checkmate, b.Stalemate, b.statusKnown = false, false, false
}

// updateCastlingRights drops rights once a king moves or a rook leaves or is captured on
// its home corner.
func (b *BoardState) updateCastlingRights(m Move) {
	if m.Piece.Type == King {
		if m.Piece.Color == White {
			b.Castling.WhiteKingSide, b.Castling.WhiteQueenSide = false, false
		} else {
			b.Castling.BlackKingSide, b.Castling.BlackQueenSide = false, false
		}
	}
	for _, sq := range [2]Position{m.From, m.To} {
		switch sq {
		case Position{X: 0, Y: 7}:
			b.Castling.WhiteQueenSide = false
		case Position{X: 7, Y: 7}:
			b.Castling.WhiteKingSide = false
		case Position{X: 0, Y: 0}:
			b.Castling.BlackQueenSide = false
		case Position{X: 7, Y: 0}:
			b.Castling.BlackKingSide = false
		}
	}
}
