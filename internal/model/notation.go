package model

import "fmt"

// PlayPly applies m and returns its log record with short algebraic notation,
// e.g. "Nf3", "exd5", "O-O", "e8=Q+".
func (b *BoardState) PlayPly(m Move) Ply {
	ply := b.makePly(m)
	b.Apply(m)
	if b.InCheck() {
		if len(b.LegalMoves()) == 0 {
			ply.Notation += "#"
		} else {
			ply.Notation += "+"
		}
	}
	return ply
}

func (b *BoardState) makePly(m Move) Ply {
	ply := Ply{
		Piece:     m.Piece,
		From:      m.From,
		To:        m.To,
		Promotion: m.IsPromotion,
		Move:      m.ToAlgebraic(),
		Notation:  b.getNotation(m),
	}
	if !m.Captured.IsEmpty() {
		captured := m.Captured
		ply.CapturedPiece = &captured
	}
	if m.IsCastle {
		rookFrom, rookTo := castleRookSquares(m)
		ply.CastleRookMove = &CastleRookMove{From: rookFrom, To: rookTo}
	}
	return ply
}

func (b *BoardState) getNotation(m Move) string {
	if m.IsCastle {
		if m.To.X == 6 {
			return "O-O"
		}
		return "O-O-O"
	}
	capture := ""
	if !m.Captured.IsEmpty() {
		capture = "x"
	}
	if m.Piece.Type == Pawn {
		prefix := ""
		if m.From.X != m.To.X {
			prefix = m.From.getFileNotation()
		}
		suffix := ""
		if m.IsPromotion {
			suffix = "=Q"
		}
		return fmt.Sprintf("%s%s%s%s", prefix, capture, m.To.getSquareNotation(), suffix)
	}
	return fmt.Sprintf("%s%s%s%s", m.Piece.Type.getPieceNotation(), b.disambiguation(m), capture, m.To.getSquareNotation())
}

// disambiguation names the source file, rank or square when another piece of the same
// kind could also reach the destination.
func (b *BoardState) disambiguation(m Move) string {
	sameFile, sameRank, others := false, false, false
	for _, other := range b.LegalMoves() {
		if other.To != m.To || other.From == m.From || other.Piece != m.Piece {
			continue
		}
		others = true
		if other.From.X == m.From.X {
			sameFile = true
		}
		if other.From.Y == m.From.Y {
			sameRank = true
		}
	}
	switch {
	case !others:
		return ""
	case !sameFile:
		return m.From.getFileNotation()
	case !sameRank:
		return fmt.Sprintf("%d", 8-m.From.Y)
	}
	return m.From.getSquareNotation()
}
