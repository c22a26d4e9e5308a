package model

import (
	"fmt"
	"strings"
)

// Move is one ply. It carries enough to be undone exactly.
type Move struct {
	From        Position
	To          Position
	Piece       Piece
	Captured    Piece
	IsEnPassant bool
	IsCastle    bool
	IsPromotion bool

	// filled in by Apply
	prevCastling  CastlingRights
	prevEnPassant Position
}

// NewMove builds a move from a source/destination pair against the current position.
// It does not check legality; compare the result against LegalMoves.
func (b *BoardState) NewMove(from, to Position) (Move, error) {
	if !boundaryCheck(from) || !boundaryCheck(to) {
		return Move{}, fmt.Errorf("%w: %s%s out of bounds", ErrInvalidSquare, from, to)
	}
	piece := b.Board.at(from)
	if piece.IsEmpty() {
		return Move{}, fmt.Errorf("%w: %s", ErrNoPieceAtSource, from)
	}
	return b.newMove(from, to, piece), nil
}

func (b *BoardState) newMove(from, to Position, piece Piece) Move {
	m := Move{
		From:     from,
		To:       to,
		Piece:    piece,
		Captured: b.Board.at(to),
	}
	switch piece.Type {
	case Pawn:
		if to.Y == promotionRow(piece.Color) {
			m.IsPromotion = true
		}
		if from.X != to.X && m.Captured.IsEmpty() && to == b.EnPassantTarget {
			m.IsEnPassant = true
			m.Captured = b.Board.at(Position{X: to.X, Y: from.Y})
		}
	case King:
		if abs(to.X-from.X) == 2 {
			m.IsCastle = true
		}
	}
	return m
}

// Equal compares endpoints and the pieces involved.
func (m Move) Equal(other Move) bool {
	return m.From == other.From && m.To == other.To && m.Piece == other.Piece && m.Captured == other.Captured
}

// ToAlgebraic renders source then destination, e.g. "e2e4".
func (m Move) ToAlgebraic() string {
	return m.From.getSquareNotation() + m.To.getSquareNotation()
}

func (m Move) String() string {
	return m.ToAlgebraic()
}

func (m Move) Simple() SimpleMove {
	return SimpleMove{From: m.From, To: m.To}
}

// castleRookSquares returns where the rook starts and lands for a castling move.
func castleRookSquares(m Move) (Position, Position) {
	row := m.From.Y
	if m.To.X > m.From.X {
		return Position{X: 7, Y: row}, Position{X: 5, Y: row}
	}
	return Position{X: 0, Y: row}, Position{X: 3, Y: row}
}

// ParseMove resolves a move written as "e2e4" against the legal moves of the position.
// A trailing promotion letter is accepted; promotion is always to a queen.
func (b *BoardState) ParseMove(notation string) (Move, error) {
	notation = strings.TrimSpace(strings.ToLower(notation))
	if len(notation) == 5 && notation[4] == 'q' {
		notation = notation[:4]
	}
	if len(notation) != 4 {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, notation)
	}
	from, err := ParseSquare(notation[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(notation[2:])
	if err != nil {
		return Move{}, err
	}
	return b.FindLegal(from, to)
}

// FindLegal returns the legal move with the given endpoints.
func (b *BoardState) FindLegal(from, to Position) (Move, error) {
	candidate, err := b.NewMove(from, to)
	if err != nil {
		return Move{}, err
	}
	for _, legal := range b.LegalMoves() {
		if legal.Equal(candidate) {
			return legal, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, candidate)
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is the presentation record of a played move.
type Ply struct {
	Piece          Piece           `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      bool            `json:"promotion"`
	Move           string          `json:"move"`
	Notation       string          `json:"notation"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
