package model

import "fmt"

type CastlingRights struct {
	WhiteKingSide  bool `json:"whiteKingSide"`
	WhiteQueenSide bool `json:"whiteQueenSide"`
	BlackKingSide  bool `json:"blackKingSide"`
	BlackQueenSide bool `json:"blackQueenSide"`
}

func fullCastlingRights() CastlingRights {
	return CastlingRights{WhiteKingSide: true, WhiteQueenSide: true, BlackKingSide: true, BlackQueenSide: true}
}

func (cr CastlingRights) kingSide(c Color) bool {
	if c == White {
		return cr.WhiteKingSide
	}
	return cr.BlackKingSide
}

func (cr CastlingRights) queenSide(c Color) bool {
	if c == White {
		return cr.WhiteQueenSide
	}
	return cr.BlackQueenSide
}

// BoardState is a full chess position: placement, side to move and everything needed to undo.
// A BoardState is not safe for concurrent use; a search owns its BoardState exclusively.
type BoardState struct {
	Board             Board
	ToMove            Color
	WhiteKingPosition Position
	BlackKingPosition Position
	Castling          CastlingRights
	EnPassantTarget   Position
	History           []Move

	// Checkmate and Stalemate reflect the last LegalMoves call and are cleared by Apply/Undo.
	Checkmate bool
	Stalemate bool
	// statusKnown is set by LegalMoves and cleared by Apply/Undo.
	statusKnown bool
}

// Snapshot is the comparable part of a BoardState.
type Snapshot struct {
	Board             Board
	ToMove            Color
	WhiteKingPosition Position
	BlackKingPosition Position
	Castling          CastlingRights
	EnPassantTarget   Position
	Plies             int
}

// NewBoardState returns the standard starting position with white to move.
func NewBoardState() *BoardState {
	return &BoardState{
		Board:             newBoard(),
		ToMove:            White,
		WhiteKingPosition: Position{X: 4, Y: 7},
		BlackKingPosition: Position{X: 4, Y: 0},
		Castling:          fullCastlingRights(),
		EnPassantTarget:   NoPosition,
		History:           make([]Move, 0, 64),
	}
}

func (b *BoardState) Snapshot() Snapshot {
	return Snapshot{
		Board:             b.Board,
		ToMove:            b.ToMove,
		WhiteKingPosition: b.WhiteKingPosition,
		BlackKingPosition: b.BlackKingPosition,
		Castling:          b.Castling,
		EnPassantTarget:   b.EnPassantTarget,
		Plies:             len(b.History),
	}
}

// Clone returns a deep copy that shares nothing with b.
func (b *BoardState) Clone() *BoardState {
	clone := *b
	clone.History = make([]Move, len(b.History), len(b.History)+16)
	copy(clone.History, b.History)
	return &clone
}

func (b *BoardState) kingPosition(c Color) Position {
	if c == White {
		return b.WhiteKingPosition
	}
	return b.BlackKingPosition
}

func (b *BoardState) setKingPosition(c Color, p Position) {
	if c == White {
		b.WhiteKingPosition = p
	} else {
		b.BlackKingPosition = p
	}
}

// LastMove returns the most recently applied move.
func (b *BoardState) LastMove() (Move, bool) {
	if len(b.History) == 0 {
		return Move{}, false
	}
	return b.History[len(b.History)-1], true
}

// validate checks the one-king-per-side invariant and the king caches.
func (b *BoardState) validate() error {
	var kings [3]int
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b.Board[y][x]
			if p.Type != King {
				continue
			}
			kings[p.Color]++
			if b.kingPosition(p.Color) != (Position{X: x, Y: y}) {
				return fmt.Errorf("%w: %s king cache out of sync", ErrCorruptState, p.Color)
			}
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return fmt.Errorf("%w: want one king per side, have %d white and %d black", ErrCorruptState, kings[White], kings[Black])
	}
	return nil
}
