package model

import (
	"fmt"
	"strings"
)

type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

// Sign is +1 for white and -1 for black.
func (c Color) Sign() int {
	if c == Black {
		return -1
	}
	return 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return ""
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	color, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = color
	return nil
}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

// pawnForward is the row delta of a pawn advance; row 0 is rank 8.
func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func promotionRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func homeRow(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

type PieceType uint8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return ""
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

// Value is the material worth of a piece kind. Kings are never traded so they count zero.
func (p PieceType) Value() int {
	switch p {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 10
	}
	return 0
}

// Piece is a board cell. The zero value is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

var Empty = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPiece
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "--"
	}
	letter := p.Type.getPieceNotation()
	if p.Type == Pawn {
		letter = "P"
	}
	return string(p.Color.String()[0]) + letter
}

// Position is a board coordinate: X is the file (0 = a) and Y is the row, with row 0 holding rank 8.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition marks an absent square, e.g. no en-passant target.
var NoPosition = Position{X: -1, Y: -1}

func (p Position) IsValid() bool {
	return boundaryCheck(p)
}

func (p Position) String() string {
	if !boundaryCheck(p) {
		return "-"
	}
	return p.getSquareNotation()
}

func (p Position) getSquareNotation() string {
	return fmt.Sprintf("%c%d", p.X+97, 8-p.Y)
}

func (p Position) getFileNotation() string {
	return fmt.Sprintf("%c", p.X+97)
}

func (p Position) offset(d Position, steps int) Position {
	return Position{X: p.X + d.X*steps, Y: p.Y + d.Y*steps}
}

// ParseSquare reads a square such as "e2".
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoPosition, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Position{X: int(s[0] - 'a'), Y: 8 - int(s[1]-'0')}, nil
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

// Board is indexed [row][file].
type Board [8][8]Piece

func (b *Board) at(p Position) Piece {
	return b[p.Y][p.X]
}

func (b *Board) set(p Position, piece Piece) {
	b[p.Y][p.X] = piece
}

// At returns the piece on a square, or Empty when the square is off the board.
func (b *Board) At(p Position) Piece {
	if !boundaryCheck(p) {
		return Empty
	}
	return b.at(p)
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func newBoard() Board {
	var board Board
	for i := 0; i < 8; i++ {
		board[0][i] = Piece{Type: backRank[i], Color: Black}
		board[1][i] = Piece{Type: Pawn, Color: Black}
		board[6][i] = Piece{Type: Pawn, Color: White}
		board[7][i] = Piece{Type: backRank[i], Color: White}
	}
	return board
}

func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b[y][x].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
