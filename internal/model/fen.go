package model

import (
	"fmt"
	"strings"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var fenPieces = map[byte]PieceType{
	'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
}

// ParseFEN sets up a position from Forsyth-Edwards notation. The move clocks are optional
// and ignored. Castling rights that do not match the king and rook placement are dropped.
func ParseFEN(fen string) (*BoardState, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: want at least placement and side to move", ErrInvalidFEN)
	}
	b := &BoardState{
		EnPassantTarget: NoPosition,
		History:         make([]Move, 0, 64),
	}

	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w: want 8 rows, got %d", ErrInvalidFEN, len(rows))
	}
	for y, row := range rows {
		x := 0
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			kind, ok := fenPieces[c|0x20]
			if !ok || x > 7 {
				return nil, fmt.Errorf("%w: bad row %q", ErrInvalidFEN, row)
			}
			color := Black
			if c >= 'A' && c <= 'Z' {
				color = White
			}
			b.Board[y][x] = Piece{Type: kind, Color: color}
			if kind == King {
				b.setKingPosition(color, Position{X: x, Y: y})
			}
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: row %q does not cover 8 files", ErrInvalidFEN, row)
		}
	}

	switch fields[1] {
	case "w":
		b.ToMove = White
	case "b":
		b.ToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	// The side that just moved cannot have left its king en prise.
	if b.kingAttacked(b.ToMove.Opponent()) {
		return nil, fmt.Errorf("%w: %s king is in check with %s to move", ErrInvalidFEN, b.ToMove.Opponent(), b.ToMove)
	}

	if len(fields) > 2 && fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				b.Castling.WhiteKingSide = true
			case 'Q':
				b.Castling.WhiteQueenSide = true
			case 'k':
				b.Castling.BlackKingSide = true
			case 'q':
				b.Castling.BlackQueenSide = true
			default:
				return nil, fmt.Errorf("%w: castling %q", ErrInvalidFEN, fields[2])
			}
		}
		b.pruneCastlingRights()
	}

	if len(fields) > 3 && fields[3] != "-" {
		ep, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		// Keep the target only when the pawn that just advanced is really there.
		pusher := b.ToMove.Opponent()
		pawnAt := Position{X: ep.X, Y: ep.Y + pawnForward(pusher)}
		if ep.Y == pawnStartRow(pusher)+pawnForward(pusher) && b.Board.At(ep).IsEmpty() &&
			b.Board.At(pawnAt) == (Piece{Type: Pawn, Color: pusher}) {
			b.EnPassantTarget = ep
		}
	}
	return b, nil
}

func (b *BoardState) pruneCastlingRights() {
	for _, color := range [2]Color{White, Black} {
		row := homeRow(color)
		kingHome := b.Board[row][4] == Piece{Type: King, Color: color}
		rook := Piece{Type: Rook, Color: color}
		if !kingHome || b.Board[row][7] != rook {
			if color == White {
				b.Castling.WhiteKingSide = false
			} else {
				b.Castling.BlackKingSide = false
			}
		}
		if !kingHome || b.Board[row][0] != rook {
			if color == White {
				b.Castling.WhiteQueenSide = false
			} else {
				b.Castling.BlackQueenSide = false
			}
		}
	}
}

// FEN renders the position. Move clocks are not tracked and always written as "0 1".
func (b *BoardState) FEN() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		empty := 0
		for x := 0; x < 8; x++ {
			p := b.Board[y][x]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			letter := strings.ToLower(p.Type.getPieceNotation())
			if p.Type == Pawn {
				letter = "p"
			}
			if p.Color == White {
				letter = strings.ToUpper(letter)
			}
			sb.WriteString(letter)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if y < 7 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteByte(b.ToMove.String()[0])

	sb.WriteByte(' ')
	rights := ""
	if b.Castling.WhiteKingSide {
		rights += "K"
	}
	if b.Castling.WhiteQueenSide {
		rights += "Q"
	}
	if b.Castling.BlackKingSide {
		rights += "k"
	}
	if b.Castling.BlackQueenSide {
		rights += "q"
	}
	if rights == "" {
		rights = "-"
	}
	sb.WriteString(rights)

	sb.WriteByte(' ')
	sb.WriteString(b.EnPassantTarget.String())
	sb.WriteString(" 0 1")
	return sb.String()
}
