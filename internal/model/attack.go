package model

// The first four directions are orthogonal, the last four diagonal.
var (
	rookDirs    = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs  = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	kingDirs    = append(append([]Position{}, rookDirs...), bishopDirs...)
	knightDirs  = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	noDirection = Position{}
)

// Pin is a friendly piece that may only move along Dir, the ray from its king through it.
type Pin struct {
	Square Position `json:"square"`
	Dir    Position `json:"dir"`
}

// Check is an enemy piece giving check. Dir is the ray from the king to the checker,
// zero for a knight.
type Check struct {
	Square Position `json:"square"`
	Dir    Position `json:"dir"`
}

func (c Check) isKnight() bool {
	return c.Dir == noDirection
}

// IsSquareAttacked reports whether any piece of color by attacks sq. Pawns attack
// diagonally only; castling never attacks.
func (b *BoardState) IsSquareAttacked(sq Position, by Color) bool {
	for i, dir := range kingDirs {
		orthogonal := i < 4
		for steps := 1; steps < 8; steps++ {
			target := sq.offset(dir, steps)
			if !boundaryCheck(target) {
				break
			}
			p := b.Board.at(target)
			if p.IsEmpty() {
				continue
			}
			if p.Color == by && attacksAlong(p, orthogonal, steps, dir, by.Opponent()) {
				return true
			}
			break
		}
	}
	for _, dir := range knightDirs {
		target := sq.offset(dir, 1)
		if boundaryCheck(target) && b.Board.at(target) == (Piece{Type: Knight, Color: by}) {
			return true
		}
	}
	return false
}

// attacksAlong reports whether enemy piece p, found steps squares from a square of color
// defender along dir, attacks that square.
func attacksAlong(p Piece, orthogonal bool, steps int, dir Position, defender Color) bool {
	switch p.Type {
	case Rook:
		return orthogonal
	case Bishop:
		return !orthogonal
	case Queen:
		return true
	case King:
		return steps == 1
	case Pawn:
		// An enemy pawn attacks from the squares diagonally ahead of the defender.
		return steps == 1 && !orthogonal && dir.Y == pawnForward(defender)
	case Knight:
		return false
	}
	panic(ErrCorruptState)
}

// InCheck reports whether the side to move is in check.
func (b *BoardState) InCheck() bool {
	return b.IsSquareAttacked(b.kingPosition(b.ToMove), b.ToMove.Opponent())
}

func (b *BoardState) kingAttacked(c Color) bool {
	return b.IsSquareAttacked(b.kingPosition(c), c.Opponent())
}

// PinsAndChecks scans outward from the king of the side to move and reports pinned
// friendly pieces and checking enemy pieces.
func (b *BoardState) PinsAndChecks() (bool, []Pin, []Check) {
	color := b.ToMove
	king := b.kingPosition(color)
	if b.Board.At(king) != (Piece{Type: King, Color: color}) {
		panic(ErrCorruptState)
	}
	var pins []Pin
	var checks []Check
	for i, dir := range kingDirs {
		orthogonal := i < 4
		candidate := NoPosition
		for steps := 1; steps < 8; steps++ {
			target := king.offset(dir, steps)
			if !boundaryCheck(target) {
				break
			}
			p := b.Board.at(target)
			if p.IsEmpty() {
				continue
			}
			if p.Color == color {
				if candidate == NoPosition {
					candidate = target
					continue
				}
				break
			}
			if attacksAlong(p, orthogonal, steps, dir, color) {
				if candidate == NoPosition {
					checks = append(checks, Check{Square: target, Dir: dir})
				} else {
					pins = append(pins, Pin{Square: candidate, Dir: dir})
				}
			}
			break
		}
	}
	for _, dir := range knightDirs {
		target := king.offset(dir, 1)
		if boundaryCheck(target) && b.Board.at(target) == (Piece{Type: Knight, Color: color.Opponent()}) {
			checks = append(checks, Check{Square: target})
		}
	}
	return len(checks) > 0, pins, checks
}
