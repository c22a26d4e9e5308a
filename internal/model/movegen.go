package model

// PseudoMoves lists every move obeying piece geometry for the side to move, including
// moves that leave the mover's own king in check.
func (b *BoardState) PseudoMoves() []Move {
	moves := make([]Move, 0, 48)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if piece.IsEmpty() || piece.Color != b.ToMove {
				continue
			}
			moves = b.pseudoMovesForPiece(Position{X: x, Y: y}, piece, moves)
		}
	}
	return moves
}

func (b *BoardState) pseudoMovesForPiece(from Position, piece Piece, moves []Move) []Move {
	switch piece.Type {
	case Pawn:
		return b.getPsuedoPawnMoves(from, piece, moves)
	case Knight:
		return b.getStepMoves(from, piece, knightDirs, moves)
	case Bishop:
		return b.getSlidingMoves(from, piece, bishopDirs, moves)
	case Rook:
		return b.getSlidingMoves(from, piece, rookDirs, moves)
	case Queen:
		return b.getSlidingMoves(from, piece, kingDirs, moves)
	case King:
		moves = b.getStepMoves(from, piece, kingDirs, moves)
		return b.getCastleMoves(from, piece, moves)
	}
	panic(ErrCorruptState)
}

func (b *BoardState) getPsuedoPawnMoves(from Position, piece Piece, moves []Move) []Move {
	forward := pawnForward(piece.Color)
	one := Position{X: from.X, Y: from.Y + forward}
	if !boundaryCheck(one) {
		return moves
	}
	if b.Board.at(one).IsEmpty() {
		moves = append(moves, b.newMove(from, one, piece))
		two := Position{X: from.X, Y: from.Y + 2*forward}
		if from.Y == pawnStartRow(piece.Color) && b.Board.at(two).IsEmpty() {
			moves = append(moves, b.newMove(from, two, piece))
		}
	}
	for _, dx := range [2]int{-1, 1} {
		target := Position{X: from.X + dx, Y: from.Y + forward}
		if !boundaryCheck(target) {
			continue
		}
		occupant := b.Board.at(target)
		if (!occupant.IsEmpty() && occupant.Color != piece.Color) || target == b.EnPassantTarget {
			moves = append(moves, b.newMove(from, target, piece))
		}
	}
	return moves
}

func (b *BoardState) getStepMoves(from Position, piece Piece, dirs []Position, moves []Move) []Move {
	for _, dir := range dirs {
		target := from.offset(dir, 1)
		if !boundaryCheck(target) {
			continue
		}
		occupant := b.Board.at(target)
		if occupant.IsEmpty() || occupant.Color != piece.Color {
			moves = append(moves, b.newMove(from, target, piece))
		}
	}
	return moves
}

func (b *BoardState) getSlidingMoves(from Position, piece Piece, dirs []Position, moves []Move) []Move {
	for _, dir := range dirs {
		for steps := 1; steps < 8; steps++ {
			target := from.offset(dir, steps)
			if !boundaryCheck(target) {
				break
			}
			occupant := b.Board.at(target)
			if occupant.IsEmpty() {
				moves = append(moves, b.newMove(from, target, piece))
				continue
			}
			if occupant.Color != piece.Color {
				moves = append(moves, b.newMove(from, target, piece))
			}
			break
		}
	}
	return moves
}

func (b *BoardState) getCastleMoves(from Position, piece Piece, moves []Move) []Move {
	row := homeRow(piece.Color)
	if from != (Position{X: 4, Y: row}) {
		return moves
	}
	kingSide := b.Castling.kingSide(piece.Color)
	queenSide := b.Castling.queenSide(piece.Color)
	if !kingSide && !queenSide {
		return moves
	}
	enemy := piece.Color.Opponent()
	if b.IsSquareAttacked(from, enemy) {
		return moves
	}
	rook := Piece{Type: Rook, Color: piece.Color}
	if kingSide && b.Board[row][7] == rook &&
		b.Board[row][5].IsEmpty() && b.Board[row][6].IsEmpty() &&
		!b.IsSquareAttacked(Position{X: 5, Y: row}, enemy) &&
		!b.IsSquareAttacked(Position{X: 6, Y: row}, enemy) {
		moves = append(moves, b.newMove(from, Position{X: 6, Y: row}, piece))
	}
	if queenSide && b.Board[row][0] == rook &&
		b.Board[row][1].IsEmpty() && b.Board[row][2].IsEmpty() && b.Board[row][3].IsEmpty() &&
		!b.IsSquareAttacked(Position{X: 3, Y: row}, enemy) &&
		!b.IsSquareAttacked(Position{X: 2, Y: row}, enemy) {
		moves = append(moves, b.newMove(from, Position{X: 2, Y: row}, piece))
	}
	return moves
}

// LegalMoves is the legality oracle. Every pseudo-legal move is applied and kept only if
// the mover's king is not attacked afterwards. Pins and checks prune hopeless candidates
// first. Checkmate and Stalemate are updated as a side effect.
func (b *BoardState) LegalMoves() []Move {
	inCheck, pins, checks := b.PinsAndChecks()
	mover := b.ToMove
	king := b.kingPosition(mover)
	pseudo := b.PseudoMoves()
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if !passesPinsAndChecks(m, king, pins, checks) {
			continue
		}
		b.Apply(m)
		if !b.kingAttacked(mover) {
			legal = append(legal, m)
		}
		b.Undo()
	}
	b.Checkmate = len(legal) == 0 && inCheck
	b.Stalemate = len(legal) == 0 && !inCheck
	b.statusKnown = true
	return legal
}

// passesPinsAndChecks rejects moves that pin/check geometry alone proves illegal.
// It may let illegal moves through but never rejects a legal one.
func passesPinsAndChecks(m Move, king Position, pins []Pin, checks []Check) bool {
	if m.Piece.Type == King {
		return true
	}
	if len(checks) > 1 {
		return false
	}
	for _, pin := range pins {
		if pin.Square == m.From && !alongLine(m.To.X-m.From.X, m.To.Y-m.From.Y, pin.Dir) {
			return false
		}
	}
	if len(checks) == 1 && !m.IsEnPassant {
		return blocksOrCaptures(m.To, king, checks[0])
	}
	return true
}

func alongLine(dx, dy int, dir Position) bool {
	return dx*dir.Y-dy*dir.X == 0
}

func blocksOrCaptures(to, king Position, check Check) bool {
	if to == check.Square {
		return true
	}
	if check.isKnight() {
		return false
	}
	for sq := king.offset(check.Dir, 1); sq != check.Square; sq = sq.offset(check.Dir, 1) {
		if sq == to {
			return true
		}
	}
	return false
}
