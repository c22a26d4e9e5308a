package model

import "errors"

var (
	ErrInvalidSquare   = errors.New("invalid square")
	ErrNoPieceAtSource = errors.New("no piece at source square")
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidFEN      = errors.New("invalid FEN")
	ErrCorruptState    = errors.New("corrupt board state")
)
