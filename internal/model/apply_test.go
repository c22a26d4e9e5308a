package model

import (
	"math/rand"
	"testing"
)

var playoutFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
}

// randomPositions plays seeded random games and calls visit at every position reached.
func randomPositions(t *testing.T, plies int, visit func(b *BoardState)) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	for _, fen := range playoutFENs {
		b := mustFEN(t, fen)
		for i := 0; i < plies; i++ {
			visit(b)
			moves := b.LegalMoves()
			if len(moves) == 0 {
				break
			}
			b.Apply(moves[rng.Intn(len(moves))])
		}
	}
}

func TestApplyUndoRestoresPosition(t *testing.T) {
	randomPositions(t, 120, func(b *BoardState) {
		before := b.Snapshot()
		for _, m := range b.LegalMoves() {
			b.Apply(m)
			if err := b.validate(); err != nil {
				t.Fatalf("after %s from %s: %v", m, b.FEN(), err)
			}
			b.Undo()
			if b.Snapshot() != before {
				t.Fatalf("apply/undo of %s did not restore %s", m, b.FEN())
			}
		}
	})
}

func TestUndoOnEmptyHistoryIsNoop(t *testing.T) {
	b := NewBoardState()
	before := b.Snapshot()
	b.Undo()
	if b.Snapshot() != before {
		t.Fatalf("undo on empty history changed the position")
	}
}

func TestEnPassantTargetClearedAfterNextMove(t *testing.T) {
	randomPositions(t, 80, func(b *BoardState) {
		last, ok := b.LastMove()
		if !ok {
			return
		}
		double := last.Piece.Type == Pawn && abs(last.To.Y-last.From.Y) == 2
		if double != (b.EnPassantTarget != NoPosition) {
			t.Fatalf("en passant target %s inconsistent with last move %s", b.EnPassantTarget, last)
		}
	})
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBoardState()
	m, err := b.ParseMove("e2e4")
	if err != nil {
		t.Fatalf("e2e4: %v", err)
	}
	b.Apply(m)
	clone := b.Clone()
	clone.Undo()
	if len(b.History) != 1 || b.Board.At(sq(t, "e4")).IsEmpty() {
		t.Fatalf("undo on clone changed the original")
	}
	if clone.Snapshot() != NewBoardState().Snapshot() {
		t.Fatalf("clone undo did not reach the start position")
	}
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		material int
		position int
	}{
		{name: "start", fen: StartFEN, material: 0, position: 0},
		{name: "black missing queen", fen: "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", material: 10, position: 10},
		{name: "white mated", fen: "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", material: 0, position: -CheckmateScore},
		{name: "black mated", fen: "rnbqkbnr/ppppp2p/5p2/6pQ/4P3/8/PPPP1PPP/RNB1KBNR b KQkq - 1 3", material: 0, position: CheckmateScore},
		{name: "stalemate", fen: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", material: 10, position: StalemateScore},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			if got := b.ScoreMaterial(); got != tt.material {
				t.Fatalf("material = %d, want %d", got, tt.material)
			}
			// No LegalMoves call yet: terminal status must still be found.
			if got := mustFEN(t, tt.fen).ScorePosition(); got != tt.position {
				t.Fatalf("fresh position score = %d, want %d", got, tt.position)
			}
			if got := b.Evaluate(); got != tt.position {
				t.Fatalf("position score = %d, want %d", got, tt.position)
			}
			if legal := b.LegalMoves(); len(legal) > 0 {
				b.Apply(legal[0])
				b.Undo()
			}
			if got := b.ScorePosition(); got != tt.position {
				t.Fatalf("score after apply/undo = %d, want %d", got, tt.position)
			}
		})
	}
}

func TestPlyNotation(t *testing.T) {
	b := NewBoardState()
	line := []struct {
		move     string
		notation string
	}{
		{"e2e4", "e4"},
		{"d7d5", "d5"},
		{"e4d5", "exd5"},
		{"g8f6", "Nf6"},
		{"g1f3", "Nf3"},
		{"f6d5", "Nxd5"},
		{"f1c4", "Bc4"},
		{"e7e6", "e6"},
		{"e1g1", "O-O"},
		{"f8b4", "Bb4"},
		{"c4b5", "Bb5+"},
	}
	for _, step := range line {
		m, err := b.ParseMove(step.move)
		if err != nil {
			t.Fatalf("%s: %v", step.move, err)
		}
		ply := b.PlayPly(m)
		if ply.Notation != step.notation {
			t.Fatalf("%s rendered as %q, want %q", step.move, ply.Notation, step.notation)
		}
		if ply.Move != step.move {
			t.Fatalf("ply move = %q, want %q", ply.Move, step.move)
		}
	}
}

func TestPlyNotationMate(t *testing.T) {
	b := mustFEN(t, "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	m, err := b.ParseMove("d8h4")
	if err != nil {
		t.Fatalf("d8h4: %v", err)
	}
	if ply := b.PlayPly(m); ply.Notation != "Qh4#" {
		t.Fatalf("mate rendered as %q", ply.Notation)
	}
	if !b.Checkmate {
		t.Fatalf("expected checkmate flag after mating move")
	}
}

func TestDisambiguation(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/8/8/4K3/R6R w - - 0 1")
	m, err := b.ParseMove("a1d1")
	if err != nil {
		t.Fatalf("a1d1: %v", err)
	}
	if ply := b.PlayPly(m); ply.Notation != "Rad1" {
		t.Fatalf("rendered as %q, want Rad1", ply.Notation)
	}
}
