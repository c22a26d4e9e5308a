package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/negachess-backend/internal/config"
	"github.com/benbeisheim/negachess-backend/internal/engine"
	"github.com/benbeisheim/negachess-backend/internal/model"
	"github.com/benbeisheim/negachess-backend/internal/ws"
)

func newTestGame(t *testing.T, opts GameOptions, delay time.Duration) *Game {
	t.Helper()
	if opts.Depth == 0 {
		opts.Depth = 2
	}
	g, err := NewGame("test", opts, delay)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	t.Cleanup(g.WaitForEngine)
	return g
}

func seat(t *testing.T, g *Game, playerID string, want model.Color) {
	t.Helper()
	color, err := g.AddPlayer(playerID)
	if err != nil {
		t.Fatalf("seat %s: %v", playerID, err)
	}
	if color != want {
		t.Fatalf("player %s seated as %s, want %s", playerID, color, want)
	}
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func TestEngineRepliesToHumanMove(t *testing.T) {
	g := newTestGame(t, GameOptions{Mode: ModeEngine, EngineColor: model.Black}, 0)
	seat(t, g, "alice", model.White)

	if err := g.MakeMove("alice", "e2", "e4"); err != nil {
		t.Fatalf("human move: %v", err)
	}
	g.WaitForEngine()

	state := g.GetState()
	if len(state.MoveHistory) != 2 {
		t.Fatalf("expected engine reply, history %+v", state.MoveHistory)
	}
	if state.ToMove != model.White || state.EngineThinking {
		t.Fatalf("expected white to move with engine idle, got %s thinking=%v", state.ToMove, state.EngineThinking)
	}
	if state.MoveHistory[1].Piece.Color != model.Black {
		t.Fatalf("engine moved a %s piece", state.MoveHistory[1].Piece.Color)
	}
	if len(state.LegalMoves) == 0 {
		t.Fatalf("expected legal moves for white")
	}
}

func TestEngineOpensAsWhite(t *testing.T) {
	g := newTestGame(t, GameOptions{Mode: ModeEngine, EngineColor: model.White}, 0)
	seat(t, g, "bob", model.Black)
	g.WaitForEngine()

	state := g.GetState()
	if len(state.MoveHistory) != 1 || state.ToMove != model.Black {
		t.Fatalf("expected the engine to open, history %+v", state.MoveHistory)
	}
}

func TestEngineDeliversMate(t *testing.T) {
	g := newTestGame(t, GameOptions{
		Mode:        ModeEngine,
		EngineColor: model.White,
		FEN:         "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
	}, 0)
	g.WaitForEngine()

	state := g.GetState()
	if !state.IsCheckmate || state.Resolve == nil || *state.Resolve != "checkmate" {
		t.Fatalf("expected checkmate, got %+v", state)
	}
	if got := state.MoveHistory[len(state.MoveHistory)-1].Notation; got != "Ra8#" {
		t.Fatalf("engine played %s, want Ra8#", got)
	}
	if len(state.LegalMoves) != 0 {
		t.Fatalf("expected no legal moves after mate")
	}
}

func TestUndoAbandonsRunningSearch(t *testing.T) {
	g := newTestGame(t, GameOptions{Mode: ModeEngine, EngineColor: model.Black}, 100*time.Millisecond)
	seat(t, g, "alice", model.White)

	if err := g.MakeMove("alice", "e2", "e4"); err != nil {
		t.Fatalf("human move: %v", err)
	}
	if err := g.MakeMove("alice", "d2", "d4"); !errors.Is(err, ErrEngineThinking) {
		t.Fatalf("expected ErrEngineThinking, got %v", err)
	}
	if !g.GetState().EngineThinking {
		t.Fatalf("expected engine to be thinking")
	}
	if err := g.Undo("alice"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	g.WaitForEngine()

	state := g.GetState()
	if len(state.MoveHistory) != 0 || state.ToMove != model.White {
		t.Fatalf("stale engine move was applied: %+v", state.MoveHistory)
	}
	if state.FEN != model.StartFEN {
		t.Fatalf("expected start position, got %s", state.FEN)
	}
}

func TestUndoAfterEngineReplyReturnsToHumanTurn(t *testing.T) {
	g := newTestGame(t, GameOptions{Mode: ModeEngine, EngineColor: model.Black}, 0)
	seat(t, g, "alice", model.White)
	for _, mv := range [][2]string{{"e2", "e4"}, {"g1", "f3"}} {
		if err := g.MakeMove("alice", mv[0], mv[1]); err != nil {
			t.Fatalf("move %v: %v", mv, err)
		}
		g.WaitForEngine()
	}
	if err := g.Undo("alice"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	state := g.GetState()
	if len(state.MoveHistory) != 2 || state.ToMove != model.White {
		t.Fatalf("expected two plies left with white to move, got %d plies, %s to move", len(state.MoveHistory), state.ToMove)
	}
}

func TestHumanGameTurnsAndSeats(t *testing.T) {
	g := newTestGame(t, GameOptions{Mode: ModeHuman}, 0)
	seat(t, g, "alice", model.White)
	seat(t, g, "bob", model.Black)
	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	seat(t, g, "alice", model.White)

	tests := []struct {
		name   string
		player string
		from   string
		to     string
		err    error
	}{
		{name: "stranger", player: "carol", from: "e2", to: "e4", err: ErrNotInGame},
		{name: "wrong turn", player: "bob", from: "e7", to: "e5", err: ErrNotYourTurn},
		{name: "illegal", player: "alice", from: "e2", to: "e5", err: model.ErrIllegalMove},
		{name: "empty square", player: "alice", from: "e4", to: "e5", err: model.ErrNoPieceAtSource},
		{name: "bad square", player: "alice", from: "z9", to: "e5", err: model.ErrInvalidSquare},
		{name: "white opens", player: "alice", from: "e2", to: "e4"},
		{name: "black replies", player: "bob", from: "e7", to: "e5"},
	}
	for _, tt := range tests {
		err := g.MakeMove(tt.player, tt.from, tt.to)
		if tt.err == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if tt.err != nil && !errors.Is(err, tt.err) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.err, err)
		}
	}

	state := g.GetState()
	if len(state.MoveHistory) != 2 || state.EngineColor != nil {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.LastMove == nil || state.LastMove.To != (model.Position{X: 4, Y: 3}) {
		t.Fatalf("last move = %+v, want to e5", state.LastMove)
	}
	if err := g.Undo("bob"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := len(g.GetState().MoveHistory); got != 1 {
		t.Fatalf("human undo should take back one ply, %d left", got)
	}
}

func TestGameOverRejectsMoves(t *testing.T) {
	g := newTestGame(t, GameOptions{
		Mode: ModeHuman,
		FEN:  "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	}, 0)
	seat(t, g, "alice", model.White)

	state := g.GetState()
	if !state.IsCheck || !state.IsCheckmate || state.IsStalemate {
		t.Fatalf("expected checkmate state, got %+v", state)
	}
	if err := g.MakeMove("alice", "e1", "f2"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if _, _, err := g.Hint(); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver from hint, got %v", err)
	}
}

func TestResetAndHint(t *testing.T) {
	g := newTestGame(t, GameOptions{Mode: ModeHuman}, 0)
	seat(t, g, "alice", model.White)
	if err := g.MakeMove("alice", "d2", "d4"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := g.Reset("mallory"); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
	if err := g.Reset("alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	state := g.GetState()
	if state.FEN != model.StartFEN || len(state.MoveHistory) != 0 {
		t.Fatalf("reset did not restore the start position: %s", state.FEN)
	}

	ply, stats, err := g.Hint()
	if err != nil {
		t.Fatalf("hint: %v", err)
	}
	if !contains(state.LegalMoves, ply.Move) {
		t.Fatalf("hint %s is not a legal move", ply.Move)
	}
	if stats.Nodes == 0 {
		t.Fatalf("expected search stats")
	}
	if g.GetState().FEN != model.StartFEN {
		t.Fatalf("hint changed the game position")
	}
}

func TestNewGameRejectsBadOptions(t *testing.T) {
	tests := []GameOptions{
		{Mode: "blitz"},
		{Mode: ModeHuman, FEN: "not a fen"},
		{Mode: ModeHuman, Depth: -1},
		{Mode: ModeEngine, EngineColor: model.White, FEN: "4k3/8/8/8/8/8/4R3/4K3 w - - 0 1"},
	}
	for _, opts := range tests {
		if _, err := NewGame("bad", opts, 0); !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("options %+v: expected ErrInvalidOptions, got %v", opts, err)
		}
	}
}

func TestGameManager(t *testing.T) {
	gm := NewGameManager(config.Default())
	if _, err := gm.GetGame("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := gm.CreateGame("deep", GameOptions{Mode: ModeHuman, Depth: 99}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected depth limit error, got %v", err)
	}
	game, err := gm.CreateGame("g1", GameOptions{Mode: ModeHuman})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if game.depth != config.Default().SearchDepth {
		t.Fatalf("default depth not applied, got %d", game.depth)
	}
	if _, err := gm.CreateGame("g1", GameOptions{Mode: ModeHuman}); !errors.Is(err, ErrGameExists) {
		t.Fatalf("expected ErrGameExists, got %v", err)
	}

	svc := NewGameService(gm)
	id, color, err := svc.CreateGame("alice", GameOptions{Mode: ModeHuman})
	if err != nil || color != model.White {
		t.Fatalf("service create: %v %s", err, color)
	}
	if color, err := svc.JoinGame(id, "bob"); err != nil || color != model.Black {
		t.Fatalf("join: %v %s", err, color)
	}
	if err := svc.HandleMove(id, "alice", "e2", "e4"); err != nil {
		t.Fatalf("move: %v", err)
	}
	state, err := svc.GetGameState(id)
	if err != nil || state.ToMove != model.Black {
		t.Fatalf("state: %v %+v", err, state.ToMove)
	}
}

type recordingConn struct {
	mu     sync.Mutex
	frames []ws.Message
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	msg, ok := v.(ws.Message)
	if !ok {
		return errors.New("unexpected frame")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, msg)
	return nil
}

func (c *recordingConn) WriteMessage(int, []byte) error { return nil }

func (c *recordingConn) Close() error { return nil }

type frameState struct {
	FEN         string            `json:"fen"`
	MoveHistory []json.RawMessage `json:"moveHistory"`
}

func (c *recordingConn) lastState(t *testing.T) frameState {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Type != ws.MessageTypeGameState {
			continue
		}
		var state frameState
		if err := json.Unmarshal(c.frames[i].Payload, &state); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		return state
	}
	t.Fatalf("no state frame received")
	return frameState{}
}

func TestLastBroadcastIsCurrentState(t *testing.T) {
	for i := 0; i < 25; i++ {
		g := newTestGame(t, GameOptions{Mode: ModeEngine, EngineColor: model.Black}, 0)
		seat(t, g, "alice", model.White)
		conn := &recordingConn{}
		if err := g.RegisterConnection("alice", conn); err != nil {
			t.Fatalf("register: %v", err)
		}
		if err := g.RegisterConnection("alice", &recordingConn{}); !errors.Is(err, ErrDuplicateSocket) {
			t.Fatalf("expected ErrDuplicateSocket, got %v", err)
		}

		if err := g.MakeMove("alice", "e2", "e4"); err != nil {
			t.Fatalf("move: %v", err)
		}
		g.WaitForEngine()

		want := g.GetState()
		got := conn.lastState(t)
		if got.FEN != want.FEN || len(got.MoveHistory) != len(want.MoveHistory) {
			t.Fatalf("round %d: last frame shows %s (%d plies), game is at %s (%d plies)",
				i, got.FEN, len(got.MoveHistory), want.FEN, len(want.MoveHistory))
		}
		if len(want.MoveHistory) != 2 {
			t.Fatalf("round %d: expected the engine reply, got %d plies", i, len(want.MoveHistory))
		}
	}
}

func TestEngineSearchPanicBecomesError(t *testing.T) {
	corrupt := &model.BoardState{ToMove: model.White}
	_, _, err := chooseEngineMove(engine.NewSearcher(2, 1), corrupt, []model.Move{{}})
	if !errors.Is(err, model.ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
}
