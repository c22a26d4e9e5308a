package service

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/benbeisheim/negachess-backend/internal/engine"
	"github.com/benbeisheim/negachess-backend/internal/model"
	"github.com/benbeisheim/negachess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type Mode string

const (
	// ModeHuman seats two humans.
	ModeHuman Mode = "human"
	// ModeEngine seats one human against the search engine.
	ModeEngine Mode = "engine"
)

type GameOptions struct {
	Mode        Mode        `json:"mode"`
	EngineColor model.Color `json:"engineColor"`
	Depth       int         `json:"depth"`
	FEN         string      `json:"fen"`
}

type ClientPlayer struct {
	ID    string      `json:"name"`
	Color model.Color `json:"color"`
}

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	// writeMu covers both the state snapshot and the writes of a broadcast so frames leave
	// in the order the states were taken.
	writeMu sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one session: the position, its legal moves, the seats and the engine worker.
type Game struct {
	ID string

	mu          sync.Mutex
	board       *model.BoardState
	legal       []model.Move
	startFEN    string
	mode        Mode
	engineColor model.Color
	depth       int
	engineDelay time.Duration
	// generation changes on every move, undo and reset; an engine result computed for an
	// older generation is discarded.
	generation uint64
	thinking   bool
	plies      []model.Ply
	players    struct {
		White ClientPlayer
		Black ClientPlayer
	}

	connections *GameConnections
	workers     sync.WaitGroup
}

type CapturedPieces struct {
	White []model.Piece `json:"white"`
	Black []model.Piece `json:"black"`
}

type GameState struct {
	ID              string               `json:"id"`
	Mode            Mode                 `json:"mode"`
	EngineColor     *model.Color         `json:"engineColor"`
	Depth           int                  `json:"depth"`
	Board           [][]*model.Piece     `json:"board"`
	ToMove          model.Color          `json:"toMove"`
	MoveHistory     []model.Ply          `json:"moveHistory"`
	CapturedPieces  CapturedPieces       `json:"capturedPieces"`
	IsCheck         bool                 `json:"isCheck"`
	IsCheckmate     bool                 `json:"isCheckmate"`
	IsStalemate     bool                 `json:"isStalemate"`
	LegalMoves      []string             `json:"legalMoves"`
	EnPassantTarget *model.Position      `json:"enPassantTarget"`
	Castling        model.CastlingRights `json:"castling"`
	Resolve         *string              `json:"resolve"`
	Players         struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	LastMove       *model.SimpleMove `json:"lastMove"`
	FEN            string            `json:"fen"`
	Material       int               `json:"material"`
	EngineThinking bool              `json:"engineThinking"`
}

func NewGame(id string, opts GameOptions, engineDelay time.Duration) (*Game, error) {
	switch opts.Mode {
	case "":
		opts.Mode = ModeEngine
	case ModeHuman, ModeEngine:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, opts.Mode)
	}
	if opts.Mode == ModeEngine && opts.EngineColor == model.NoColor {
		opts.EngineColor = model.Black
	}
	if opts.Depth < 0 {
		return nil, fmt.Errorf("%w: negative depth", ErrInvalidOptions)
	}
	if opts.FEN == "" {
		opts.FEN = model.StartFEN
	}
	board, err := model.ParseFEN(opts.FEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	g := &Game{
		ID:          id,
		board:       board,
		startFEN:    opts.FEN,
		mode:        opts.Mode,
		depth:       opts.Depth,
		engineDelay: engineDelay,
		connections: NewGameConnections(),
	}
	if opts.Mode == ModeEngine {
		g.engineColor = opts.EngineColor
	}
	g.mu.Lock()
	g.afterChangeLocked()
	g.mu.Unlock()
	return g, nil
}

func (g *Game) AddPlayer(playerID string) (model.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color := g.seatOfLocked(playerID); color != model.NoColor {
		return color, nil
	}
	for _, color := range [2]model.Color{model.White, model.Black} {
		if color == g.engineColor {
			continue
		}
		seat := g.seatLocked(color)
		if seat.ID == "" {
			*seat = ClientPlayer{ID: playerID, Color: color}
			log.Infof("game %s: player %s seated as %s", g.ID, playerID, color)
			return color, nil
		}
	}
	return model.NoColor, ErrGameFull
}

func (g *Game) seatLocked(color model.Color) *ClientPlayer {
	if color == model.White {
		return &g.players.White
	}
	return &g.players.Black
}

func (g *Game) seatOfLocked(playerID string) model.Color {
	switch {
	case playerID == "":
		return model.NoColor
	case g.players.White.ID == playerID:
		return model.White
	case g.players.Black.ID == playerID:
		return model.Black
	}
	return model.NoColor
}

// MakeMove plays a human move given as source and destination squares, e.g. "e2", "e4".
func (g *Game) MakeMove(playerID, from, to string) error {
	fromSq, err := model.ParseSquare(from)
	if err != nil {
		return err
	}
	toSq, err := model.ParseSquare(to)
	if err != nil {
		return err
	}

	g.mu.Lock()
	color := g.seatOfLocked(playerID)
	switch {
	case color == model.NoColor:
		g.mu.Unlock()
		return ErrNotInGame
	case len(g.legal) == 0:
		g.mu.Unlock()
		return ErrGameOver
	case g.isEngineTurnLocked():
		g.mu.Unlock()
		return ErrEngineThinking
	case color != g.board.ToMove:
		g.mu.Unlock()
		return ErrNotYourTurn
	}
	move, err := g.validateMoveLocked(fromSq, toSq)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.executeMoveLocked(move)
	g.mu.Unlock()

	g.broadcastState()
	return nil
}

// validateMoveLocked checks the request against the cached legal moves by structural equality.
func (g *Game) validateMoveLocked(from, to model.Position) (model.Move, error) {
	candidate, err := g.board.NewMove(from, to)
	if err != nil {
		return model.Move{}, err
	}
	for _, legal := range g.legal {
		if legal.Equal(candidate) {
			return legal, nil
		}
	}
	return model.Move{}, fmt.Errorf("%w: %s", model.ErrIllegalMove, candidate)
}

func (g *Game) executeMoveLocked(move model.Move) {
	ply := g.board.PlayPly(move)
	g.plies = append(g.plies, ply)
	log.Debugf("game %s: %s played %s", g.ID, move.Piece.Color, ply.Notation)
	g.afterChangeLocked()
}

// Undo takes back the last move. Against the engine it steps back to the human's turn,
// abandoning any search in progress.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	if g.seatOfLocked(playerID) == model.NoColor {
		g.mu.Unlock()
		return ErrNotInGame
	}
	if len(g.board.History) == 0 {
		g.mu.Unlock()
		return nil
	}
	g.undoOnceLocked()
	for g.isEngineTurnLocked() && len(g.board.History) > 0 {
		g.undoOnceLocked()
	}
	g.thinking = false
	g.afterChangeLocked()
	g.mu.Unlock()

	g.broadcastState()
	return nil
}

func (g *Game) undoOnceLocked() {
	g.board.Undo()
	if len(g.plies) > 0 {
		g.plies = g.plies[:len(g.plies)-1]
	}
}

// Reset returns to the position the game was created with.
func (g *Game) Reset(playerID string) error {
	g.mu.Lock()
	if g.seatOfLocked(playerID) == model.NoColor {
		g.mu.Unlock()
		return ErrNotInGame
	}
	board, err := model.ParseFEN(g.startFEN)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.board = board
	g.plies = nil
	g.thinking = false
	g.afterChangeLocked()
	g.mu.Unlock()

	g.broadcastState()
	return nil
}

// Hint runs the engine for the side to move without playing the result.
func (g *Game) Hint() (model.Ply, engine.Stats, error) {
	g.mu.Lock()
	if len(g.legal) == 0 {
		g.mu.Unlock()
		return model.Ply{}, engine.Stats{}, ErrGameOver
	}
	pos := g.board.Clone()
	legal := append([]model.Move(nil), g.legal...)
	depth := g.depth
	g.mu.Unlock()

	searcher := engine.NewSearcher(depth, rand.Int63())
	result := searcher.Search(pos, legal)
	move := result.Move
	if !result.Found {
		move = searcher.RandomMove(legal)
	}
	return pos.PlayPly(move), result.Stats, nil
}

func (g *Game) isEngineTurnLocked() bool {
	return g.mode == ModeEngine && g.board.ToMove == g.engineColor
}

// afterChangeLocked refreshes the legal move cache and hands the position to the engine
// when it is its turn.
func (g *Game) afterChangeLocked() {
	g.generation++
	g.legal = g.board.LegalMoves()
	if g.board.Checkmate || g.board.Stalemate {
		log.Infof("game %s: over, checkmate=%v stalemate=%v", g.ID, g.board.Checkmate, g.board.Stalemate)
		return
	}
	if g.isEngineTurnLocked() {
		g.scheduleEngineMoveLocked()
	}
}

// scheduleEngineMoveLocked searches a private copy of the position on its own goroutine.
// Go cannot stop that goroutine, so undo and reset bump the generation instead and the
// stale result is dropped.
func (g *Game) scheduleEngineMoveLocked() {
	generation := g.generation
	pos := g.board.Clone()
	legal := append([]model.Move(nil), g.legal...)
	searcher := engine.NewSearcher(g.depth, rand.Int63())
	delay := g.engineDelay
	g.thinking = true

	g.workers.Add(1)
	go func() {
		defer g.workers.Done()
		if delay > 0 {
			time.Sleep(delay)
		}
		start := time.Now()
		move, ok, err := chooseEngineMove(searcher, pos, legal)
		if err != nil {
			log.Errorf("game %s: engine search failed: %v", g.ID, err)
			g.mu.Lock()
			if generation == g.generation {
				g.thinking = false
			}
			g.mu.Unlock()
			g.broadcastState()
			return
		}

		g.mu.Lock()
		if generation != g.generation {
			g.mu.Unlock()
			log.Debugf("game %s: discarding stale engine move %s", g.ID, move)
			return
		}
		g.thinking = false
		if ok {
			log.Debugf("game %s: engine chose %s in %s", g.ID, move, time.Since(start))
			g.executeMoveLocked(move)
		}
		g.mu.Unlock()

		g.broadcastState()
	}()
}

// chooseEngineMove runs the search and turns a panic on a corrupt position into an error so
// it cannot take the process down.
func chooseEngineMove(searcher *engine.Searcher, pos *model.BoardState, legal []model.Move) (move model.Move, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", model.ErrCorruptState, r)
		}
	}()
	move, ok = searcher.ChooseMove(pos, legal)
	return move, ok, nil
}

// WaitForEngine blocks until no engine search is running.
func (g *Game) WaitForEngine() {
	g.workers.Wait()
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	state := GameState{
		ID:             g.ID,
		Mode:           g.mode,
		Depth:          g.depth,
		Board:          make([][]*model.Piece, 8),
		ToMove:         g.board.ToMove,
		MoveHistory:    append([]model.Ply{}, g.plies...),
		CapturedPieces: CapturedPieces{White: []model.Piece{}, Black: []model.Piece{}},
		IsCheck:        g.board.InCheck(),
		IsCheckmate:    g.board.Checkmate,
		IsStalemate:    g.board.Stalemate,
		LegalMoves:     make([]string, 0, len(g.legal)),
		Castling:       g.board.Castling,
		FEN:            g.board.FEN(),
		Material:       g.board.ScoreMaterial(),
		EngineThinking: g.thinking,
	}
	if g.mode == ModeEngine {
		color := g.engineColor
		state.EngineColor = &color
	}
	for y := 0; y < 8; y++ {
		state.Board[y] = make([]*model.Piece, 8)
		for x := 0; x < 8; x++ {
			if p := g.board.Board[y][x]; !p.IsEmpty() {
				state.Board[y][x] = &p
			}
		}
	}
	for _, ply := range g.plies {
		if ply.CapturedPiece == nil {
			continue
		}
		if ply.Piece.Color == model.White {
			state.CapturedPieces.White = append(state.CapturedPieces.White, *ply.CapturedPiece)
		} else {
			state.CapturedPieces.Black = append(state.CapturedPieces.Black, *ply.CapturedPiece)
		}
	}
	for _, m := range g.legal {
		state.LegalMoves = append(state.LegalMoves, m.ToAlgebraic())
	}
	if g.board.EnPassantTarget.IsValid() {
		target := g.board.EnPassantTarget
		state.EnPassantTarget = &target
	}
	switch {
	case g.board.Checkmate:
		result := "checkmate"
		state.Resolve = &result
	case g.board.Stalemate:
		result := "stalemate"
		state.Resolve = &result
	}
	if last, ok := g.board.LastMove(); ok {
		simple := last.Simple()
		state.LastMove = &simple
	}
	state.Players.White = g.players.White
	state.Players.Black = g.players.Black
	return state
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	// Anyone may watch; only seated players may act.
	connID := fmt.Sprintf("%p", conn)

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and reject the new one.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrDuplicateSocket.Error()),
		)
		conn.Close()
		return ErrDuplicateSocket
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Infof("game %s: registered connection %s for player %s", g.ID, connID, playerID)

	g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	// Only unregister if this is still the current connection.
	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Infof("game %s: unregistering connection %p for player %s", g.ID, conn, playerID)
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) broadcastState() {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	state := g.GetState()
	payload, err := json.Marshal(state)
	if err != nil {
		log.Errorf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(ws.Message{Type: ws.MessageTypeGameState, Payload: payload}); err != nil {
			log.Warnf("game %s: failed to send state to player %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}

// SendError writes an error message to a single connection.
func (g *Game) SendError(conn Conn, sendErr error) {
	payload, err := json.Marshal(ws.ErrorPayload{Error: sendErr.Error()})
	if err != nil {
		return
	}
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	if err := conn.WriteJSON(ws.Message{Type: ws.MessageTypeError, Payload: payload}); err != nil {
		log.Warnf("game %s: failed to send error: %v", g.ID, err)
	}
}
