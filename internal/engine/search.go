// Package engine picks moves with a fixed-depth negamax search over model.BoardState.
package engine

import (
	"math/rand"

	"github.com/benbeisheim/negachess-backend/internal/model"
)

const (
	DefaultDepth = 2

	// infinity bounds every reachable score.
	infinity = model.CheckmateScore + 1
)

type Stats struct {
	Nodes   int `json:"nodes"`
	Cutoffs int `json:"cutoffs"`
}

// Result is the outcome of a root search. Found is false when the search assigned no move.
type Result struct {
	Move  model.Move
	Found bool
	Score int
	Stats Stats
}

// Searcher runs alpha-beta searches at a fixed depth. It is not safe for concurrent use
// because of its random source; use one Searcher per goroutine.
type Searcher struct {
	depth int
	rng   *rand.Rand
}

func NewSearcher(depth int, seed int64) *Searcher {
	if depth < 0 {
		depth = 0
	}
	return &Searcher{depth: depth, rng: rand.New(rand.NewSource(seed))}
}

// Search shuffles the root moves once and runs negamax with alpha-beta pruning. The
// search owns pos until it returns; it restores the position but clears the terminal flags.
func (s *Searcher) Search(pos *model.BoardState, legal []model.Move) Result {
	moves := make([]model.Move, len(legal))
	copy(moves, legal)
	s.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })

	var stats Stats
	score, move, found := AlphaBeta(pos, moves, s.depth, -infinity, infinity, pos.ToMove.Sign(), &stats)
	return Result{Move: move, Found: found, Score: score, Stats: stats}
}

// ChooseMove returns the move to play. When the search assigns none a uniformly random
// legal move is used. ok is false only when there are no legal moves.
func (s *Searcher) ChooseMove(pos *model.BoardState, legal []model.Move) (model.Move, bool) {
	if len(legal) == 0 {
		return model.Move{}, false
	}
	if result := s.Search(pos, legal); result.Found {
		return result.Move, true
	}
	return s.RandomMove(legal), true
}

func (s *Searcher) RandomMove(legal []model.Move) model.Move {
	return legal[s.rng.Intn(len(legal))]
}

// AlphaBeta is negamax with alpha-beta pruning. turnSign is +1 when white is to move.
// The score is from the point of view of the side to move; the move is the best of legal.
func AlphaBeta(pos *model.BoardState, legal []model.Move, depth, alpha, beta, turnSign int, stats *Stats) (int, model.Move, bool) {
	stats.Nodes++
	if depth == 0 || len(legal) == 0 {
		return turnSign * pos.ScorePosition(), model.Move{}, false
	}
	best := -infinity
	var bestMove model.Move
	found := false
	for _, m := range legal {
		pos.Apply(m)
		replies := pos.LegalMoves()
		score, _, _ := AlphaBeta(pos, replies, depth-1, -beta, -alpha, -turnSign, stats)
		score = -score
		pos.Undo()
		if score > best {
			best, bestMove, found = score, m, true
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			stats.Cutoffs++
			break
		}
	}
	return best, bestMove, found
}

// Negamax is the unpruned search AlphaBeta must agree with.
func Negamax(pos *model.BoardState, legal []model.Move, depth, turnSign int) (int, model.Move, bool) {
	if depth == 0 || len(legal) == 0 {
		return turnSign * pos.ScorePosition(), model.Move{}, false
	}
	best := -infinity
	var bestMove model.Move
	found := false
	for _, m := range legal {
		pos.Apply(m)
		score, _, _ := Negamax(pos, pos.LegalMoves(), depth-1, -turnSign)
		pos.Undo()
		if -score > best {
			best, bestMove, found = -score, m, true
		}
	}
	return best, bestMove, found
}

// Minimax scores from white's point of view: white maximizes, black minimizes.
func Minimax(pos *model.BoardState, legal []model.Move, depth int) (int, model.Move, bool) {
	if depth == 0 || len(legal) == 0 {
		return pos.ScorePosition(), model.Move{}, false
	}
	maximizing := pos.ToMove == model.White
	best := infinity
	if maximizing {
		best = -infinity
	}
	var bestMove model.Move
	found := false
	for _, m := range legal {
		pos.Apply(m)
		score, _, _ := Minimax(pos, pos.LegalMoves(), depth-1)
		pos.Undo()
		if (maximizing && score > best) || (!maximizing && score < best) {
			best, bestMove, found = score, m, true
		}
	}
	return best, bestMove, found
}
