// Package engine implements the NerdChess evaluator and alpha-beta search.
package engine

import (
	"math"

	"github.com/nerdchess/nerdchess/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 300
	BishopValue = 325
	RookValue   = 500
	QueenValue  = 900
)

// Piece values array for quick lookup. The king is handled by king safety.
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

// Board control
const (
	controlDivisor = 10
)

// King safety
const (
	shieldNear       = 10 // tenths of a pawn, directly in front of the king
	shieldFar        = 7  // one square further away
	shieldScale      = 50
	shieldMissing    = -50
	kingAttackWeight = 4
)

// Piece placement bonuses and penalties
const (
	centralPawnBonus     = 20
	nearCentralPawnBonus = 8
	centralKnightBonus   = 15
	nearCentralKnight    = 10
	knightOnRimPenalty   = -15
	earlyQueenPenalty    = -30
	kingCornerBonus      = 25
	rookOpenFileBonus    = 20
	rookSemiOpenBonus    = 10
	badBishopPenalty     = -4
)

// Pawn structure
const (
	doubledPawnPenalty = -15
	tripledPawnPenalty = -40
	pawnChainBonus     = 8
)

// Passed pawn bonuses by relative row: index 0 is the home rank, 7 the
// promotion rank.
var passedPawnBonus = [8]int{0, 5, 10, 20, 35, 60, 100, 0}

// Center masks. The center is d4, e4, d5, e5; the near center is the
// c3-f6 block.
var (
	centerMask     board.Bitboard
	nearCenterMask board.Bitboard
)

func init() {
	for sq := board.A8; sq < board.NoSquare; sq++ {
		row, file := sq.Row(), sq.File()
		if row >= 3 && row <= 4 && file >= 3 && file <= 4 {
			centerMask = centerMask.Set(sq)
		}
		if row >= 2 && row <= 5 && file >= 2 && file <= 5 {
			nearCenterMask = nearCenterMask.Set(sq)
		}
	}
}

// EvalConfig toggles optional evaluation terms.
type EvalConfig struct {
	// KingSafety adds the pawn shield and king attack terms, and scores a
	// missing king as mate.
	KingSafety bool
}

// DefaultEvalConfig returns the configuration used by the engine.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{KingSafety: true}
}

// Evaluator scores positions in centipawns, positive favouring White. It
// owns its weight tables and is safe for concurrent use.
type Evaluator struct {
	config         EvalConfig
	controlWeights [2][64]int
	shieldBonus    [4][4]int // [near pawns][far pawns]
}

// NewEvaluator builds an evaluator and its lookup tables.
func NewEvaluator(cfg EvalConfig) *Evaluator {
	e := &Evaluator{config: cfg}
	e.controlWeights[board.White] = controlWeightTable(board.White)
	e.controlWeights[board.Black] = controlWeightTable(board.Black)
	e.shieldBonus = shieldBonusTable()
	return e
}

// Config returns the evaluator configuration.
func (e *Evaluator) Config() EvalConfig {
	return e.config
}

// ControlWeight returns the value to c of controlling sq.
func (e *Evaluator) ControlWeight(c board.Color, sq board.Square) int {
	if c >= board.NoColor || !sq.IsValid() {
		return 0
	}
	return e.controlWeights[c][sq]
}

// controlWeightTable favours the centre and the opponent's half of the
// board. Black's table is White's flipped vertically.
func controlWeightTable(c board.Color) [64]int {
	var table [64]int
	for sq := board.A8; sq < board.NoSquare; sq++ {
		row, file := float64(sq.Row()), float64(sq.File())
		dist := math.Hypot(file-3.5, row-3)
		w := 2*math.Sqrt(8-row) + 5 - dist
		target := sq
		if c == board.Black {
			target = sq.Mirror()
		}
		table[target] = int(w * w)
	}
	return table
}

// shieldBonusTable precomputes the diminishing pawn shield bonus so that a
// third shielding pawn adds little over the second.
func shieldBonusTable() [4][4]int {
	var table [4][4]int
	for near := 0; near < 4; near++ {
		for far := 0; far < 4; far++ {
			shield := shieldNear*near + shieldFar*far
			if shield < 10 {
				table[near][far] = shieldMissing
				continue
			}
			x := float64(shield-10) / 10
			table[near][far] = int(math.Round(math.Pow(x, 1.0/16) * shieldScale))
		}
	}
	return table
}

// Evaluate returns the static evaluation of the position from White's
// perspective.
func (e *Evaluator) Evaluate(p *board.Position) int {
	return e.EvaluateWithPawnTable(p, nil)
}

// EvaluateWithPawnTable is like Evaluate but caches the pawn structure term.
// A nil table disables caching.
func (e *Evaluator) EvaluateWithPawnTable(p *board.Position, pawns *PawnTable) int {
	if e.config.KingSafety {
		whiteMissing, blackMissing := p.KingMissing(board.White), p.KingMissing(board.Black)
		switch {
		case whiteMissing && blackMissing:
			return 0
		case whiteMissing:
			return -MateScore
		case blackMissing:
			return MateScore
		}
	}

	control := [2]board.Bitboard{p.ControlMap(board.White), p.ControlMap(board.Black)}

	score := evaluateMaterial(p)
	score += evaluatePawnStructureWithCache(p, pawns)
	score += evaluatePieces(p)
	score += e.evaluateBoardControl(control)

	if e.config.KingSafety {
		score += e.evaluateKingSafety(p, board.White, control[board.Black])
		score -= e.evaluateKingSafety(p, board.Black, control[board.White])
	}

	return score
}

// EvaluateMaterial returns just the material balance.
func EvaluateMaterial(p *board.Position) int {
	return evaluateMaterial(p)
}

func evaluateMaterial(p *board.Position) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		score += p.Count(board.NewPiece(pt, board.White)) * pieceValues[pt]
		score -= p.Count(board.NewPiece(pt, board.Black)) * pieceValues[pt]
	}
	return score
}

// evaluateBoardControl sums the weights of the squares each side controls.
func (e *Evaluator) evaluateBoardControl(control [2]board.Bitboard) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sum := 0
		bb := control[c]
		for bb != 0 {
			sum += e.controlWeights[c][bb.PopLSB()]
		}
		if c == board.White {
			score += sum / controlDivisor
		} else {
			score -= sum / controlDivisor
		}
	}
	return score
}

// evaluateKingSafety scores c's king: a pawn shield bonus minus a penalty
// growing with the square of the attacked squares around it.
func (e *Evaluator) evaluateKingSafety(p *board.Position, c board.Color, enemyControl board.Bitboard) int {
	ksq := p.KingSquare(c)
	if ksq == board.NoSquare {
		return -MateScore
	}

	dir := -1
	if c == board.Black {
		dir = 1
	}

	own := p.Pieces[board.NewPiece(board.Pawn, c)]
	near, far := 0, 0
	for df := -1; df <= 1; df++ {
		if own.Get(board.NewSquare(ksq.File()+df, ksq.Row()+dir)) {
			near++
		}
		if own.Get(board.NewSquare(ksq.File()+df, ksq.Row()+2*dir)) {
			far++
		}
	}
	score := e.shieldBonus[near][far]

	zone := kingZone(ksq)
	n := (zone & enemyControl).PopCount()
	score -= kingAttackWeight * n * n

	return score
}

// kingZone returns the king square and its neighbours.
func kingZone(ksq board.Square) board.Bitboard {
	var zone board.Bitboard
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			zone = zone.Set(board.NewSquare(ksq.File()+df, ksq.Row()+dr))
		}
	}
	return zone
}

// evaluatePieces applies the per-piece placement heuristics.
func evaluatePieces(p *board.Position) int {
	occupied := p.CountPieces()
	queensOn := p.Count(board.WhiteQueen)+p.Count(board.BlackQueen) > 0

	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		ownPawns := p.Pieces[board.NewPiece(board.Pawn, c)]
		enemyPawns := p.Pieces[board.NewPiece(board.Pawn, c.Other())]
		backRank := board.Row7
		if c == board.Black {
			backRank = board.Row0
		}

		// Central pawns
		score += sign * (ownPawns & centerMask).PopCount() * centralPawnBonus
		score += sign * (ownPawns & nearCenterMask &^ centerMask).PopCount() * nearCentralPawnBonus

		// Knights: centre bonus, rim penalty, stronger in crowded positions
		knights := p.Pieces[board.NewPiece(board.Knight, c)]
		score += sign * (knights & centerMask).PopCount() * centralKnightBonus
		score += sign * (knights & nearCenterMask &^ centerMask).PopCount() * nearCentralKnight
		score += sign * (knights & (board.FileA | board.FileH)).PopCount() * knightOnRimPenalty
		score += sign * knights.PopCount() * (occupied - 16) / 2

		// Bad bishops
		bishops := p.Pieces[board.NewPiece(board.Bishop, c)]
		for bishops != 0 {
			sq := bishops.PopLSB()
			sameColour := board.DarkSquares
			if sq.IsLight() {
				sameColour = board.LightSquares
			}
			score += sign * (ownPawns & sameColour).PopCount() * badBishopPenalty
		}

		// Rooks: open files, stronger as material thins
		rooks := p.Pieces[board.NewPiece(board.Rook, c)]
		score += sign * rooks.PopCount() * (32 - occupied) / 2
		for rooks != 0 {
			file := board.FileMask[rooks.PopLSB().File()]
			switch {
			case ownPawns&file == 0 && enemyPawns&file == 0:
				score += sign * rookOpenFileBonus
			case ownPawns&file == 0:
				score += sign * rookSemiOpenBonus
			}
		}

		// Queens: early development penalty, stronger as material thins
		queens := p.Pieces[board.NewPiece(board.Queen, c)]
		score += sign * queens.PopCount() * (32 - occupied) / 4
		minorsHome := (p.Pieces[board.NewPiece(board.Knight, c)] | p.Pieces[board.NewPiece(board.Bishop, c)]) & backRank
		if queens&nearCenterMask != 0 && minorsHome.PopCount() >= 2 {
			score += sign * earlyQueenPenalty
		}

		// King tucked in a corner while queens remain
		if queensOn {
			ksq := p.KingSquare(c)
			if ksq != board.NoSquare && ksq.RelativeRow(c) == 0 && (ksq.File() <= 2 || ksq.File() >= 5) {
				score += sign * kingCornerBonus
			}
		}
	}

	return score
}

// evaluatePawnStructureWithCache returns the pawn structure score, probing
// and filling the table when one is given.
func evaluatePawnStructureWithCache(p *board.Position, pawns *PawnTable) int {
	if pawns == nil {
		return evaluatePawnStructure(p)
	}

	key := PawnKey(p)
	if score, found := pawns.Probe(key); found {
		return score
	}

	score := evaluatePawnStructure(p)
	pawns.Store(key, score)
	return score
}

// evaluatePawnStructure scores passed, doubled and chained pawns. It reads
// only the pawn bitboards.
func evaluatePawnStructure(p *board.Position) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		own := p.Pieces[board.NewPiece(board.Pawn, c)]
		enemy := p.Pieces[board.NewPiece(board.Pawn, c.Other())]

		for file := 0; file < 8; file++ {
			switch n := (own & board.FileMask[file]).PopCount(); {
			case n == 2:
				score += sign * doubledPawnPenalty
			case n >= 3:
				score += sign * tripledPawnPenalty
			}
		}

		bb := own
		for bb != 0 {
			sq := bb.PopLSB()
			if isPassedPawn(sq, c, enemy) {
				score += sign * passedPawnBonus[sq.RelativeRow(c)]
			}
			if isChained(sq, c, own) {
				score += sign * pawnChainBonus
			}
		}
	}
	return score
}

// isPassedPawn reports whether no enemy pawn stands in front of the pawn on
// its own or an adjacent file.
func isPassedPawn(sq board.Square, c board.Color, enemyPawns board.Bitboard) bool {
	for bb := enemyPawns; bb != 0; {
		e := bb.PopLSB()
		df := e.File() - sq.File()
		if df < -1 || df > 1 {
			continue
		}
		if e.RelativeRow(c) > sq.RelativeRow(c) {
			return false
		}
	}
	return true
}

// isChained reports whether the pawn is defended by a friendly pawn.
func isChained(sq board.Square, c board.Color, own board.Bitboard) bool {
	behind := 1
	if c == board.Black {
		behind = -1
	}
	for _, df := range [2]int{-1, 1} {
		if own.Get(board.NewSquare(sq.File()+df, sq.Row()+behind)) {
			return true
		}
	}
	return false
}
