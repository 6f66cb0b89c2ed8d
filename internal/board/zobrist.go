package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [NoPiece][64]uint64
	zobristEnPassant  [2][8]uint64 // [Color][file]
	zobristCastling   [2]uint64
	zobristSideToMove uint64 // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for piece := WhitePawn; piece < NoPiece; piece++ {
		for sq := A8; sq < NoSquare; sq++ {
			zobristPiece[piece][sq] = rng.next()
		}
	}

	for c := White; c <= Black; c++ {
		for file := 0; file < 8; file++ {
			zobristEnPassant[c][file] = rng.next()
		}
		zobristCastling[c] = rng.next()
	}

	zobristSideToMove = rng.next()
}

// Hash returns the Zobrist key of the position with side to move. Positions
// that compare equal and have the same side to move hash identically.
func (p *Position) Hash(side Color) uint64 {
	var hash uint64

	for piece := WhitePawn; piece < NoPiece; piece++ {
		bb := p.Pieces[piece]
		for bb != 0 {
			hash ^= zobristPiece[piece][bb.PopLSB()]
		}
	}

	for c := White; c <= Black; c++ {
		if p.CastlingRights[c] {
			hash ^= zobristCastling[c]
		}
		if ep := p.EnPassant[c]; ep != NoSquare {
			hash ^= zobristEnPassant[c][ep.File()]
		}
	}

	if side == Black {
		hash ^= zobristSideToMove
	}

	return hash
}
