package board

import (
	"fmt"
	"strings"
)

// SAN converts a move to Standard Algebraic Notation. Pawns reaching the last
// row are written with "=Q" since promotion is always to a queen.
func (m Move) SAN(pos *Position) string {
	if !m.IsValid() {
		return "-"
	}

	piece := pos.PieceAt(m.From)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder

	pt := piece.Type()
	us := piece.Color()

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(disambiguation(pos, m, piece))
	}

	if m.IsCapture(pos) {
		if pt == Pawn {
			sb.WriteByte('a' + byte(m.From.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.To.String())

	if pt == Pawn && m.To.RelativeRow(us) == 7 {
		sb.WriteString("=Q")
	}

	after := *pos
	after.MovePiece(m.From, m.To)
	if after.IsCheckmated(us.Other()) {
		sb.WriteByte('#')
	} else if after.InCheck(us.Other()) {
		sb.WriteByte('+')
	}

	return sb.String()
}

// IsCapture reports whether the move takes an enemy piece, en passant
// included.
func (m Move) IsCapture(pos *Position) bool {
	piece := pos.PieceAt(m.From)
	if piece == NoPiece {
		return false
	}
	us := piece.Color()
	if pos.PieceColorAt(m.To, us.Other()) {
		return true
	}
	return piece.Type() == Pawn && m.To == pos.EnPassant[us]
}

// disambiguation returns the file, rank or square needed to tell the move
// apart from another piece of the same kind reaching the same square.
func disambiguation(pos *Position, m Move, piece Piece) string {
	var candidates []Square
	others := pos.Pieces[piece].Clear(m.From)
	for others != 0 {
		sq := others.PopLSB()
		if pos.Destinations(sq, piece.Type(), piece.Color(), false).Get(m.To) {
			candidates = append(candidates, sq)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile := false
	sameRank := false
	for _, sq := range candidates {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + m.From.File()))
	}
	if !sameRank {
		return string(rune('0' + m.From.Rank()))
	}
	return m.From.String()
}

// ParseSAN parses a SAN string for the given side and returns the matching
// pseudo-legal move. Castling is not supported.
func ParseSAN(s string, pos *Position, side Color) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	if strings.HasPrefix(s, "O-O") || strings.HasPrefix(s, "0-0") {
		return NoMove, fmt.Errorf("castling is not supported: %q", orig)
	}

	// Promotion is always to a queen.
	if idx := strings.Index(s, "="); idx >= 0 {
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		switch s[0] {
		case 'N':
			pt = Knight
		case 'B':
			pt = Bishop
		case 'R':
			pt = Rook
		case 'Q':
			pt = Queen
		case 'K':
			pt = King
		default:
			return NoMove, fmt.Errorf("invalid piece letter in %q", orig)
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("invalid SAN: %q", orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	file, rank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '0')
		}
	}

	for _, m := range pos.PseudoLegalMoves(side) {
		if m.To != dest || pos.PieceTypeAt(m.From) != pt {
			continue
		}
		if file >= 0 && m.From.File() != file {
			continue
		}
		if rank >= 0 && m.From.Rank() != rank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("no move matches %q", orig)
}

// MovesToSAN converts a sequence of moves played from pos to SAN.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	p := *pos

	for i, m := range moves {
		result[i] = m.SAN(&p)
		p.MovePiece(m.From, m.To)
	}

	return result
}
