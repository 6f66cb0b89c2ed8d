package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is returned (wrapped) for any malformed FEN string.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN parses a FEN string and returns the position and side to move.
// Only the first four fields are interpreted; move counters are ignored.
func ParseFEN(fen string) (Position, Color, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Position{}, NoColor, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := EmptyPosition()

	if err := parsePiecePlacement(&pos, parts[0]); err != nil {
		return Position{}, NoColor, err
	}

	var side Color
	switch parts[1] {
	case "w":
		side = White
	case "b":
		side = Black
	default:
		return Position{}, NoColor, fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, parts[1])
	}

	if err := parseCastlingRights(&pos, parts[2]); err != nil {
		return Position{}, NoColor, err
	}

	// The FEN target belongs to the side to move.
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return Position{}, NoColor, fmt.Errorf("%w: en passant square: %v", ErrInvalidFEN, err)
		}
		pos.EnPassant[side] = sq
	}

	return pos, side, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
// FEN lists rank 8 first, which is row 0 here.
func parsePiecePlacement(pos *Position, placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}

	for row, rowStr := range rows {
		file := 0

		for _, c := range rowStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, 8-row)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("%w: invalid piece character %q", ErrInvalidFEN, c)
			}
			pos.Place(piece, NewSquare(file, row))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-row, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling field. Either wing grants the
// side its (single) castling right.
func parseCastlingRights(pos *Position, castling string) error {
	pos.CastlingRights = [2]bool{false, false}
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K', 'Q':
			pos.CastlingRights[White] = true
		case 'k', 'q':
			pos.CastlingRights[Black] = true
		default:
			return fmt.Errorf("%w: invalid castling character %q", ErrInvalidFEN, c)
		}
	}

	return nil
}

// FEN returns the FEN representation of the position with the given side to
// move. Move counters are always "0 1".
func (p *Position) FEN(side Color) string {
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, row))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if side == Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	sb.WriteByte(' ')
	castling := ""
	if p.CastlingRights[White] {
		castling += "KQ"
	}
	if p.CastlingRights[Black] {
		castling += "kq"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	sb.WriteByte(' ')
	if side < NoColor {
		sb.WriteString(p.EnPassant[side].String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(" 0 1")
	return sb.String()
}
