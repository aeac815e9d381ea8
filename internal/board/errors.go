package board

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned for coordinates outside the configured board.
	ErrOutOfRange = errors.New("square out of range")
	// ErrEmptyHistory is returned by Undo when there is nothing to reverse.
	ErrEmptyHistory = errors.New("no move to undo")
	// ErrNoPiece is returned when a move starts on an empty square.
	ErrNoPiece = errors.New("no piece on square")
	// ErrInvalidLayout is returned for malformed layout strings.
	ErrInvalidLayout = errors.New("invalid layout")
)
