package tak

import "fmt"

// ErrOutOfBounds is returned when a ply's coordinates fall outside the
// board.
var ErrOutOfBounds = fmt.Errorf("tak: ply is out of bounds")

// ErrInvalidDrops describes a malformed drop sequence.
type ErrInvalidDrops string

func (e ErrInvalidDrops) Error() string {
	return fmt.Sprintf("tak: invalid drops: %s", string(e))
}

// PlyError wraps a reason a ply failed to validate against a position,
// matching spec.md's error taxonomy for illegal plies.
type PlyError struct {
	Reason string
}

func (e *PlyError) Error() string {
	return fmt.Sprintf("tak: illegal ply: %s", e.Reason)
}

func illegal(format string, args ...any) error {
	return &PlyError{Reason: fmt.Sprintf(format, args...)}
}

// TpsError describes a malformed TPS position string.
type TpsError struct {
	Reason string
}

func (e *TpsError) Error() string {
	return fmt.Sprintf("tak: invalid tps: %s", e.Reason)
}

// PtnError describes a malformed PTN ply string.
type PtnError struct {
	Reason string
}

func (e *PtnError) Error() string {
	return fmt.Sprintf("tak: invalid ptn: %s", e.Reason)
}
