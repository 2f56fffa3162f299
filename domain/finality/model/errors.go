package model

import "github.com/pkg/errors"

var (
	// ErrUnknownBlock is returned when a finalization state is requested for
	// a block that was never processed and can't be rebuilt.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrMissingBlock is returned when a historical block needed to compute
	// rewards or to replay a state is missing from the block database.
	ErrMissingBlock = errors.New("missing block")
)
