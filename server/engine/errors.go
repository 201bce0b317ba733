package engine

import "errors"

// Rule violations. Every rejected action wraps exactly one of these and
// leaves the game untouched.
var (
	ErrOutOfTurn          = errors.New("out of turn")
	ErrInvalidCall        = errors.New("invalid call")
	ErrRevoke             = errors.New("card not held")
	ErrSuitViolation      = errors.New("must follow suit")
	ErrPhaseViolation     = errors.New("action not valid in current phase")
	ErrAuctionNotFinished = errors.New("auction not finished")
	ErrMalformedDeal      = errors.New("malformed deal")
	ErrTrickIncomplete    = errors.New("trick incomplete")
)
