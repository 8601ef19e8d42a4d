package services

import (
	"errors"
	"fmt"

	"contest-ledger/host"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")

	ErrChallengeNotFound = fmt.Errorf("challenge %w", ErrNotFound)
	ErrChallengeInactive = fmt.Errorf("%w: challenge is not active", ErrInvalidState)
	ErrChallengeEnded    = fmt.Errorf("%w: challenge has ended", ErrInvalidState)
	ErrChallengeNotEnded = fmt.Errorf("%w: challenge has not ended yet", ErrInvalidState)

	ErrCounterExhausted = errors.New("counter exhausted")

	// ErrTransferOutcomeUnknown means a transfer may or may not have settled,
	// e.g. the wallet service timed out or answered 5xx.
	ErrTransferOutcomeUnknown = errors.New("transfer outcome unknown")
)

// ErrorKind names the failure class of an entry point error. It is used as
// a metrics label and to pick the HTTP status.
type ErrorKind string

const (
	KindAuth         ErrorKind = "auth"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindTransfer     ErrorKind = "transfer"
	KindInternal     ErrorKind = "internal"
)

func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, host.ErrUnauthorized):
		return KindAuth
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, host.ErrTransferFailed):
		return KindTransfer
	default:
		return KindInternal
	}
}
