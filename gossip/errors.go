package gossip

import "errors"

var (
	// ErrInvalidParameters is returned for malformed generator or session inputs.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrInvalidState is returned when an action is attempted outside an active round.
	ErrInvalidState = errors.New("invalid state")
	// ErrAlreadyUsed is returned when a hint or verification is requested twice.
	ErrAlreadyUsed = errors.New("already used")
	// ErrNotFound is returned for an unknown session, participant or testimony index.
	ErrNotFound = errors.New("not found")
	// ErrUnreachableBlocker is returned when the blocker is the source itself.
	ErrUnreachableBlocker = errors.New("blocker equals source")
)
