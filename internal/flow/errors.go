// Package flow holds the per-session state machines for token-spending and
// token-earning submissions.
package flow

import "errors"

var (
	ErrCannotAfford    = errors.New("reward is not affordable")
	ErrInFlight        = errors.New("a request is already in flight")
	ErrNotConfirming   = errors.New("nothing is awaiting confirmation")
	ErrAttemptMismatch = errors.New("confirmation does not match the pending attempt")
	ErrFinished        = errors.New("flow has already finished")
	ErrRejected        = errors.New("request was rejected")
)
