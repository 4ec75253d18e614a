package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

const reflectionFallbackMessage = "We couldn't save your reflection. Please try again."

// ReflectionState is a step of the check-in reflection.
type ReflectionState int

const (
	ReflectionForm ReflectionState = iota
	ReflectionSubmitting
	ReflectionAcknowledged
	ReflectionFailed
	ReflectionSkipped
)

func (s ReflectionState) String() string {
	switch s {
	case ReflectionSubmitting:
		return "submitting"
	case ReflectionAcknowledged:
		return "acknowledged"
	case ReflectionFailed:
		return "failed"
	case ReflectionSkipped:
		return "skipped"
	default:
		return "form"
	}
}

// SubmitFunc sends a reflection.
type SubmitFunc func(ctx context.Context, req domain.ReflectionRequest) (*domain.ReflectionResponse, error)

// ReflectionView is what the page renders for the flow.
type ReflectionView struct {
	State         string `json:"state"`
	Error         string `json:"error,omitempty"`
	TokensAwarded int    `json:"tokens_awarded,omitempty"`
	Balance       *int   `json:"balance,omitempty"`
}

// Reflection is the state machine of one check-in. The idempotency key is
// created when the user first submits and is reused only when the same
// content is retried after a failure.
type Reflection struct {
	mu            sync.Mutex
	state         ReflectionState
	key           string
	content       string
	errMsg        string
	tokensAwarded int
	balance       *int
	newKey        func() string
}

func NewReflection() *Reflection {
	return &Reflection{newKey: uuid.NewString}
}

// State returns the current step.
func (r *Reflection) State() ReflectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Submit sends content with the flow's idempotency key.
func (r *Reflection) Submit(ctx context.Context, content string, submit SubmitFunc) (ReflectionView, error) {
	r.mu.Lock()
	switch r.state {
	case ReflectionSubmitting:
		defer r.mu.Unlock()
		return r.viewLocked(), ErrInFlight
	case ReflectionAcknowledged, ReflectionSkipped:
		defer r.mu.Unlock()
		return r.viewLocked(), ErrFinished
	}

	if r.key == "" || r.state != ReflectionFailed || content != r.content {
		r.key = r.newKey()
		r.content = content
	}
	r.state = ReflectionSubmitting
	req := domain.ReflectionRequest{Content: content, IdempotencyKey: r.key}
	r.mu.Unlock()

	resp, err := submit(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil && resp == nil {
		err = &apiclient.Error{Kind: apiclient.KindParse, Message: "empty reflection response"}
	}
	if err == nil && resp.Rejected() {
		r.state = ReflectionFailed
		r.errMsg = resp.Message
		if r.errMsg == "" {
			r.errMsg = reflectionFallbackMessage
		}
		return r.viewLocked(), fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	if err != nil {
		r.state = ReflectionFailed
		r.errMsg = apiclient.Message(err, reflectionFallbackMessage)
		return r.viewLocked(), err
	}

	balance := resp.Balance
	r.state = ReflectionAcknowledged
	r.errMsg = ""
	r.tokensAwarded = resp.TokensAwarded
	r.balance = &balance

	return r.viewLocked(), nil
}

// Skip ends the check-in without sending anything.
func (r *Reflection) Skip() (ReflectionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case ReflectionSubmitting:
		return r.viewLocked(), ErrInFlight
	case ReflectionAcknowledged, ReflectionSkipped:
		return r.viewLocked(), ErrFinished
	}

	r.state = ReflectionSkipped
	r.errMsg = ""
	return r.viewLocked(), nil
}

// Key returns the idempotency key currently held, if any.
func (r *Reflection) Key() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

// View returns a snapshot for rendering.
func (r *Reflection) View() ReflectionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Reflection) viewLocked() ReflectionView {
	return ReflectionView{
		State:         r.state.String(),
		Error:         r.errMsg,
		TokensAwarded: r.tokensAwarded,
		Balance:       r.balance,
	}
}
