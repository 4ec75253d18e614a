package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

const redeemFallbackMessage = "We couldn't redeem this reward. Please try again."

// RedemptionState is a step of the confirmation-gated redemption.
type RedemptionState int

const (
	RedemptionIdle RedemptionState = iota
	RedemptionConfirming
	RedemptionInFlight
	// RedemptionFailed is Idle with the last error attached. The user has to
	// request again; nothing is retried automatically.
	RedemptionFailed
)

func (s RedemptionState) String() string {
	switch s {
	case RedemptionConfirming:
		return "confirming"
	case RedemptionInFlight:
		return "in_flight"
	case RedemptionFailed:
		return "failed"
	default:
		return "idle"
	}
}

// RedeemFunc performs the redeem call. key is sent as the Idempotency-Key.
type RedeemFunc func(ctx context.Context, rewardID int64, key string) (*domain.RedeemResponse, error)

// RedemptionView is what the page renders for the flow.
type RedemptionView struct {
	State     string             `json:"state"`
	RewardID  int64              `json:"reward_id,omitempty"`
	AttemptID string             `json:"attempt_id,omitempty"`
	Error     string             `json:"error,omitempty"`
	Result    *domain.Redemption `json:"redemption,omitempty"`
	Balance   *int               `json:"balance,omitempty"`
}

// Redemption is the state machine for one reward within one session.
type Redemption struct {
	mu       sync.Mutex
	state    RedemptionState
	rewardID int64
	attempt  string
	// retained is an attempt id whose outcome is unknown. It is reused on the
	// next request so the backend can deduplicate a spend it already made.
	retained string
	errMsg   string
	result   *domain.Redemption
	balance  *int
	newID    func() string
}

func NewRedemption() *Redemption {
	return &Redemption{newID: uuid.NewString}
}

// State returns the current step.
func (r *Redemption) State() RedemptionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RedeemEnabled reports whether the redeem action may be offered for reward.
func (r *Redemption) RedeemEnabled(reward domain.Reward) bool {
	return reward.CanAfford && r.State() != RedemptionInFlight
}

// Request opens the confirmation step. It is a no-op returning
// ErrCannotAfford when the backend says the reward is out of reach, and
// ErrInFlight while a previous confirmation is still running.
func (r *Redemption) Request(reward domain.Reward) (RedemptionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case RedemptionInFlight:
		return r.viewLocked(), ErrInFlight
	case RedemptionConfirming:
		if r.rewardID == reward.ID {
			return r.viewLocked(), nil
		}
	}

	if !reward.CanAfford {
		return r.viewLocked(), ErrCannotAfford
	}

	attempt := r.retained
	if attempt == "" || r.rewardID != reward.ID {
		attempt = r.newID()
	}

	r.state = RedemptionConfirming
	r.rewardID = reward.ID
	r.attempt = attempt
	r.errMsg = ""
	r.result = nil

	return r.viewLocked(), nil
}

// Cancel leaves the confirmation step without sending anything.
func (r *Redemption) Cancel(attempt string) (RedemptionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RedemptionConfirming {
		return r.viewLocked(), ErrNotConfirming
	}
	if attempt != r.attempt {
		return r.viewLocked(), ErrAttemptMismatch
	}

	r.state = RedemptionIdle
	r.attempt = ""
	return r.viewLocked(), nil
}

// Confirm sends the redemption. Exactly one call is made per confirmation; a
// second Confirm while the first is running returns ErrInFlight without
// calling redeem.
func (r *Redemption) Confirm(ctx context.Context, attempt string, redeem RedeemFunc) (RedemptionView, error) {
	r.mu.Lock()
	switch {
	case r.state == RedemptionInFlight:
		defer r.mu.Unlock()
		return r.viewLocked(), ErrInFlight
	case r.state != RedemptionConfirming:
		defer r.mu.Unlock()
		return r.viewLocked(), ErrNotConfirming
	case attempt != r.attempt:
		defer r.mu.Unlock()
		return r.viewLocked(), ErrAttemptMismatch
	}
	r.state = RedemptionInFlight
	rewardID := r.rewardID
	r.mu.Unlock()

	resp, err := redeem(ctx, rewardID, attempt)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempt = ""
	if err == nil && resp == nil {
		err = &apiclient.Error{Kind: apiclient.KindParse, Message: "empty redeem response"}
	}
	if err == nil && resp.Rejected() {
		err = fmt.Errorf("%w: %s", ErrRejected, resp.Message)
		r.errMsg = resp.Message
		if r.errMsg == "" {
			r.errMsg = redeemFallbackMessage
		}
		r.state = RedemptionFailed
		r.retained = ""
		return r.viewLocked(), err
	}
	if err != nil {
		r.state = RedemptionFailed
		r.errMsg = apiclient.Message(err, redeemFallbackMessage)
		if apiclient.Ambiguous(err) {
			r.retained = attempt
		} else {
			r.retained = ""
		}
		return r.viewLocked(), err
	}

	redemption := resp.Redemption
	balance := resp.NewBalance
	r.state = RedemptionIdle
	r.retained = ""
	r.errMsg = ""
	r.result = &redemption
	r.balance = &balance

	return r.viewLocked(), nil
}

// View returns a snapshot for rendering.
func (r *Redemption) View() RedemptionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Redemption) viewLocked() RedemptionView {
	v := RedemptionView{
		State:    r.state.String(),
		RewardID: r.rewardID,
		Error:    r.errMsg,
		Result:   r.result,
		Balance:  r.balance,
	}
	if r.state == RedemptionConfirming || r.state == RedemptionInFlight {
		v.AttemptID = r.attempt
	}
	return v
}
