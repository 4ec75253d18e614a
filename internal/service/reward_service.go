package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
	"github.com/jutt16/right2thrive-sub001/pkg/validator"
)

const tokensBase = "/api/thrive-tokens"

var ErrRewardNotFound = errors.New("reward not found")

// RewardService reads the thrive-token ledger and submits spends and awards.
// Nothing is cached: every call reads from the backend.
type RewardService struct {
	api       APIClient
	validator *validator.Validator
	log       logging.Logger
}

func NewRewardService(api APIClient, validator *validator.Validator, log logging.Logger) *RewardService {
	return &RewardService{
		api:       api,
		validator: validator,
		log:       log.With("component", "reward_service"),
	}
}

func (s *RewardService) ListRewards(ctx context.Context, token string) ([]domain.Reward, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, tokensBase+"/rewards", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Reward](raw)
}

// GetReward returns ErrRewardNotFound when the backend has no such reward,
// whether it says so with a 404 or only in the message.
func (s *RewardService) GetReward(ctx context.Context, token string, id int64) (*domain.Reward, error) {
	var raw json.RawMessage
	err := s.api.Call(ctx, fmt.Sprintf("%s/rewards/%d", tokensBase, id), bearer(token), &raw)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrRewardNotFound, err)
		}
		return nil, err
	}
	return decodeOne[domain.Reward](raw)
}

func (s *RewardService) Dashboard(ctx context.Context, token string) (*domain.TokenDashboard, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, tokensBase+"/dashboard", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeOne[domain.TokenDashboard](raw)
}

func (s *RewardService) Overview(ctx context.Context, token string) (*domain.TokenOverview, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, tokensBase+"/overview", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeOne[domain.TokenOverview](raw)
}

// Redeem spends tokens on a reward. key is sent as the Idempotency-Key so a
// retried attempt is not charged twice.
func (s *RewardService) Redeem(ctx context.Context, token string, rewardID int64, key string) (*domain.RedeemResponse, error) {
	var resp domain.RedeemResponse
	err := s.api.Call(ctx, fmt.Sprintf("%s/rewards/%d/redeem", tokensBase, rewardID), apiclient.Request{
		Method:  http.MethodPost,
		Token:   token,
		Body:    map[string]string{"idempotency_key": key},
		Headers: map[string]string{"Idempotency-Key": key},
	}, &resp)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "reward redeemed",
		"reward_id", rewardID,
		"redemption_id", resp.Redemption.ID,
		"new_balance", resp.NewBalance,
	)
	return &resp, nil
}

// SubmitReflection sends a check-in reflection with its idempotency key.
func (s *RewardService) SubmitReflection(ctx context.Context, token string, req domain.ReflectionRequest) (*domain.ReflectionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var resp domain.ReflectionResponse
	err := s.api.Call(ctx, tokensBase+"/reflections", apiclient.Request{
		Method:  http.MethodPost,
		Token:   token,
		Body:    req,
		Headers: map[string]string{"Idempotency-Key": req.IdempotencyKey},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
