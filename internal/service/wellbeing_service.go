package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
	"github.com/jutt16/right2thrive-sub001/pkg/validator"
)

// WellbeingService covers complaints, bookings, weekly goals and the contact form.
type WellbeingService struct {
	api       APIClient
	validator *validator.Validator
	log       logging.Logger
}

func NewWellbeingService(api APIClient, validator *validator.Validator, log logging.Logger) *WellbeingService {
	return &WellbeingService{
		api:       api,
		validator: validator,
		log:       log.With("component", "wellbeing_service"),
	}
}

func (s *WellbeingService) Complaints(ctx context.Context, token string) ([]domain.Complaint, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/complaints", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Complaint](raw)
}

func (s *WellbeingService) CreateComplaint(ctx context.Context, token string, req domain.ComplaintRequest) (*domain.Complaint, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var raw json.RawMessage
	err := s.api.Call(ctx, "/api/complaints", apiclient.Request{
		Method: http.MethodPost,
		Token:  token,
		Body:   req,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Complaint](raw)
}

func (s *WellbeingService) Bookings(ctx context.Context, token string) ([]domain.Booking, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/bookings", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Booking](raw)
}

func (s *WellbeingService) WeeklyGoals(ctx context.Context, token string) ([]domain.WeeklyGoal, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/weekly-goals", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.WeeklyGoal](raw)
}

func (s *WellbeingService) CreateWeeklyGoal(ctx context.Context, token string, req domain.WeeklyGoalRequest) (*domain.WeeklyGoal, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var raw json.RawMessage
	err := s.api.Call(ctx, "/api/weekly-goals", apiclient.Request{
		Method: http.MethodPost,
		Token:  token,
		Body:   req,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.WeeklyGoal](raw)
}

// Contact sends the contact form. token may be empty for visitors.
func (s *WellbeingService) Contact(ctx context.Context, token string, req domain.ContactRequest) (*domain.MessageResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var resp domain.MessageResponse
	err := s.api.Call(ctx, "/api/contact", apiclient.Request{
		Method: http.MethodPost,
		Token:  token,
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
