package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/session"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
	"github.com/jutt16/right2thrive-sub001/pkg/jwt"
	"github.com/jutt16/right2thrive-sub001/pkg/validator"
)

const (
	HomePath = "/dashboard"

	loginFallbackMessage = "Login failed. Please check your details and try again."
)

type AuthService struct {
	api          APIClient
	sessions     *session.Store
	validator    *validator.Validator
	log          logging.Logger
	newSessionID func() string
}

// LoginResult tells the page where to go after a login attempt.
type LoginResult struct {
	State     string            `json:"state"`
	Redirect  string            `json:"redirect"`
	Message   string            `json:"message,omitempty"`
	User      *domain.User      `json:"user,omitempty"`
	Therapist *domain.Therapist `json:"therapist,omitempty"`
	// SessionID is set when the user was signed in. The session lives under
	// this new id and the browser has to be moved onto it.
	SessionID string `json:"-"`
}

func NewAuthService(api APIClient, sessions *session.Store, validator *validator.Validator, log logging.Logger) *AuthService {
	return &AuthService{
		api:          api,
		sessions:     sessions,
		validator:    validator,
		log:          log.With("component", "auth_service"),
		newSessionID: jwt.NewSessionID,
	}
}

// signIn writes the session under a fresh id and discards the one the browser
// arrived with, so an id seen before login never becomes authorized.
func (s *AuthService) signIn(ctx context.Context, prevSessionID, token string, user domain.User) (string, error) {
	sid := s.newSessionID()
	if err := s.sessions.Set(ctx, sid, token, user); err != nil {
		return "", err
	}
	if err := s.sessions.Clear(ctx, prevSessionID); err != nil {
		s.log.Warn(ctx, "failed to discard pre-login session", "error", err)
	}
	return sid, nil
}

// Login forwards credentials to the backend. A verified user gets a session;
// an unverified one gets only a pending-verification email, never a token.
func (s *AuthService) Login(ctx context.Context, sessionID string, req domain.LoginRequest) (*LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var resp domain.LoginResponse
	err := s.api.Call(ctx, "/api/login", apiclient.Request{
		Method: http.MethodPost,
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, credentialError(err)
	}

	if !resp.Success || resp.User == nil || !resp.User.Valid() {
		msg := resp.Message
		if msg == "" {
			msg = loginFallbackMessage
		}
		return nil, &apiclient.Error{Kind: apiclient.KindHTTP, Status: http.StatusUnauthorized, Message: msg}
	}

	if !resp.User.IsEmailVerified {
		if err := s.sessions.Clear(ctx, sessionID); err != nil {
			return nil, err
		}
		if err := s.sessions.SetPendingVerification(ctx, sessionID, resp.User.Email); err != nil {
			return nil, err
		}
		s.log.Info(ctx, "login pending email verification", "user_id", resp.User.ID)
		return &LoginResult{
			State:    guard.PendingVerification.String(),
			Redirect: guard.VerifyEmailRedirect(resp.User.Email),
			Message:  resp.Message,
		}, nil
	}

	if resp.Token == "" {
		return nil, parseError("login response carried no token")
	}

	sid, err := s.signIn(ctx, sessionID, resp.Token, *resp.User)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", resp.User.ID)

	return &LoginResult{
		State:     guard.Authorized.String(),
		Redirect:  HomePath,
		Message:   resp.Message,
		User:      resp.User,
		Therapist: resp.Therapist,
		SessionID: sid,
	}, nil
}

// credentialError keeps a rejected login from looking like an expired session.
func credentialError(err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Kind == apiclient.KindAuthExpired {
		return &apiclient.Error{Kind: apiclient.KindHTTP, Status: apiErr.Status, Message: apiErr.Message}
	}
	return err
}

// Logout drops the local session. The bearer token is opaque to us and the
// backend is not told.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out")
	return nil
}

// VerifyEmail completes verification. When the backend signs the user in as
// part of it the session is written; otherwise the user is sent to log in.
func (s *AuthService) VerifyEmail(ctx context.Context, sessionID string, req domain.VerifyEmailRequest) (*LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var resp domain.VerifyEmailResponse
	err := s.api.Call(ctx, "/api/verify-email", apiclient.Request{
		Method: http.MethodPost,
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, credentialError(err)
	}
	if !resp.Success {
		return nil, &apiclient.Error{Kind: apiclient.KindHTTP, Status: http.StatusUnprocessableEntity, Message: resp.Message}
	}

	if resp.Token != "" && resp.User != nil && resp.User.Valid() && resp.User.IsEmailVerified {
		sid, err := s.signIn(ctx, sessionID, resp.Token, *resp.User)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			State:     guard.Authorized.String(),
			Redirect:  HomePath,
			Message:   resp.Message,
			User:      resp.User,
			SessionID: sid,
		}, nil
	}

	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.log.Warn(ctx, "failed to clear session after verification", "error", err)
	}
	return &LoginResult{
		State:    guard.Unauthenticated.String(),
		Redirect: guard.LoginPath,
		Message:  resp.Message,
	}, nil
}

// PendingEmail is the address the verification prompt should show.
func (s *AuthService) PendingEmail(ctx context.Context, sessionID string) string {
	return s.sessions.PendingVerification(ctx, sessionID)
}

func (s *AuthService) ResendVerification(ctx context.Context, req domain.ResendVerificationRequest) (*domain.MessageResponse, error) {
	return s.postMessage(ctx, "/api/resend-verification", req)
}

func (s *AuthService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) (*domain.MessageResponse, error) {
	return s.postMessage(ctx, "/api/forgot-password", req)
}

func (s *AuthService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (*domain.MessageResponse, error) {
	return s.postMessage(ctx, "/api/reset-password", req)
}

func (s *AuthService) postMessage(ctx context.Context, path string, req any) (*domain.MessageResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var resp domain.MessageResponse
	err := s.api.Call(ctx, path, apiclient.Request{
		Method: http.MethodPost,
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, credentialError(err)
	}
	return &resp, nil
}
