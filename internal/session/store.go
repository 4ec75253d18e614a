// Package session is the only accessor of per-browser authentication state.
// Token, user and the display snapshot are always written and cleared together.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/repository"
)

const (
	keyToken        = "token"
	keyUser         = "user"
	keySnapshot     = "snapshot"
	keyPendingEmail = "pending_verification_email"
	flashPrefix     = "flash:"
)

var ErrEmptyToken = errors.New("session token must not be empty")

type Store struct {
	repo     repository.SessionRepository
	ttl      time.Duration
	flashTTL time.Duration
	log      logging.Logger
	now      func() time.Time
}

func NewStore(repo repository.SessionRepository, ttl, flashTTL time.Duration, log logging.Logger) *Store {
	return &Store{
		repo:     repo,
		ttl:      ttl,
		flashTTL: flashTTL,
		log:      log.With("component", "session"),
		now:      time.Now,
	}
}

// Get returns the session for sessionID. A missing token, a missing or
// malformed user record, and repository failures all report ok=false.
func (s *Store) Get(ctx context.Context, sessionID string) (domain.Session, bool) {
	if sessionID == "" {
		return domain.Session{}, false
	}

	token, err := s.repo.Get(ctx, sessionID, keyToken)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn(ctx, "session token lookup failed", "error", err)
		}
		return domain.Session{}, false
	}
	if token == "" {
		return domain.Session{}, false
	}

	raw, err := s.repo.Get(ctx, sessionID, keyUser)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn(ctx, "session user lookup failed", "error", err)
		}
		return domain.Session{}, false
	}

	user, ok := decodeUser(raw)
	if !ok {
		s.log.Warn(ctx, "discarding malformed session user record")
		return domain.Session{}, false
	}

	return domain.Session{Token: token, User: user}, true
}

func decodeUser(raw string) (domain.User, bool) {
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.User{}, false
	}
	if !user.Valid() {
		return domain.User{}, false
	}
	return user, true
}

// Set persists token, user and the derived snapshot in one write.
func (s *Store) Set(ctx context.Context, sessionID, token string, user domain.User) error {
	if token == "" {
		return ErrEmptyToken
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	snapshotJSON, err := json.Marshal(domain.NewSessionSnapshot(user, s.now()))
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	if err := s.repo.SetMany(ctx, sessionID, map[string]string{
		keyToken:    token,
		keyUser:     string(userJSON),
		keySnapshot: string(snapshotJSON),
	}, s.ttl); err != nil {
		return err
	}

	// a verified sign-in supersedes any pending verification prompt
	if err := s.repo.Delete(ctx, sessionID, keyPendingEmail); err != nil {
		s.log.Warn(ctx, "failed to drop pending verification email", "error", err)
	}

	return nil
}

// Clear removes token, user, snapshot and any pending verification email.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID, keyToken, keyUser, keySnapshot, keyPendingEmail)
}

// Snapshot returns the display projection written by the last Set.
func (s *Store) Snapshot(ctx context.Context, sessionID string) (domain.SessionSnapshot, bool) {
	raw, err := s.repo.Get(ctx, sessionID, keySnapshot)
	if err != nil {
		return domain.SessionSnapshot{}, false
	}
	var snap domain.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domain.SessionSnapshot{}, false
	}
	return snap, true
}

// SetPendingVerification remembers the email the verification prompt is for.
func (s *Store) SetPendingVerification(ctx context.Context, sessionID, email string) error {
	return s.repo.SetMany(ctx, sessionID, map[string]string{keyPendingEmail: email}, s.ttl)
}

// PendingVerification returns the remembered email, if any.
func (s *Store) PendingVerification(ctx context.Context, sessionID string) string {
	email, err := s.repo.Get(ctx, sessionID, keyPendingEmail)
	if err != nil {
		return ""
	}
	return email
}

// PushFlash stores a read-once message that expires after the flash TTL.
func (s *Store) PushFlash(ctx context.Context, sessionID, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode flash %q: %w", kind, err)
	}
	return s.repo.SetMany(ctx, sessionID, map[string]string{flashPrefix + kind: string(data)}, s.flashTTL)
}

// PopFlash consumes a flash message into dst. It reports false when there is
// nothing to show.
func (s *Store) PopFlash(ctx context.Context, sessionID, kind string, dst any) bool {
	raw, err := s.repo.Take(ctx, sessionID, flashPrefix+kind)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn(ctx, "discarding malformed flash", "kind", kind, "error", err)
		return false
	}
	return true
}

// FlashTTL is the display window of flash messages.
func (s *Store) FlashTTL() time.Duration {
	return s.flashTTL
}
