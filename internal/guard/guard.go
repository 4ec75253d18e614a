// Package guard decides whether a request may see protected content.
package guard

import (
	"context"
	"net/url"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
)

const (
	LoginPath       = "/login"
	VerifyEmailPath = "/verify-email"
)

// State is the outcome of evaluating a session.
type State int

const (
	// Unknown is the state before the session has been read. Nothing
	// protected is produced while in it.
	Unknown State = iota
	Unauthenticated
	PendingVerification
	Authorized
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case PendingVerification:
		return "pending_verification"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one request.
type Decision struct {
	State    State
	Redirect string
	Email    string
	Session  domain.Session
}

// Allowed reports whether protected content may be produced.
func (d Decision) Allowed() bool {
	return d.State == Authorized
}

// Evaluate moves out of Unknown given what the session store returned.
func Evaluate(sess domain.Session, ok bool) Decision {
	if !ok || sess.Token == "" || !sess.User.Valid() {
		return Decision{State: Unauthenticated, Redirect: LoginPath}
	}
	if !sess.User.IsEmailVerified {
		return Decision{
			State:    PendingVerification,
			Redirect: VerifyEmailRedirect(sess.User.Email),
			Email:    sess.User.Email,
		}
	}
	return Decision{State: Authorized, Session: sess}
}

// VerifyEmailRedirect builds the verification prompt location for email.
func VerifyEmailRedirect(email string) string {
	if email == "" {
		return VerifyEmailPath
	}
	return VerifyEmailPath + "?email=" + url.QueryEscape(email)
}

// SessionStore is the part of the session store the guard needs.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.Session, bool)
	Clear(ctx context.Context, sessionID string) error
	SetPendingVerification(ctx context.Context, sessionID, email string) error
}

type Guard struct {
	sessions SessionStore
	log      logging.Logger
}

func New(sessions SessionStore, log logging.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		log:      log.With("component", "guard"),
	}
}

// Check evaluates the session behind sessionID. A session whose user has not
// verified their email is cleared so it cannot be reused, and the email is
// kept for the verification prompt.
func (g *Guard) Check(ctx context.Context, sessionID string) Decision {
	decision := Evaluate(g.sessions.Get(ctx, sessionID))

	if decision.State == PendingVerification {
		if err := g.sessions.Clear(ctx, sessionID); err != nil {
			g.log.Error(ctx, "failed to clear unverified session", "error", err)
		}
		if err := g.sessions.SetPendingVerification(ctx, sessionID, decision.Email); err != nil {
			g.log.Warn(ctx, "failed to remember pending verification email", "error", err)
		}
	}

	return decision
}

// Expire drops the session after the backend rejected its token.
func (g *Guard) Expire(ctx context.Context, sessionID string) Decision {
	if err := g.sessions.Clear(ctx, sessionID); err != nil {
		g.log.Error(ctx, "failed to clear expired session", "error", err)
	}
	g.log.Info(ctx, "session expired by backend")
	return Decision{State: Unauthenticated, Redirect: LoginPath}
}
