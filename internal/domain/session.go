package domain

import "time"

// Session is the per-browser authentication state: an opaque bearer token and
// the user it was issued for. Both are always written together.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionSnapshot is a display-only projection of Session. It is never read
// back for gating decisions.
type SessionSnapshot struct {
	UserID      ID        `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Verified    bool      `json:"is_email_verified"`
	TherapistID *ID       `json:"therapist_id,omitempty"`
	SignedInAt  time.Time `json:"signed_in_at"`
}

// NewSessionSnapshot derives the display projection for user.
func NewSessionSnapshot(user User, now time.Time) SessionSnapshot {
	name := user.FirstName
	if user.LastName != "" {
		if name != "" {
			name += " "
		}
		name += user.LastName
	}
	return SessionSnapshot{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: name,
		Verified:    user.IsEmailVerified,
		TherapistID: user.TherapistID,
		SignedInAt:  now.UTC(),
	}
}
