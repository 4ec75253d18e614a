package domain

// LoginRequest is the credential form posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse mirrors POST /api/login.
type LoginResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Token     string     `json:"token,omitempty"`
	User      *User      `json:"user,omitempty"`
	Therapist *Therapist `json:"therapist,omitempty"`
}

// VerifyEmailRequest completes the email verification step.
type VerifyEmailRequest struct {
	Token string `json:"token" form:"token" validate:"required"`
}

// VerifyEmailResponse mirrors POST /api/verify-email. Token and User are only
// present when the backend signs the user in as part of verification.
type VerifyEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// ResendVerificationRequest asks the backend to send a fresh verification email.
type ResendVerificationRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ResetPasswordRequest finishes a password reset.
type ResetPasswordRequest struct {
	Token                string `json:"token" form:"token" validate:"required"`
	Email                string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Password             string `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

// MessageResponse is the generic {success, message} envelope used by the API.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
