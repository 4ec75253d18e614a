package domain

// ReflectionRequest is the body of POST /api/thrive-tokens/reflections.
type ReflectionRequest struct {
	Content        string `json:"content" validate:"required,max=2000"`
	IdempotencyKey string `json:"idempotency_key" validate:"required,uuid4"`
}

// ReflectionResponse mirrors the reflection award.
type ReflectionResponse struct {
	Success       *bool  `json:"success,omitempty"`
	Message       string `json:"message,omitempty"`
	TokensAwarded int    `json:"tokens_awarded"`
	Balance       int    `json:"balance"`
}

func (r ReflectionResponse) Rejected() bool { return rejected(r.Success) }
