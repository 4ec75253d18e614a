package domain

import "time"

// Reward is an item from the thrive-token catalog. CanAfford is computed by the
// backend against its own ledger and is never derived locally.
type Reward struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cost        int    `json:"cost"`
	ImageURL    string `json:"image_url,omitempty"`
	CanAfford   bool   `json:"can_afford"`
	Remaining   int    `json:"remaining"`
}

// Redemption is a committed exchange of tokens for a reward. It is only ever
// built from a backend response.
type Redemption struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	TokensSpent int       `json:"tokens_spent"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedeemResponse mirrors POST /api/thrive-tokens/rewards/:id/redeem. The
// backend does not always send success; only an explicit false rejects.
type RedeemResponse struct {
	Success    *bool      `json:"success,omitempty"`
	Message    string     `json:"message,omitempty"`
	Redemption Redemption `json:"redemption"`
	NewBalance int        `json:"new_balance"`
}

func (r RedeemResponse) Rejected() bool { return rejected(r.Success) }

// rejected reports whether an optional success flag is explicitly false.
func rejected(success *bool) bool {
	return success != nil && !*success
}

// TokenDashboard mirrors GET /api/thrive-tokens/dashboard.
type TokenDashboard struct {
	Balance           int             `json:"balance"`
	TotalEarned       int             `json:"total_earned"`
	TotalSpent        int             `json:"total_spent"`
	RecentActivity    []TokenActivity `json:"recent_activity,omitempty"`
	RecentRedemptions []Redemption    `json:"recent_redemptions,omitempty"`
	Streak            *CheckInStreak  `json:"streak,omitempty"`
}

// TokenActivity is one ledger movement as reported by the backend.
type TokenActivity struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      int       `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CheckInStreak is the reflection streak summary.
type CheckInStreak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// TokenOverview mirrors GET /api/thrive-tokens/overview.
type TokenOverview struct {
	Balance         int           `json:"balance"`
	EarnedThisWeek  int           `json:"earned_this_week"`
	EarnedThisMonth int           `json:"earned_this_month"`
	ReflectedToday  bool          `json:"reflected_today"`
	EarningRules    []EarningRule `json:"earning_rules,omitempty"`
}

// EarningRule describes how tokens are awarded.
type EarningRule struct {
	Action string `json:"action"`
	Tokens int    `json:"tokens"`
}
