package domain

import "time"

// Complaint is a complaint raised by the user.
type Complaint struct {
	ID          ID        `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ComplaintRequest is the body of POST /api/complaints.
type ComplaintRequest struct {
	Subject     string `json:"subject" form:"subject" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required,max=5000"`
	Category    string `json:"category,omitempty" form:"category" validate:"omitempty,max=100"`
}

// Booking is a therapy session booking.
type Booking struct {
	ID            ID        `json:"id"`
	TherapistName string    `json:"therapist_name,omitempty"`
	Type          string    `json:"type,omitempty"`
	Status        string    `json:"status,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

// WeeklyGoal is a user-set goal for a week.
type WeeklyGoal struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	WeekStart   string    `json:"week_start,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// WeeklyGoalRequest is the body of POST /api/weekly-goals.
type WeeklyGoalRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" form:"description" validate:"omitempty,max=2000"`
	WeekStart   string `json:"week_start,omitempty" form:"week_start" validate:"omitempty,datetime=2006-01-02"`
}

// ContactRequest is the public contact form.
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=50"`
	Subject string `json:"subject,omitempty" form:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}
