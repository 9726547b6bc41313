package models

import "time"

// Submission kinds
const (
	SubmissionConsign      = "consign"
	SubmissionAuthenticate = "authenticate"
	SubmissionContact      = "contact"
)

// Submission statuses
const (
	SubmissionNew      = "new"
	SubmissionInReview = "in_review"
	SubmissionClosed   = "closed"
)

// Submission is the model for the 'submissions' table: consignment,
// authentication and contact forms.
type Submission struct {
	ID        string         `json:"id" db:"id"`
	UserID    *string        `json:"userId,omitempty" db:"user_id"`
	Kind      string         `json:"kind" db:"kind"`
	Status    string         `json:"status" db:"status"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	Phone     *string        `json:"phone,omitempty" db:"phone"`
	Details   string         `json:"details" db:"details"`
	Item      map[string]any `json:"item,omitempty" db:"item"`
	AdminNote *string        `json:"adminNote,omitempty" db:"admin_note"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}
