package application

import (
	"fmt"
	"time"

	"gramseva/internal/identity"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
)

// ParseStatus validates a wire value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// CanTransition reports whether moving between two statuses follows the
// review chain: pending goes under review, review approves or rejects, and
// only approved applications complete. Advisory only; officers may override
// out of order and the service does not reject that.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusUnderReview
	case StatusUnderReview:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusCompleted
	}
	return false
}

// ServiceSummary is the slice of the catalog row embedded in application
// listings.
type ServiceSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Fees     float64 `json:"fees"`
}

// CitizenSummary is the slice of the applicant profile embedded in
// application listings for staff and officers.
type CitizenSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Application is a citizen's request for a catalog service.
type Application struct {
	ID              string          `json:"id"`
	ServiceID       string          `json:"service_id"`
	CitizenID       string          `json:"citizen_id"`
	Status          Status          `json:"status"`
	ApplicationData map[string]any  `json:"application_data,omitempty"`
	Documents       []string        `json:"documents,omitempty"`
	Remarks         string          `json:"remarks,omitempty"`
	AssignedTo      string          `json:"assigned_to,omitempty"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	Service         *ServiceSummary `json:"service,omitempty"`
	Citizen         *CitizenSummary `json:"citizen,omitempty"`
}

// ListQuery selects the slice of applications a viewer may see. Citizens get
// their own, staff get assigned-or-unassigned, officers get everything.
type ListQuery struct {
	Role   identity.Role
	UserID string
	Limit  int
}

// CreateInput carries a citizen's submission.
type CreateInput struct {
	ServiceID       string         `json:"service_id"`
	ApplicationData map[string]any `json:"application_data,omitempty"`
	Documents       []string       `json:"documents,omitempty"`
}

// Update carries a reviewer's edit; nil means leave the field as is.
type Update struct {
	Status  *Status `json:"status,omitempty"`
	Remarks *string `json:"remarks,omitempty"`
}

// BatchItem pairs an application with its update in a batch request.
type BatchItem struct {
	ID     string `json:"id"`
	Update Update `json:"update"`
}
