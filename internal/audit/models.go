package audit

import "time"

// Event is emitted from domain logic to capture key portal actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	// Subject identifies the record the action touched (application id,
	// service id) when it differs from the user.
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Device    string `json:"device,omitempty"`
}

// PortalEvent names the actions recorded by the portal.
type PortalEvent string

const (
	EventUserCreated          PortalEvent = "user_created"
	EventUserLogin            PortalEvent = "user_login"
	EventUserLogout           PortalEvent = "user_logout"
	EventProfileUpdated       PortalEvent = "profile_updated"
	EventApplicationSubmitted PortalEvent = "application_submitted"
	EventApplicationUpdated   PortalEvent = "application_updated"
	EventServiceCreated       PortalEvent = "service_created"
	EventServiceUpdated       PortalEvent = "service_updated"
	EventServiceDeactivated   PortalEvent = "service_deactivated"
)
