package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStream is the JetStream stream for help-request lifecycle events.
const DefaultStream = "NEIGHBORLY_REQUESTS"

// Subjects published by the request service.
const (
	SubjectRequestCreated   = "requests.created"
	SubjectRequestUpdated   = "requests.updated"
	SubjectRequestCompleted = "requests.completed"
	SubjectRequestCancelled = "requests.cancelled"
	SubjectRequestExpired   = "requests.expired"

	// SubjectRequestsAll matches every request lifecycle subject.
	SubjectRequestsAll = "requests.>"
)

// RequestLifecycleData is the payload of every request lifecycle event.
type RequestLifecycleData struct {
	RequestID  uuid.UUID `json:"request_id" validate:"required"`
	UserID     uuid.UUID `json:"user_id"`
	Category   string    `json:"category"`
	Status     string    `json:"status" validate:"omitempty,oneof=open in_progress completed cancelled"`
	Latitude   *float64  `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude  *float64  `json:"longitude,omitempty" validate:"omitempty,longitude"`
	OccurredAt time.Time `json:"occurred_at"`
}
