package domain

import (
	"context"
	"time"
)

// VisitorStatus is the lifecycle status of a visitor record. Exactly one
// value is authoritative at any time; it changes only through the visitor
// service's transition path.
type VisitorStatus string

const (
	StatusAwaitingApproval VisitorStatus = "awaiting_approval"
	StatusApproved         VisitorStatus = "approved"
	StatusRejected         VisitorStatus = "rejected"
	StatusCheckedIn        VisitorStatus = "checked_in"
	StatusCheckedOut       VisitorStatus = "checked_out"
	StatusRescheduled      VisitorStatus = "rescheduled"
)

// Valid reports whether s is one of the defined lifecycle statuses.
func (s VisitorStatus) Valid() bool {
	switch s {
	case StatusAwaitingApproval, StatusApproved, StatusRejected,
		StatusCheckedIn, StatusCheckedOut, StatusRescheduled:
		return true
	}
	return false
}

// Visitor represents a visit registration.
// MeetWith is unvalidated free text entered by the visitor; it is
// fuzzy-matched against the staff directory, never a foreign key.
// swagger:model Visitor
type Visitor struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	LocationID  string        `json:"location_id"`
	MeetWith    string        `json:"meet_with"`
	Purpose     string        `json:"purpose"`
	Notes       string        `json:"notes"`
	Status      VisitorStatus `json:"status"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	ApprovedBy  string        `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
	CheckInAt   *time.Time    `json:"check_in_at,omitempty"`
	CheckOutAt  *time.Time    `json:"check_out_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewVisitor returns a Visitor in AwaitingApproval. ID is set by the
// repository on create.
func NewVisitor(name, email, phone, locationID, meetWith, purpose string, scheduledAt, createdAt time.Time) *Visitor {
	return &Visitor{
		Name:        name,
		Email:       email,
		Phone:       phone,
		LocationID:  locationID,
		MeetWith:    meetWith,
		Purpose:     purpose,
		Status:      StatusAwaitingApproval,
		ScheduledAt: scheduledAt,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// VisitorStatusUpdate carries the field changes applied together with a
// status write. Nil pointer fields are left untouched; ClearCheckTimes
// nulls both check times (used by reschedule).
type VisitorStatusUpdate struct {
	Status          VisitorStatus
	Notes           *string
	ScheduledAt     *time.Time
	ApprovedBy      *string
	ApprovedAt      *time.Time
	CheckInAt       *time.Time
	CheckOutAt      *time.Time
	ClearCheckTimes bool
	UpdatedAt       time.Time
}

// VisitorRepository defines storage operations for visitors.
// UpdateStatusCAS is the compare-and-set primitive the transition path
// relies on: the write applies only if the stored status still equals
// expected, so two concurrent transitions on one visitor cannot both win.
type VisitorRepository interface {
	Create(ctx context.Context, v *Visitor) error
	GetByID(ctx context.Context, id string) (*Visitor, error)
	List(ctx context.Context, status VisitorStatus, locationID string, params PaginationParams) ([]*Visitor, int, error)
	UpdateStatusCAS(ctx context.Context, id string, expected VisitorStatus, update VisitorStatusUpdate) (bool, error)
	SetStatus(ctx context.Context, id string, update VisitorStatusUpdate) error
	Delete(ctx context.Context, id string) error
}

// VisitorService defines the business operations on visitors. It is the
// sole write path for visitor status; no other component mutates status
// fields directly.
type VisitorService interface {
	// Register creates the visitor in AwaitingApproval and triggers the
	// staff notification cascade. Notification is best-effort and never
	// fails the registration.
	Register(ctx context.Context, v *Visitor) error
	GetByID(ctx context.Context, id string) (*Visitor, error)
	List(ctx context.Context, status VisitorStatus, locationID string, params PaginationParams) ([]*Visitor, int, error)
	// AttemptTransition applies a guarded transition. It returns
	// ErrNotFound for unknown visitors, *AlreadyProcessedError when the
	// guard on a settled single-use transition fails (or the CAS write
	// loses a race), and ErrIllegalTransition for requests outside the
	// transition graph. newSchedule is required for Rescheduled.
	AttemptTransition(ctx context.Context, id string, target VisitorStatus, actor, reason string, newSchedule *time.Time) (*Visitor, error)
	// SetStatus is the administrative override: it bypasses the guards
	// but triggers the same notification effects as the guarded
	// transitions.
	SetStatus(ctx context.Context, id string, target VisitorStatus, actor, reason string, newSchedule *time.Time) (*Visitor, error)
	Delete(ctx context.Context, id string) error
}

// ActionTokenIssuer derives and verifies the day-scoped capability token
// embedded in staff notification emails. Tokens are a pure function of
// (visitor id, secret, UTC calendar date): no storage, no randomness, and
// verification must run in constant time.
type ActionTokenIssuer interface {
	Issue(visitorID string) string
	Verify(visitorID, token string) bool
}
