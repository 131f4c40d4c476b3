package domain

import (
	"context"
	"strings"
	"time"
)

// Staff roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Staff represents a staff directory entry.
// swagger:model Staff
type Staff struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	LocationID   string    `json:"location_id"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns "First Last" with surrounding whitespace trimmed.
func (s *Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// IsAdmin reports whether the staff member holds the admin role.
func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// StaffDirectory is the read-only snapshot port the notification resolver
// consumes. Snapshot consistency is sufficient; reads are never
// transactional with visitor writes.
type StaffDirectory interface {
	ListActive(ctx context.Context) ([]*Staff, error)
	ListLocationAdmins(ctx context.Context, locationID string) ([]*Staff, error)
	ListGlobalAdmins(ctx context.Context) ([]*Staff, error)
}

// StaffRepository defines storage operations for staff.
type StaffRepository interface {
	StaffDirectory
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id string) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	List(ctx context.Context, params PaginationParams) ([]*Staff, int, error)
	Update(ctx context.Context, s *Staff) error
	SetActive(ctx context.Context, id string, active bool) error
}

// StaffService defines directory management operations.
type StaffService interface {
	Create(ctx context.Context, s *Staff, password string) (*Staff, error)
	GetByID(ctx context.Context, id string) (*Staff, error)
	List(ctx context.Context, params PaginationParams) ([]*Staff, int, error)
	Update(ctx context.Context, s *Staff) (*Staff, error)
	Deactivate(ctx context.Context, id string) error
}

// AuthService authenticates staff for the admin surface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, staff *Staff, err error)
}
