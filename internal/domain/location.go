package domain

import (
	"context"
	"time"
)

// Location represents a site visitors check in at.
// swagger:model Location
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLocation returns a new Location. ID is set by the repository on create.
func NewLocation(name, address string, createdAt, updatedAt time.Time) *Location {
	return &Location{
		Name:      name,
		Address:   address,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// LocationRepository defines storage operations for locations.
type LocationRepository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context) ([]*Location, error)
}

// LocationService defines location directory operations.
type LocationService interface {
	Create(ctx context.Context, l *Location) (*Location, error)
	GetByID(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context) ([]*Location, error)
}
