package postgres

import (
	"context"
	"database/sql"
	"errors"

	"visitordesk/internal/domain"
)

type locationRepository struct {
	DB *sql.DB
}

// NewLocationRepository returns a domain.LocationRepository implemented with Postgres.
func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{DB: db}
}

func (r *locationRepository) Create(ctx context.Context, l *domain.Location) error {
	query := `
		INSERT INTO locations (name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, l.Name, l.Address, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM locations
		WHERE id = $1
	`
	l := &domain.Location{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *locationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM locations
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*domain.Location
	for rows.Next() {
		l := &domain.Location{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []*domain.Location{}
	}
	return locations, nil
}
