package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"visitordesk/internal/domain"
)

type locationService struct {
	locationRepo domain.LocationRepository
}

// NewLocationService creates a LocationService.
func NewLocationService(locationRepo domain.LocationRepository) domain.LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) Create(ctx context.Context, l *domain.Location) (*domain.Location, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.Address = strings.TrimSpace(l.Address)
	if l.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	if err := s.locationRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return l, nil
}

func (s *locationService) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	l, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (s *locationService) List(ctx context.Context) ([]*domain.Location, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if locations == nil {
		locations = []*domain.Location{}
	}
	return locations, nil
}
