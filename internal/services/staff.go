package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"visitordesk/internal/domain"
)

const minPasswordLen = 8

type staffService struct {
	staffRepo domain.StaffRepository
	hasher    domain.PasswordHasher
}

// NewStaffService creates a StaffService for directory management.
func NewStaffService(staffRepo domain.StaffRepository, hasher domain.PasswordHasher) domain.StaffService {
	return &staffService{staffRepo: staffRepo, hasher: hasher}
}

func (s *staffService) Create(ctx context.Context, staff *domain.Staff, password string) (*domain.Staff, error) {
	staff.FirstName = strings.TrimSpace(staff.FirstName)
	staff.LastName = strings.TrimSpace(staff.LastName)
	staff.Email = strings.TrimSpace(strings.ToLower(staff.Email))
	if staff.FirstName == "" || !emailRegexp.MatchString(staff.Email) {
		return nil, domain.ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	role := strings.TrimSpace(strings.ToLower(staff.Role))
	if role != domain.RoleAdmin {
		role = domain.RoleStaff
	}
	staff.Role = role

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	staff.Salt = salt
	staff.PasswordHash = hash
	staff.Active = true

	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create staff: %w", err)
	}
	return staff, nil
}

func (s *staffService) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return staff, nil
}

func (s *staffService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Staff, int, error) {
	staff, total, err := s.staffRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	if staff == nil {
		staff = []*domain.Staff{}
	}
	return staff, total, nil
}

func (s *staffService) Update(ctx context.Context, staff *domain.Staff) (*domain.Staff, error) {
	existing, err := s.staffRepo.GetByID(ctx, staff.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}

	staff.FirstName = strings.TrimSpace(staff.FirstName)
	staff.LastName = strings.TrimSpace(staff.LastName)
	staff.Email = strings.TrimSpace(strings.ToLower(staff.Email))
	if staff.Email != "" && !emailRegexp.MatchString(staff.Email) {
		return nil, domain.ErrInvalidInput
	}
	if staff.Email == "" {
		staff.Email = existing.Email
	}
	role := strings.TrimSpace(strings.ToLower(staff.Role))
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		role = existing.Role
	}
	staff.Role = role
	staff.PasswordHash = existing.PasswordHash
	staff.Salt = existing.Salt
	staff.Active = existing.Active
	staff.CreatedAt = existing.CreatedAt
	staff.UpdatedAt = time.Now()

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update staff: %w", err)
	}
	return staff, nil
}

func (s *staffService) Deactivate(ctx context.Context, id string) error {
	if err := s.staffRepo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deactivate staff: %w", err)
	}
	return nil
}
