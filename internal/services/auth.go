package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"visitordesk/internal/domain"
)

type authService struct {
	staffRepo   domain.StaffRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
}

// NewAuthService creates an AuthService backed by the staff directory.
func NewAuthService(staffRepo domain.StaffRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration) domain.AuthService {
	return &authService{
		staffRepo:   staffRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Staff, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrForbidden
		}
		return "", nil, fmt.Errorf("get staff by email: %w", err)
	}
	if !staff.Active {
		return "", nil, domain.ErrForbidden
	}
	if err := s.hasher.Compare(staff.PasswordHash, staff.Salt, password); err != nil {
		return "", nil, domain.ErrForbidden
	}
	token, err := s.tokenIssuer.Issue(staff.ID, staff.Email, staff.Role, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, staff, nil
}
