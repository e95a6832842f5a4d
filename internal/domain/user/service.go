package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinic/clinic/internal/platform/auth"
)

var validRoles = map[string]bool{
	auth.RoleAdmin:     true,
	auth.RoleDoctor:    true,
	auth.RoleDispenser: true,
}

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// UpsertFromProfile creates or refreshes the account matching a sign-in
// profile. Email is the stable key; a first sign-in creates a doctor
// account. Role and active flag are admin-managed and never overwritten
// here.
func (s *Service) UpsertFromProfile(ctx context.Context, name, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if name != "" && name != existing.Name {
			existing.Name = name
			if err := s.users.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	u := &User{Name: name, Email: email, Role: auth.RoleDoctor, IsActive: true}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// UpdateAccess changes a user's role or active flag.
func (s *Service) UpdateAccess(ctx context.Context, id uuid.UUID, role string, isActive bool) (*User, error) {
	if !validRoles[role] {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	u.IsActive = isActive
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
