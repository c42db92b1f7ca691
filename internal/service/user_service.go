package service

import (
	"context"
	"fmt"

	"stickynotes-server/internal/domain"
	"stickynotes-server/internal/repository"
	"stickynotes-server/pkg/hash"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// SetPin stores the caller's private pin. The pin must be exactly 4 ASCII
// digits and is persisted as a bcrypt hash, never in clear text.
func (s *UserService) SetPin(ctx context.Context, userID, pin string) error {
	if !validPin(pin) {
		return domain.ErrInvalidPin
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	pinHash, err := hash.HashPin(pin)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}

	user.PinHash = pinHash
	return s.users.Update(ctx, user)
}

// VerifyPin reports whether pin matches the caller's previously set pin.
// A user without a pin never verifies.
func (s *UserService) VerifyPin(ctx context.Context, userID, pin string) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.PinHash == "" {
		return false, nil
	}

	return hash.ComparePin(user.PinHash, pin) == nil, nil
}

func validPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
