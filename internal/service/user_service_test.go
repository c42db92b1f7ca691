package service

import (
	"context"
	"errors"
	"testing"

	"stickynotes-server/internal/domain"
)

func newTestUserService() (*UserService, *mockUserRepository) {
	repo := newMockUserRepository()
	repo.Create(context.Background(), &domain.User{
		ID:       "alice",
		Username: "alice",
		Email:    "alice@example.com",
	})
	return NewUserService(repo), repo
}

func TestUserService_SetPin(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{name: "valid pin", pin: "0423"},
		{name: "all zeros", pin: "0000"},
		{name: "too short", pin: "123", wantErr: true},
		{name: "too long", pin: "12345", wantErr: true},
		{name: "letters", pin: "12a4", wantErr: true},
		{name: "empty", pin: "", wantErr: true},
		{name: "non-ascii digits", pin: "１２３４", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestUserService()

			err := svc.SetPin(context.Background(), "alice", tt.pin)

			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidPin) {
					t.Errorf("SetPin() error = %v, want ErrInvalidPin", err)
				}
				return
			}

			if err != nil {
				t.Errorf("SetPin() unexpected error = %v", err)
				return
			}

			stored := repo.users["alice"]
			if stored.PinHash == "" {
				t.Error("SetPin() did not persist a pin")
			}
			if stored.PinHash == tt.pin {
				t.Error("SetPin() stored the pin in clear text")
			}
		})
	}
}

func TestUserService_VerifyPin(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	// No pin set yet: nothing verifies.
	valid, err := svc.VerifyPin(ctx, "alice", "1234")
	if err != nil {
		t.Fatalf("VerifyPin() error = %v", err)
	}
	if valid {
		t.Error("VerifyPin() true with no pin set")
	}

	if err := svc.SetPin(ctx, "alice", "1234"); err != nil {
		t.Fatalf("SetPin() error = %v", err)
	}

	tests := []struct {
		name string
		pin  string
		want bool
	}{
		{name: "exact match", pin: "1234", want: true},
		{name: "wrong pin", pin: "4321", want: false},
		{name: "empty pin", pin: "", want: false},
		{name: "prefix", pin: "123", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := svc.VerifyPin(ctx, "alice", tt.pin)
			if err != nil {
				t.Fatalf("VerifyPin() error = %v", err)
			}
			if valid != tt.want {
				t.Errorf("VerifyPin(%q) = %v, want %v", tt.pin, valid, tt.want)
			}
		})
	}
}

func TestUserService_GetByID(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.GetByID(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("GetByID() username = %s, want alice", user.Username)
	}
	if user.PinSet {
		t.Error("GetByID() pin_set true before a pin was set")
	}

	svc.SetPin(ctx, "alice", "1234")
	user, _ = svc.GetByID(ctx, "alice")
	if !user.PinSet {
		t.Error("GetByID() pin_set false after setting a pin")
	}

	if _, err := svc.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
}
