package domain

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoteNotFound  = errors.New("note not found")
	ErrUnauthorized  = errors.New("unauthorized access to note")
	ErrSelfShare     = errors.New("cannot share a note with yourself")
	ErrInvalidPin    = errors.New("pin must be exactly 4 digits")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)
