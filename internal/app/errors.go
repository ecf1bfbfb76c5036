// Package app holds the application services and business logic.
package app

import "errors"

var (
	// ErrAuthRequired indicates that the caller lacks an authenticated,
	// named session.
	ErrAuthRequired = errors.New("not logged in")
	// ErrForgeryRejected indicates a missing or mismatched CSRF token.
	ErrForgeryRejected = errors.New("invalid request (CSRF token mismatch)")
	// ErrInvalidPassword indicates that the shared board password was wrong.
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrEmptyUsername indicates that the submitted display name was empty.
	ErrEmptyUsername = errors.New("username must not be empty")
	// ErrUsernameTooLong indicates that the display name exceeds the cap.
	ErrUsernameTooLong = errors.New("username too long (max 50 characters)")
	// ErrEmptyMessage indicates that the submitted message body was empty.
	ErrEmptyMessage = errors.New("empty message")
	// ErrMessageTooLong indicates that the message body exceeds the cap.
	ErrMessageTooLong = errors.New("message too long (max 500 characters)")
	// ErrStorageUnavailable indicates that the backing store could not be
	// read or written. Reads degrade to empty results instead; writes
	// surface this error so a failed write is never reported as a success.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
