package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrInvalidMessage       = errors.New("invalid message data")
	ErrStoreUnavailable     = errors.New("message store temporarily unavailable")
	ErrInternalServer       = errors.New("internal server error")
)
