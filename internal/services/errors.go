package services

import "errors"

var (
	// ErrMissingUser is returned when a call carries no user id.
	ErrMissingUser = errors.New("missing user id")
	// ErrUnsupportedRole is returned for roles without a dashboard.
	ErrUnsupportedRole = errors.New("unsupported role")
)
