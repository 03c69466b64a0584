package domain

import "errors"

var (
	ErrFetchFailed   = errors.New("fetch failed")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidUserID = errors.New("invalid user id")
	ErrNotLoaded     = errors.New("users not loaded yet")
)
