package service

import "errors"

var (
	ErrUserExists           = errors.New("user already exists")
	ErrMovieNotFound        = errors.New("movie not found")
	ErrLanguageNotFound     = errors.New("language version not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotFound             = errors.New("not found")
	ErrInvalidPlan          = errors.New("invalid plan")
	ErrPaymentNotConfigured = errors.New("payment service not configured")
	ErrVerificationFailed   = errors.New("payment verification failed")
)
