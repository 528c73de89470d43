package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked due to too many failed login attempts")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrInvalidToken       = errors.New("invalid token")
)

// Two-step verification errors
var (
	ErrTwoFactorRequired    = errors.New("two-step verification code required")
	ErrTwoFactorNotEnabled  = errors.New("two-step verification is not enabled")
	ErrTwoFactorNotPending  = errors.New("two-step verification setup has not been started")
	ErrInvalidTwoFactorCode = errors.New("invalid two-step verification code")
)

// Tenant errors
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileExists        = errors.New("user already has a profile in this organization")
	ErrInvalidRole          = errors.New("invalid role")
)

// Content errors
var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrReminderNotFound = errors.New("reminder not found")
)
