package auth

import "errors"

var (
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidInvite        = errors.New("invalid or already used invite code")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrForbidden            = errors.New("insufficient role")
	ErrCodeGenerationFailed = errors.New("invite code generation failed")
)
