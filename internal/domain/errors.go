package domain

import "errors"

var (
	ErrConfigurationNotReady = errors.New("api base url is not configured")
	ErrNetwork               = errors.New("network error")
	ErrServer                = errors.New("server error")
	ErrClient                = errors.New("client error")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrCaptureUnavailable    = errors.New("screen capture unavailable")
	ErrPermissionDenied      = errors.New("screen capture permission denied")
	ErrSecretNotFound        = errors.New("secret not found")
	ErrTrialEnded            = errors.New("trial ended")
	ErrRoleNotAllowed        = errors.New("role not allowed")
	ErrResumeTimeRequired    = errors.New("working status requires a resume time")
	ErrInvalidTransition     = errors.New("invalid work status transition")
	ErrNotLoggedIn           = errors.New("not logged in")
)
