package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidToken      = errors.New("Invalid CSRF token.")
	ErrExpiredToken      = errors.New("Expired CSRF token.")
	ErrMissingRedirect   = errors.New("No redirect location.")
	ErrMissingCode       = errors.New("No authorization code received from provider.")
	ErrProviderNotFound  = errors.New("Unknown OAuth provider.")
	ErrProviderDisabled  = errors.New("Provider is not enabled.")
	ErrRegistrationClosed = errors.New(
		"Registration on this instance is closed. Contact an administrator to create an account for you.")
	ErrNoPassword = errors.New(
		"You don't have a password. Please log in with a linked account, or reset your password.")
	ErrTokenExchange     = errors.New("token exchange failed")
	ErrProfileFetch      = errors.New("profile fetch failed")
	ErrTokenSignature    = errors.New("could not sign token")
	ErrInvalidAuthToken  = errors.New("invalid token")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrInternalServer    = errors.New("internal server error")
	ErrSettingNotFound   = errors.New("setting not found")
	ErrObjectConflict    = errors.New("object already recorded")
)

// ProviderError wraps the error string an OAuth provider sent back on its
// redirect, keeping the upstream message available for the response body.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Provider returned error: '%s'.", e.Reason)
}

// StatusFor maps a login-handshake failure to the HTTP status it is surfaced
// with. Failures the table does not know about are treated as upstream ones.
func StatusFor(err error) int {
	var pe *ProviderError
	switch {
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingRedirect),
		errors.Is(err, ErrMissingCode),
		errors.Is(err, ErrProviderNotFound),
		errors.Is(err, ErrProviderDisabled),
		errors.Is(err, ErrRegistrationClosed),
		errors.Is(err, ErrNoPassword):
		return http.StatusBadRequest
	case errors.As(err, &pe),
		errors.Is(err, ErrTokenExchange),
		errors.Is(err, ErrProfileFetch):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
