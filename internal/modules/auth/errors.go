package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Provider error codes, shared with the hosted auth service.
const (
	CodeInvalidEmail        = "auth/invalid-email"
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeNetworkFailed       = "auth/network-request-failed"
	CodeEmailInUse          = "auth/email-already-in-use"
	CodeWeakPassword        = "auth/weak-password"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeInvalidActionCode   = "auth/invalid-action-code"
	CodeUserDisabled        = "auth/user-disabled"
	CodeInternal            = "auth/internal-error"
)

// FallbackMessage is shown for any code without its own text.
const FallbackMessage = "Authentication failed. Check Firebase setup and try again."

var messages = map[string]string{
	CodeInvalidEmail:        "Invalid email format.",
	CodeUserNotFound:        "No account found for this email.",
	CodeWrongPassword:       "Wrong password.",
	CodeInvalidCredential:   "Invalid email or password.",
	CodeTooManyRequests:     "Too many attempts. Try again later.",
	CodeNetworkFailed:       "Network error. Check internet connection.",
	CodeEmailInUse:          "This email is already in use.",
	CodeWeakPassword:        "Password is too weak (minimum 6 characters).",
	CodeOperationNotAllowed: "Email/password sign-in is not enabled in Firebase Auth.",
	CodeInvalidActionCode:   "This reset link is invalid or has expired.",
}

// Message maps a provider error code to the text shown on the login page.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return FallbackMessage
}

// Error is a provider failure with a stable code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// Code extracts the provider code from err, or CodeInternal.
func Code(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return CodeInternal
}

// httpStatus picks the response status for a failed auth request.
func httpStatus(code string) int {
	switch code {
	case CodeInvalidEmail, CodeWeakPassword:
		return http.StatusBadRequest
	case CodeUserNotFound, CodeWrongPassword, CodeInvalidCredential, CodeInvalidActionCode:
		return http.StatusUnauthorized
	case CodeUserDisabled, CodeOperationNotAllowed:
		return http.StatusForbidden
	case CodeEmailInUse:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeNetworkFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
