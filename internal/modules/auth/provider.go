// Package auth signs office staff in and out: credential providers, the
// session cookie, the auth-state stream and the login handlers.
package auth

import (
	"context"
	"net/mail"
	"strings"
)

// MinPasswordLength is the shortest password a provider accepts.
const MinPasswordLength = 6

// Identity is a signed-in office account.
type Identity struct {
	UID   string
	Email string
}

// Provider checks credentials and manages accounts. Failures are *Error.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// ResetConfirmer is implemented by providers that finish password resets
// on this server rather than on a hosted page.
type ResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return newError(CodeInvalidEmail, err)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return newError(CodeWeakPassword, nil)
	}
	return nil
}
