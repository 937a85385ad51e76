package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
)

// DefaultIdentityToolkitURL is the REST endpoint for password sign-in.
const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

const identityToolkitTimeout = 15 * time.Second

// FirebaseProvider signs in through the Identity Toolkit REST API with the
// project's web API key and creates accounts with the Admin SDK.
type FirebaseProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
	admin    *fbauth.Client
}

// NewFirebaseProvider builds the provider. admin may be nil, in which case
// accounts are created over REST as well.
func NewFirebaseProvider(apiKey string, admin *fbauth.Client) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:   apiKey,
		endpoint: DefaultIdentityToolkitURL,
		client:   &http.Client{Timeout: identityToolkitTimeout},
		admin:    admin,
	}
}

// WithEndpoint points the REST calls somewhere else, e.g. the auth emulator.
func (p *FirebaseProvider) WithEndpoint(endpoint string) *FirebaseProvider {
	p.endpoint = strings.TrimRight(endpoint, "/")
	return p
}

type toolkitAccount struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var out toolkitAccount
	err := p.call(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &Identity{UID: out.LocalID, Email: out.Email}, nil
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if p.admin == nil {
		var out toolkitAccount
		err := p.call(ctx, "accounts:signUp", map[string]interface{}{
			"email":             email,
			"password":          password,
			"returnSecureToken": true,
		}, &out)
		if err != nil {
			return nil, err
		}
		return &Identity{UID: out.LocalID, Email: out.Email}, nil
	}

	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	user, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, newError(CodeEmailInUse, err)
		}
		return nil, newError(CodeInternal, err)
	}
	return &Identity{UID: user.UID, Email: user.Email}, nil
}

func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.call(ctx, "accounts:sendOobCode", map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       strings.TrimSpace(email),
	}, nil)
}

func (p *FirebaseProvider) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	if p.apiKey == "" {
		return newError(CodeOperationNotAllowed, errors.New("firebase web api key is not configured"))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return newError(CodeInternal, err)
	}
	endpoint := fmt.Sprintf("%s/%s?key=%s", p.endpoint, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return newError(CodeInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return newError(CodeNetworkFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp toolkitError
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error.Message
		return newError(toolkitCode(msg), fmt.Errorf("identity toolkit %d: %s", resp.StatusCode, msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newError(CodeInternal, fmt.Errorf("decode %s response: %w", method, err))
	}
	return nil
}

// toolkitCode maps Identity Toolkit REST error messages such as
// "WEAK_PASSWORD : Password should be at least 6 characters" to codes.
func toolkitCode(message string) string {
	key := message
	if i := strings.IndexAny(key, " :"); i >= 0 {
		key = key[:i]
	}
	switch key {
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return CodeInvalidEmail
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD", "MISSING_PASSWORD":
		return CodeWrongPassword
	case "INVALID_LOGIN_CREDENTIALS":
		return CodeInvalidCredential
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return CodeTooManyRequests
	case "EMAIL_EXISTS":
		return CodeEmailInUse
	case "WEAK_PASSWORD":
		return CodeWeakPassword
	case "OPERATION_NOT_ALLOWED", "PASSWORD_LOGIN_DISABLED":
		return CodeOperationNotAllowed
	case "USER_DISABLED":
		return CodeUserDisabled
	}
	return CodeInternal
}
