package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/mail"
	sessionpkg "github.com/ummachristians-netizen/umma-christians/internal/pkg/session"
)

const (
	resetTokenTTL    = time.Hour
	resetTokenPrefix = "reset:"

	// ResetConfirmPath is where reset links land.
	ResetConfirmPath = "/office/reset/confirm"
)

// LocalProvider keeps office accounts in a UserStore with bcrypt hashes and
// mails one-time reset links.
type LocalProvider struct {
	users   UserStore
	tokens  sessionpkg.Store
	mailer  *mail.Sender
	siteURL string
	logger  *zap.Logger
	cost    int
}

func NewLocalProvider(users UserStore, tokens sessionpkg.Store, mailer *mail.Sender, siteURL string, logger *zap.Logger) *LocalProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalProvider{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger,
		cost:    bcrypt.DefaultCost,
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	u, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, newError(CodeInternal, err)
	}
	if u == nil {
		return nil, newError(CodeUserNotFound, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword, nil)
	}
	return &Identity{UID: u.ID, Email: u.Email}, nil
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, newError(CodeInternal, err)
	}
	u := &models.OfficeUser{Email: email, PasswordHash: string(hash)}
	if err := p.users.Create(ctx, u); err != nil {
		if errors.Is(err, errEmailTaken) {
			return nil, newError(CodeEmailInUse, err)
		}
		return nil, newError(CodeInternal, err)
	}
	return &Identity{UID: u.ID, Email: u.Email}, nil
}

// SendPasswordReset mails a one-hour reset link. Without a mailer the link
// is only logged, which is enough for a local preview.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return newError(CodeInternal, err)
	}
	if u == nil {
		return newError(CodeUserNotFound, nil)
	}

	token := uuid.NewString()
	if err := p.tokens.PutToken(ctx, resetTokenPrefix+token, u.ID, resetTokenTTL); err != nil {
		return newError(CodeInternal, err)
	}
	link := p.siteURL + ResetConfirmPath + "?token=" + url.QueryEscape(token)

	if !p.mailer.Enabled() {
		p.logger.Info("password reset link (mail disabled)", zap.String("email", email), zap.String("link", link))
		return nil
	}
	msg, err := mail.PasswordReset(email, link)
	if err != nil {
		return newError(CodeInternal, err)
	}
	if err := p.mailer.Send(ctx, msg); err != nil {
		return newError(CodeNetworkFailed, fmt.Errorf("send reset mail: %w", err))
	}
	return nil
}

func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLength {
		return newError(CodeWeakPassword, nil)
	}
	userID, err := p.tokens.TakeToken(ctx, resetTokenPrefix+token)
	if err != nil {
		if errors.Is(err, sessionpkg.ErrTokenNotFound) {
			return newError(CodeInvalidActionCode, err)
		}
		return newError(CodeInternal, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return newError(CodeInternal, err)
	}
	if err := p.users.SetPassword(ctx, userID, string(hash)); err != nil {
		return newError(CodeInternal, err)
	}
	return nil
}

// RecordLogin stamps the account's last login, best effort.
func (p *LocalProvider) RecordLogin(ctx context.Context, id *Identity, ip string) {
	if err := p.users.RecordLogin(ctx, id.UID, ip); err != nil {
		p.logger.Warn("record login failed", zap.String("uid", id.UID), zap.Error(err))
	}
}
