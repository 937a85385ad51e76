package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/middleware"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/response"
)

// Status lines of the login page.
const (
	StatusNeedCredentials = "Enter email and password first."
	StatusAccountCreated  = "Office account created and signed in."
	StatusNeedResetEmail  = "Enter your office email first to reset password."
	StatusResetSent       = "Password reset email sent."
	StatusPasswordUpdated = "Password updated. Sign in with your new password."
	StatusSignedIn        = "Signed in."
	StatusSignedOut       = "Signed out."
)

type CredentialsDTO struct {
	Email    string `form:"email"    json:"email"`
	Password string `form:"password" json:"password"`
}

type ResetConfirmDTO struct {
	Token    string `form:"token"    json:"token"`
	Password string `form:"password" json:"password"`
}

// loginRecorder is implemented by providers that track last login.
type loginRecorder interface {
	RecordLogin(ctx context.Context, id *Identity, ip string)
}

type Handler struct {
	provider Provider
	sessions *Sessions
	states   *StateBus
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewHandler(provider Provider, sessions *Sessions, states *StateBus, renderer *render.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{provider: provider, sessions: sessions, states: states, renderer: renderer, logger: logger}
}

// RegisterRoutes mounts the login surface. limit guards every credential
// endpoint.
func (h *Handler) RegisterRoutes(r gin.IRouter, limit gin.HandlerFunc) {
	g := r.Group("/office")
	g.GET("/login", middleware.OptionalAuth(h.sessions), h.loginPage)
	g.POST("/login", limit, h.signIn)
	g.POST("/register", limit, h.register)
	g.POST("/reset", limit, h.reset)
	g.GET("/reset/confirm", h.resetConfirmPage)
	g.POST("/reset/confirm", limit, h.resetConfirm)
	g.POST("/logout", h.logout)
	g.GET("/session", middleware.OptionalAuth(h.sessions), h.session)
}

// RateLimited answers a throttled credential request.
func (h *Handler) RateLimited(c *gin.Context) {
	h.fail(c, "", CodeTooManyRequests)
}

func (h *Handler) loginPage(c *gin.Context) {
	action := gate.Decide(gate.PageLogin, middleware.State(c))
	if target := gate.Target(action); target != "" {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	h.renderLogin(c, http.StatusOK, render.LoginPage{})
}

func (h *Handler) session(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if s == nil {
		response.OK(c, gin.H{"state": gate.SignedOut})
		return
	}
	response.OK(c, gin.H{"state": gate.SignedIn, "email": s.Email})
}

func (h *Handler) signIn(c *gin.Context) {
	var dto CredentialsDTO
	if err := c.ShouldBind(&dto); err != nil {
		h.status(c, http.StatusBadRequest, dto.Email, StatusNeedCredentials)
		return
	}
	id, err := h.provider.SignIn(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		h.fail(c, dto.Email, Code(err))
		return
	}
	h.startSession(c, id, StatusSignedIn)
}

func (h *Handler) register(c *gin.Context) {
	var dto CredentialsDTO
	_ = c.ShouldBind(&dto)
	email := strings.TrimSpace(dto.Email)
	if email == "" || dto.Password == "" {
		h.status(c, http.StatusBadRequest, email, StatusNeedCredentials)
		return
	}
	id, err := h.provider.CreateAccount(c.Request.Context(), email, dto.Password)
	if err != nil {
		h.fail(c, email, Code(err))
		return
	}
	h.logger.Info("office account created", zap.String("email", id.Email))
	h.startSession(c, id, StatusAccountCreated)
}

func (h *Handler) reset(c *gin.Context) {
	var dto CredentialsDTO
	_ = c.ShouldBind(&dto)
	email := strings.TrimSpace(dto.Email)
	if email == "" {
		h.status(c, http.StatusBadRequest, email, StatusNeedResetEmail)
		return
	}
	if err := h.provider.SendPasswordReset(c.Request.Context(), email); err != nil {
		h.fail(c, email, Code(err))
		return
	}
	if middleware.WantsJSON(c) {
		response.Message(c, StatusResetSent, nil)
		return
	}
	h.renderLogin(c, http.StatusOK, render.LoginPage{Email: email, Status: StatusResetSent})
}

func (h *Handler) resetConfirmPage(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.Redirect(http.StatusSeeOther, gate.LoginPath)
		return
	}
	h.renderLogin(c, http.StatusOK, render.LoginPage{ResetToken: token})
}

func (h *Handler) resetConfirm(c *gin.Context) {
	var dto ResetConfirmDTO
	_ = c.ShouldBind(&dto)
	confirmer, ok := h.provider.(ResetConfirmer)
	if !ok {
		h.fail(c, "", CodeOperationNotAllowed)
		return
	}
	if err := confirmer.ConfirmPasswordReset(c.Request.Context(), dto.Token, dto.Password); err != nil {
		code := Code(err)
		if middleware.WantsJSON(c) {
			response.Fail(c, httpStatus(code), Message(code))
			return
		}
		page := render.LoginPage{Status: Message(code), Error: true}
		if code == CodeWeakPassword {
			page.ResetToken = dto.Token
		}
		h.renderLogin(c, httpStatus(code), page)
		return
	}
	h.status(c, http.StatusOK, "", StatusPasswordUpdated)
}

func (h *Handler) logout(c *gin.Context) {
	sess, err := h.sessions.End(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn("revoke session failed", zap.Error(err))
	}
	if sess != nil {
		h.states.Publish(c.Request.Context(), StateChange{SessionID: sess.ID, State: gate.SignedOut})
	}
	if middleware.WantsJSON(c) {
		response.Message(c, StatusSignedOut, gin.H{"redirect": gate.LoginPath})
		return
	}
	c.Redirect(http.StatusSeeOther, gate.LoginPath)
}

func (h *Handler) startSession(c *gin.Context, id *Identity, status string) {
	ctx := c.Request.Context()
	sess, err := h.sessions.Start(ctx, c.Writer, id)
	if err != nil {
		h.logger.Error("start session failed", zap.String("uid", id.UID), zap.Error(err))
		h.fail(c, id.Email, CodeInternal)
		return
	}
	if rec, ok := h.provider.(loginRecorder); ok {
		rec.RecordLogin(ctx, id, c.ClientIP())
	}
	h.states.Publish(ctx, StateChange{SessionID: sess.ID, State: gate.SignedIn})

	target := gate.Target(gate.Decide(gate.PageLogin, gate.SignedIn))
	if middleware.WantsJSON(c) {
		response.Message(c, status, gin.H{"redirect": target, "email": id.Email})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// fail reports a provider error code as mapped text.
func (h *Handler) fail(c *gin.Context, email, code string) {
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("auth request failed", zap.String("path", c.Request.URL.Path), zap.String("code", code))
	}
	if middleware.WantsJSON(c) {
		response.Fail(c, status, Message(code))
		return
	}
	h.renderLogin(c, status, render.LoginPage{Email: email, Status: Message(code), Error: true})
	c.Abort()
}

// status reports a fixed status line; 4xx and up render as an error.
func (h *Handler) status(c *gin.Context, code int, email, msg string) {
	if middleware.WantsJSON(c) {
		if code >= http.StatusBadRequest {
			response.Fail(c, code, msg)
			return
		}
		response.Message(c, msg, nil)
		return
	}
	h.renderLogin(c, code, render.LoginPage{Email: email, Status: msg, Error: code >= http.StatusBadRequest})
}

func (h *Handler) renderLogin(c *gin.Context, code int, page render.LoginPage) {
	c.Status(code)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Page(c.Writer, render.PageLogin, page); err != nil {
		h.logger.Error("render login page failed", zap.Error(err))
	}
}
