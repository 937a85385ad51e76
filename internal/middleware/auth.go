package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/response"
	sessionpkg "github.com/ummachristians-netizen/umma-christians/internal/pkg/session"
)

const ContextKeySession = "office_session"

// SessionResolver finds the office session a request carries. It returns
// nil without error when the request is signed out.
type SessionResolver interface {
	Resolve(r *http.Request) (*sessionpkg.Session, error)
}

// Auth rejects signed-out requests: JSON callers get a 401 envelope,
// browsers are sent to the login page.
func Auth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sessions.Resolve(c.Request)
		if err != nil || s == nil {
			if WantsJSON(c) {
				response.Unauthorized(c)
				return
			}
			c.Redirect(http.StatusSeeOther, gate.LoginPath)
			c.Abort()
			return
		}
		c.Set(ContextKeySession, s)
		c.Next()
	}
}

// OptionalAuth attaches the session when there is one and never blocks.
func OptionalAuth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, err := sessions.Resolve(c.Request); err == nil && s != nil {
			c.Set(ContextKeySession, s)
		}
		c.Next()
	}
}

// CurrentSession returns the session set by Auth or OptionalAuth.
func CurrentSession(c *gin.Context) *sessionpkg.Session {
	v, _ := c.Get(ContextKeySession)
	s, _ := v.(*sessionpkg.Session)
	return s
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	if s := CurrentSession(c); s != nil {
		return s.UserID
	}
	return ""
}

// IsAuthenticated returns true if the request has a live session.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

// State maps the request onto the gate's auth state.
func State(c *gin.Context) gate.State {
	if IsAuthenticated(c) {
		return gate.SignedIn
	}
	return gate.SignedOut
}

// WantsJSON reports whether the caller is the dashboard script rather than
// a plain form post.
func WantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}
