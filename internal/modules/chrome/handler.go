package chrome

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ummachristians-netizen/umma-christians/internal/pkg/response"
)

// Sidebar state cookies, one per surface.
const (
	CookieOffice = "office_sidebar"
	CookiePublic = "site_sidebar"

	cookieMaxAge = 365 * 24 * 60 * 60
)

// SidebarDTO is one UI event posted by the browser with its viewport width.
type SidebarDTO struct {
	Kind  string `form:"kind"  json:"kind"`
	Width int    `form:"width" json:"width"`
}

// SidebarView is the state the browser applies to the DOM.
type SidebarView struct {
	Class        string `json:"class"`
	Overlay      bool   `json:"overlay"`
	MainExpanded bool   `json:"mainExpanded"`
	Expanded     bool   `json:"expanded"`
}

func (s *Sidebar) View() SidebarView {
	return SidebarView{
		Class:        s.Class(),
		Overlay:      s.OverlayActive(),
		MainExpanded: s.MainExpanded(),
		Expanded:     s.Expanded(),
	}
}

// SidebarFromCookie restores the sidebar of the named surface cookie.
func SidebarFromCookie(c *gin.Context, name string, breakpoint int) *Sidebar {
	raw, err := c.Cookie(name)
	if err != nil {
		return NewSidebar(breakpoint, DefaultWidth)
	}
	return DecodeSidebar(raw, breakpoint)
}

func saveSidebar(c *gin.Context, name string, s *Sidebar) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, s.Encode(), cookieMaxAge, "/", "", false, false)
}

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/chrome/sidebar", h.sidebar(CookiePublic, PublicBreakpoint))
	r.POST("/office/chrome/sidebar", h.sidebar(CookieOffice, OfficeBreakpoint))
}

func (h *Handler) sidebar(cookie string, breakpoint int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto SidebarDTO
		if err := c.ShouldBind(&dto); err != nil {
			response.BadRequest(c, "invalid sidebar event")
			return
		}
		kind := EventKind(strings.ToLower(strings.TrimSpace(dto.Kind)))
		switch kind {
		case EventToggle, EventOverlay, EventEscape, EventOutside, EventResize, EventNavigate:
		default:
			response.BadRequest(c, "unknown sidebar event")
			return
		}

		s := SidebarFromCookie(c, cookie, breakpoint)
		if dto.Width > 0 && dto.Width != s.Width() {
			s.Resize(dto.Width)
		}
		s.Handle(Event{Kind: kind, Width: dto.Width})
		saveSidebar(c, cookie, s)
		response.OK(c, gin.H{"data": s.View()})
	}
}
