// Package chrome models the responsive sidebar and the dashboard section
// switcher so the server can render their state and apply UI events.
package chrome

import (
	"fmt"
	"strconv"
	"strings"
)

// Viewport widths at or below which the sidebar behaves as an overlay.
const (
	OfficeBreakpoint = 900
	PublicBreakpoint = 860

	// DefaultWidth is assumed until the browser reports one.
	DefaultWidth = 1280
)

// EventKind is a sidebar input.
type EventKind string

const (
	EventToggle   EventKind = "toggle"
	EventOverlay  EventKind = "overlay"
	EventEscape   EventKind = "escape"
	EventOutside  EventKind = "outside"
	EventResize   EventKind = "resize"
	EventNavigate EventKind = "navigate"
)

type Event struct {
	Kind  EventKind
	Width int
}

// Sidebar keeps the desktop flag (closed) and the mobile flag (active)
// separately; which one applies depends on the current width.
type Sidebar struct {
	breakpoint int
	width      int
	closed     bool
	active     bool
}

func NewSidebar(breakpoint, width int) *Sidebar {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Sidebar{breakpoint: breakpoint, width: width}
}

func (s *Sidebar) Mobile() bool { return s.width <= s.breakpoint }

func (s *Sidebar) Width() int { return s.width }

func (s *Sidebar) Open() {
	if s.Mobile() {
		s.active = true
		return
	}
	s.closed = false
}

func (s *Sidebar) Close() {
	if s.Mobile() {
		s.active = false
		return
	}
	s.closed = true
}

func (s *Sidebar) Toggle() {
	if s.Expanded() {
		s.Close()
		return
	}
	s.Open()
}

// Resize moves to a new width. Entering mobile clears the desktop flag and
// entering desktop clears the mobile one.
func (s *Sidebar) Resize(width int) {
	if width <= 0 {
		return
	}
	s.width = width
	if s.Mobile() {
		s.closed = false
	} else {
		s.active = false
	}
}

// Handle applies one event and reports whether the state changed.
func (s *Sidebar) Handle(ev Event) bool {
	before := *s
	switch ev.Kind {
	case EventToggle:
		s.Toggle()
	case EventOverlay, EventEscape:
		s.Close()
	case EventOutside, EventNavigate:
		if s.Mobile() {
			s.Close()
		}
	case EventResize:
		s.Resize(ev.Width)
	}
	return before != *s
}

// Expanded mirrors aria-expanded on the toggle button.
func (s *Sidebar) Expanded() bool {
	if s.Mobile() {
		return s.active
	}
	return !s.closed
}

func (s *Sidebar) OverlayActive() bool { return s.Mobile() && s.active }

// MainExpanded reports whether the main column takes the sidebar's space.
func (s *Sidebar) MainExpanded() bool { return !s.Mobile() && s.closed }

// Class is the sidebar's state class: "active", "closed" or "".
func (s *Sidebar) Class() string {
	switch {
	case s.Mobile() && s.active:
		return "active"
	case !s.Mobile() && s.closed:
		return "closed"
	}
	return ""
}

// Encode serializes the state for a cookie, e.g. "1280.c" or "375.a".
func (s *Sidebar) Encode() string {
	flags := ""
	if s.closed {
		flags += "c"
	}
	if s.active {
		flags += "a"
	}
	return fmt.Sprintf("%d.%s", s.width, flags)
}

// DecodeSidebar restores a cookie value; garbage yields the default state.
func DecodeSidebar(raw string, breakpoint int) *Sidebar {
	width, flags, _ := strings.Cut(strings.TrimSpace(raw), ".")
	w, err := strconv.Atoi(width)
	if err != nil || w <= 0 {
		return NewSidebar(breakpoint, DefaultWidth)
	}
	s := NewSidebar(breakpoint, w)
	s.closed = strings.Contains(flags, "c")
	s.active = strings.Contains(flags, "a")
	return s
}
