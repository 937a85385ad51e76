package chrome

import "testing"

func TestDesktopToggle(t *testing.T) {
	s := NewSidebar(OfficeBreakpoint, 1200)
	if !s.Expanded() || s.Class() != "" {
		t.Fatalf("desktop starts open: expanded=%v class=%q", s.Expanded(), s.Class())
	}
	s.Handle(Event{Kind: EventToggle})
	if s.Expanded() || s.Class() != "closed" || !s.MainExpanded() {
		t.Fatalf("after toggle: expanded=%v class=%q", s.Expanded(), s.Class())
	}
	s.Handle(Event{Kind: EventToggle})
	if !s.Expanded() || s.Class() != "" {
		t.Fatal("second toggle should reopen")
	}
	s.Handle(Event{Kind: EventEscape})
	if s.Expanded() {
		t.Fatal("escape should close on desktop")
	}
}

func TestMobileOverlay(t *testing.T) {
	s := NewSidebar(OfficeBreakpoint, 600)
	if s.Expanded() || s.OverlayActive() {
		t.Fatal("mobile starts collapsed")
	}
	s.Handle(Event{Kind: EventToggle})
	if !s.Expanded() || !s.OverlayActive() || s.Class() != "active" {
		t.Fatalf("open on mobile: class=%q", s.Class())
	}
	s.Handle(Event{Kind: EventOverlay})
	if s.Expanded() || s.OverlayActive() {
		t.Fatal("overlay click should close")
	}

	s.Handle(Event{Kind: EventToggle})
	s.Handle(Event{Kind: EventOutside})
	if s.Expanded() {
		t.Fatal("outside click should close on mobile")
	}
}

func TestOutsideClickIgnoredOnDesktop(t *testing.T) {
	s := NewSidebar(OfficeBreakpoint, 1200)
	if s.Handle(Event{Kind: EventOutside}) {
		t.Fatal("outside click must not change desktop state")
	}
}

func TestResizeClearsOtherModeFlag(t *testing.T) {
	s := NewSidebar(OfficeBreakpoint, 1200)
	s.Close()
	s.Handle(Event{Kind: EventResize, Width: 800})
	if !s.Mobile() || s.Expanded() || s.Class() != "" {
		t.Fatalf("mobile after resize: class=%q", s.Class())
	}
	s.Handle(Event{Kind: EventResize, Width: 1200})
	if !s.Expanded() {
		t.Fatal("desktop closed flag should have been cleared when entering mobile")
	}

	s.Handle(Event{Kind: EventResize, Width: 700})
	s.Open()
	s.Handle(Event{Kind: EventResize, Width: 1000})
	s.Handle(Event{Kind: EventResize, Width: 700})
	if s.Expanded() {
		t.Fatal("mobile active flag should have been cleared when entering desktop")
	}
}

func TestBreakpointIsInclusive(t *testing.T) {
	if !NewSidebar(PublicBreakpoint, 860).Mobile() || NewSidebar(PublicBreakpoint, 861).Mobile() {
		t.Fatal("width equal to the breakpoint is mobile")
	}
}

func TestEncodeDecode(t *testing.T) {
	s := NewSidebar(OfficeBreakpoint, 1200)
	s.Close()
	got := DecodeSidebar(s.Encode(), OfficeBreakpoint)
	if got.Width() != 1200 || got.Expanded() {
		t.Fatalf("decoded %q -> width=%d expanded=%v", s.Encode(), got.Width(), got.Expanded())
	}
	if d := DecodeSidebar("junk", OfficeBreakpoint); d.Width() != DefaultWidth || !d.Expanded() {
		t.Fatal("garbage should decode to default")
	}
}

func TestSections(t *testing.T) {
	s := NewSections(OfficeTabs()...)
	if s.Active() != "programs" {
		t.Fatalf("default = %q", s.Active())
	}
	if s.Activate("nope") || s.Active() != "programs" {
		t.Fatal("unknown id must be ignored")
	}
	if !s.Activate("gallery") || s.Active() != "gallery" {
		t.Fatal("activate gallery")
	}
	active := 0
	for _, tab := range s.Tabs() {
		if tab.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("%d active tabs", active)
	}
}

func TestSelectClosesMobileSidebar(t *testing.T) {
	sidebar := NewSidebar(OfficeBreakpoint, 500)
	sidebar.Open()
	s := NewSections(OfficeTabs()...)
	if !s.Select("events", sidebar) || sidebar.Expanded() {
		t.Fatal("select on mobile should close the overlay")
	}

	desktop := NewSidebar(OfficeBreakpoint, 1200)
	s.Select("site", desktop)
	if !desktop.Expanded() {
		t.Fatal("select on desktop leaves the sidebar alone")
	}
}
