package chrome

// Tab is one dashboard section.
type Tab struct {
	ID    string
	Label string
}

// TabView is a tab with its active flag, ready for a template.
type TabView struct {
	Tab
	Active bool
}

// Sections keeps exactly one active section, the first one by default.
type Sections struct {
	tabs   []Tab
	active string
}

func NewSections(tabs ...Tab) *Sections {
	s := &Sections{tabs: tabs}
	if len(tabs) > 0 {
		s.active = tabs[0].ID
	}
	return s
}

// OfficeTabs are the dashboard sections in menu order.
func OfficeTabs() []Tab {
	return []Tab{
		{ID: "programs", Label: "Weekly Programs"},
		{ID: "events", Label: "Events"},
		{ID: "gallery", Label: "Gallery"},
		{ID: "site", Label: "Verse & Themes"},
		{ID: "activity", Label: "Activity"},
	}
}

func (s *Sections) Active() string { return s.active }

// Activate switches to id. Unknown ids are ignored.
func (s *Sections) Activate(id string) bool {
	for _, t := range s.tabs {
		if t.ID == id {
			s.active = id
			return true
		}
	}
	return false
}

// Select is a menu click: it activates id and, on a mobile viewport, closes
// the sidebar overlay.
func (s *Sections) Select(id string, sidebar *Sidebar) bool {
	if !s.Activate(id) {
		return false
	}
	if sidebar != nil {
		sidebar.Handle(Event{Kind: EventNavigate})
	}
	return true
}

func (s *Sections) Tabs() []TabView {
	out := make([]TabView, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = TabView{Tab: t, Active: t.ID == s.active}
	}
	return out
}
