// Package gate decides what each page does for a given auth state and
// builds the office navigation bridge shown on public pages.
package gate

// State is the observed auth state of a browser session.
type State string

const (
	SignedOut State = "signed-out"
	SignedIn  State = "signed-in"
)

// Page is where the decision is made.
type Page int

const (
	PageLogin Page = iota
	PageDashboard
	PagePublic
)

// Action is what the page must do.
type Action int

const (
	// Stay renders the page as requested.
	Stay Action = iota
	RedirectDashboard
	RedirectLogin
	// Reveal shows the dashboard and binds its live subscriptions.
	Reveal
	// ShowBridge renders the public page with the navigation bridge.
	ShowBridge
)

const (
	LoginPath     = "/office/login"
	DashboardPath = "/office"
	LogoutPath    = "/office/logout"
)

func Decide(page Page, state State) Action {
	switch page {
	case PageLogin:
		if state == SignedIn {
			return RedirectDashboard
		}
	case PageDashboard:
		if state == SignedIn {
			return Reveal
		}
		return RedirectLogin
	case PagePublic:
		return ShowBridge
	}
	return Stay
}

// Target is the redirect location for action, or "" when there is none.
func Target(action Action) string {
	switch action {
	case RedirectDashboard:
		return DashboardPath
	case RedirectLogin:
		return LoginPath
	}
	return ""
}

// Item kinds in the navigation bridge.
const (
	KindLink   = "link"
	KindChip   = "chip"
	KindButton = "button"
)

// Item is one element of the navigation bridge.
type Item struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
	Class string `json:"class"`
}

// Bridge returns the office affordances for state: a login link when
// signed out, otherwise the mode chip, dashboard link and sign-out button.
func Bridge(state State) []Item {
	if state != SignedIn {
		return []Item{
			{Kind: KindLink, ID: "officeLoginLink", Label: "Office Login", Href: LoginPath, Class: "btn btn-outline"},
		}
	}
	return []Item{
		{Kind: KindChip, ID: "officeModeChip", Label: "Office Mode", Class: "chip"},
		{Kind: KindLink, ID: "officeDashLink", Label: "Office Dashboard", Href: DashboardPath, Class: "btn btn-outline"},
		{Kind: KindButton, ID: "officeSignoutBtn", Label: "Sign Out", Href: LogoutPath, Class: "btn btn-danger"},
	}
}
