package gate

import "testing"

func TestDecide(t *testing.T) {
	cases := []struct {
		page  Page
		state State
		want  Action
	}{
		{PageLogin, SignedIn, RedirectDashboard},
		{PageLogin, SignedOut, Stay},
		{PageDashboard, SignedOut, RedirectLogin},
		{PageDashboard, SignedIn, Reveal},
		{PagePublic, SignedOut, ShowBridge},
		{PagePublic, SignedIn, ShowBridge},
	}
	for _, tc := range cases {
		if got := Decide(tc.page, tc.state); got != tc.want {
			t.Errorf("Decide(%v, %v) = %v, want %v", tc.page, tc.state, got, tc.want)
		}
	}
	if Target(RedirectLogin) != LoginPath || Target(RedirectDashboard) != DashboardPath || Target(Reveal) != "" {
		t.Fatal("unexpected redirect targets")
	}
}

func TestBridge(t *testing.T) {
	out := Bridge(SignedOut)
	if len(out) != 1 || out[0].Label != "Office Login" || out[0].Href != LoginPath {
		t.Fatalf("signed-out bridge = %+v", out)
	}

	in := Bridge(SignedIn)
	labels := []string{"Office Mode", "Office Dashboard", "Sign Out"}
	if len(in) != len(labels) {
		t.Fatalf("signed-in bridge = %+v", in)
	}
	for i, item := range in {
		if item.Label != labels[i] {
			t.Errorf("item %d = %q, want %q", i, item.Label, labels[i])
		}
	}
	if in[2].Kind != KindButton {
		t.Fatal("sign out is a button")
	}
}
