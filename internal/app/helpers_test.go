package app

import (
	"testing"
	"time"
)

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+03:00")
	if err != nil {
		t.Fatal(err)
	}
	if _, offset := time.Unix(0, 0).In(loc).Zone(); offset != 3*3600 {
		t.Errorf("offset = %d", offset)
	}
	if loc, err = parseTimezoneLocation("-05:30"); err != nil {
		t.Fatal(err)
	}
	if _, offset := time.Unix(0, 0).In(loc).Zone(); offset != -(5*3600 + 30*60) {
		t.Errorf("offset = %d", offset)
	}
	if _, err := parseTimezoneLocation("UTC"); err != nil {
		t.Errorf("UTC: %v", err)
	}
	for _, bad := range []string{"+25:00", "Mars/Olympus", "0300"} {
		if _, err := parseTimezoneLocation(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := map[time.Duration]string{
		42*time.Second + 300*time.Millisecond: "42s",
		3*time.Minute + 10*time.Second:        "3m0s",
		5*time.Hour + 20*time.Minute:          "5h0m0s",
		50 * time.Hour:                        "2d2h0m0s",
	}
	for d, want := range cases {
		if got := humanizeDuration(d); got != want {
			t.Errorf("humanizeDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestMatchOrigin(t *testing.T) {
	cases := []struct {
		pattern, origin string
		want            bool
	}{
		{"church.org", "https://church.org", true},
		{"*.church.org", "https://office.church.org", true},
		{"*.church.org", "https://evil.org", false},
		{"localhost:*", "http://localhost:5173", true},
		{"church.org", "https://church.org.evil.io", false},
	}
	for _, tc := range cases {
		if got := matchOrigin(tc.pattern, originHost(tc.origin)); got != tc.want {
			t.Errorf("%s vs %s = %v", tc.pattern, tc.origin, got)
		}
	}
}
