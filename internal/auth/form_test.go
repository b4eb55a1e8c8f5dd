package auth

import "testing"

func TestLocalRedirect(t *testing.T) {
	cases := []struct {
		target string
		want   bool
	}{
		{"/admin/orders", true},
		{"/admin/orders?page=2#top", true},
		{"/", true},
		{"", false},
		{"orders", false},
		{"https://evil.test/", false},
		{"//evil.test", false},
		{"/\\evil.test", false},
		{"/\t/evil.test", false},
		{"/\n/evil.test", false},
		{"/\x00/evil.test", false},
		{"/\x7f/evil.test", false},
		{"/admin\r\nSet-Cookie: x=1", false},
	}
	for _, tc := range cases {
		if got := LocalRedirect(tc.target); got != tc.want {
			t.Fatalf("LocalRedirect(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
}
