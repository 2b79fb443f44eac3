package probe

import (
	"context"
	"testing"
)

func TestCheckDNS_InvalidNames(t *testing.T) {
	for _, in := range []string{"", "   ", "https://example.com"} {
		if got := CheckDNS(context.Background(), in); got.Class != DNSInvalidName {
			t.Fatalf("CheckDNS(%q).Class=%s want %s", in, got.Class, DNSInvalidName)
		}
	}
}

func TestHostOf(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://example.com/health", "example.com"},
		{"http://api.example.com:8080", "api.example.com"},
		{"example.com", "example.com"},
	}
	for _, c := range cases {
		if got := HostOf(c.in); got != c.want {
			t.Fatalf("HostOf(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
