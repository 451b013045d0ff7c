package target

import (
	"slices"
	"strings"
	"testing"
)

// TestParse tests target expression expansion.
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("single IPv4 literal", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("127.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hosts, []string{"127.0.0.1"}) {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("single IPv6 literal", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("::1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hosts, []string{"::1"}) {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("CIDR skips network and broadcast", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("192.168.1.0/30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hosts, []string{"192.168.1.1", "192.168.1.2"}) {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("slash 32 is the single host", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("10.0.0.5/32")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hosts, []string{"10.0.0.5"}) {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("inclusive IPv4 range", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("10.0.0.1-10.0.0.3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hosts) != 3 {
			t.Fatalf("expected 3 hosts, got %d", len(hosts))
		}
		if hosts[0] != "10.0.0.1" || hosts[2] != "10.0.0.3" {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("reversed range is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := Parse("10.0.0.9-10.0.0.1"); err == nil {
			t.Error("expected error for reversed range")
		}
	})

	t.Run("IPv6 range is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := Parse("::1-::5"); err == nil {
			t.Error("expected error for IPv6 range")
		}
	})

	t.Run("hostname passes through", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("scanme.example.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hosts, []string{"scanme.example.org"}) {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("hostname with dash is not mistaken for a range", func(t *testing.T) {
		t.Parallel()

		hosts, err := Parse("my-host.example.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(hosts, []string{"my-host.example.org"}) {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})

	t.Run("expansion cap is enforced", func(t *testing.T) {
		t.Parallel()

		_, err := Parse("10.0.0.0/16")
		if err == nil {
			t.Fatal("expected error for oversized CIDR")
		}
		if !strings.Contains(err.Error(), "expands beyond") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("garbage input is rejected", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "   ", "not a host!", "a..b", "-leading.example"} {
			if _, err := Parse(in); err == nil {
				t.Errorf("expected error for %q", in)
			}
		}
	})
}
