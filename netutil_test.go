package harbor

import (
	"errors"
	"testing"
)

// LocalIPv4's result depends on the host, so the test only pins the
// contract: an IPv4 address, or one of the two typed failures.
func TestLocalIPv4Contract(t *testing.T) {
	ip, err := LocalIPv4()
	if err != nil {
		var v6 *IPv6OnlyError
		if !errors.Is(err, ErrNoIP) && !errors.As(err, &v6) {
			t.Fatalf("unexpected error type: %v", err)
		}
		return
	}
	if ip.To4() == nil {
		t.Fatalf("expected an IPv4 address, got %v", ip)
	}
	if ip.IsLoopback() {
		t.Fatalf("loopback address %v must not be discovered", ip)
	}
}
