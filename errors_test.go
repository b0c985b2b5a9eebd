package harbor

import (
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetErrorWrapping(t *testing.T) {
	err := &NetError{Op: "read", Err: io.ErrUnexpectedEOF}
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "read")
}

func TestIPv6OnlyErrorMessage(t *testing.T) {
	err := &IPv6OnlyError{Addr: net.ParseIP("fe80::1")}
	assert.Contains(t, err.Error(), "fe80::1")
	assert.Contains(t, err.Error(), "unsupported")

	var target *IPv6OnlyError
	assert.True(t, errors.As(error(err), &target))
}

func TestNoRouteErrorNamesDestination(t *testing.T) {
	dest := NewIdentity(net.IPv4(10, 0, 0, 9), 4000)
	err := &NoRouteError{Dest: dest}
	assert.Contains(t, err.Error(), dest.ID())
}
