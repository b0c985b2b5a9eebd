package harbor

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoIP is returned when no usable local address can be found at all.
var ErrNoIP = errors.New("no public or private ip can be found for this peer")

// IPv6OnlyError is returned when the host only offers an IPv6 address.
// Identities are endpoint-derived from IPv4 addresses, so this is an
// unsupported configuration, not a transient failure.
type IPv6OnlyError struct {
	Addr net.IP
}

func (e *IPv6OnlyError) Error() string {
	return fmt.Sprintf("ipv6 address %s found, but ipv6 is unsupported", e.Addr)
}

// NetError wraps any network or codec failure on the wire. It is also the
// error that gets flattened into a MsgErr response payload where one is due.
type NetError struct {
	Op  string // "dial", "read", "write", "encode", "decode"
	Err error
}

func (e *NetError) Error() string {
	return fmt.Sprintf("network %s: %v", e.Op, e.Err)
}

func (e *NetError) Unwrap() error { return e.Err }

// NoRouteError is returned by the router when the destination identity is
// not in the membership table (or the hop budget is spent).
type NoRouteError struct {
	Dest Identity
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route to peer %s", e.Dest)
}

// DeadPeerError marks a destination that is known but unreachable. Nothing
// produces it yet; it is reserved for the heartbeat layer.
type DeadPeerError struct {
	Dest Identity
}

func (e *DeadPeerError) Error() string {
	return fmt.Sprintf("peer %s is dead", e.Dest)
}
