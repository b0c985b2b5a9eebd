package harbor

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"

	sha256 "github.com/minio/sha256-simd"

	"github.com/mattnappo/harbor/wire"
)

// Identity is the deterministic identifier of a node on the network. The id
// is a digest of the node's "ip:port" endpoint, so two constructions from
// the same endpoint always compare equal. Identity is endpoint-derived, not
// cryptographic: it authenticates nothing, and each identity is assumed to
// map to exactly one live endpoint.
type Identity struct {
	id   string
	ip   net.IP
	port int
}

// NewIdentity derives an identity from an IPv4 address and port.
func NewIdentity(ip net.IP, port int) Identity {
	sock := net.JoinHostPort(ip.String(), strconv.Itoa(port))
	sum := sha256.Sum256([]byte(sock))
	return Identity{
		id:   fmt.Sprintf("peer-%s@%s", hex.EncodeToString(sum[:]), sock),
		ip:   ip,
		port: port,
	}
}

// ID returns the full identifier string.
func (i Identity) ID() string { return i.id }

// IP returns the identity's address.
func (i Identity) IP() net.IP { return i.ip }

// Port returns the identity's port.
func (i Identity) Port() int { return i.port }

// Socket returns the "ip:port" string used to dial this peer. It is not
// part of identity equality.
func (i Identity) Socket() string {
	return net.JoinHostPort(i.ip.String(), strconv.Itoa(i.port))
}

// Equal compares identities by id only.
func (i Identity) Equal(other Identity) bool { return i.id == other.id }

// IsZero reports whether the identity was never constructed.
func (i Identity) IsZero() bool { return i.id == "" }

func (i Identity) String() string { return i.id }

// wirePeer converts the identity to its on-wire form.
func (i Identity) wirePeer() wire.Peer {
	return wire.Peer{ID: i.id, IP: i.ip.String(), Port: i.port}
}

// identityFromWire rebuilds an identity from its on-wire form. The id is
// recomputed from the endpoint; a carried id that disagrees is rejected so a
// peer cannot claim an identity its endpoint doesn't hash to.
func identityFromWire(p wire.Peer) (Identity, error) {
	ip := net.ParseIP(p.IP)
	if ip == nil || ip.To4() == nil {
		return Identity{}, fmt.Errorf("invalid peer address %q", p.IP)
	}
	if p.Port <= 0 || p.Port > 65535 {
		return Identity{}, fmt.Errorf("invalid peer port %d", p.Port)
	}
	id := NewIdentity(ip.To4(), p.Port)
	if p.ID != "" && p.ID != id.id {
		return Identity{}, fmt.Errorf("peer id %q does not match endpoint %s", p.ID, id.Socket())
	}
	return id, nil
}
