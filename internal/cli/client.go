package cli

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mattnappo/harbor"
	"github.com/mattnappo/harbor/wire"
)

// identityFromAddr derives the target's identity from an "ip:port" string.
func identityFromAddr(addr string) (harbor.Identity, error) {
	fields := strings.Split(addr, ":")
	if len(fields) != 2 {
		return harbor.Identity{}, fmt.Errorf("address %q is not ip:port", addr)
	}
	ip := net.ParseIP(fields[0])
	if ip == nil || ip.To4() == nil {
		return harbor.Identity{}, fmt.Errorf("address %q has no IPv4 host", addr)
	}
	port, err := strconv.Atoi(fields[1])
	if err != nil || port <= 0 || port > 65535 {
		return harbor.Identity{}, fmt.Errorf("address %q has a bad port", addr)
	}
	return harbor.NewIdentity(ip.To4(), port), nil
}

// sendRequest performs one full exchange with a remote node: dial, write
// the request, read the response until the remote closes.
func sendRequest(addr string, req wire.Request, log *zap.Logger) (wire.Response, error) {
	to, err := identityFromAddr(addr)
	if err != nil {
		return wire.Response{}, err
	}
	transport := harbor.NewTransport(harbor.DefaultConfig(), log)
	conn, err := transport.SendRequest(to, req)
	if err != nil {
		return wire.Response{}, err
	}
	defer conn.Close()
	return transport.ReadResponse(conn)
}
