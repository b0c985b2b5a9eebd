package harbor

import "net"

// LocalIPv4 returns this host's first non-loopback IPv4 address. A host
// that only offers IPv6 gets an *IPv6OnlyError; a host with no usable
// address at all gets ErrNoIP. Both are fatal at node construction.
func LocalIPv4() (net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, ErrNoIP
	}
	var v6 net.IP
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4, nil
		}
		if v6 == nil {
			v6 = ipnet.IP
		}
	}
	if v6 != nil {
		return nil, &IPv6OnlyError{Addr: v6}
	}
	return nil, ErrNoIP
}
