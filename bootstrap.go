package harbor

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Bootstrap seeds the store from a line source of "ip:port" entries, one
// per line. Lines that don't split into exactly two fields, or whose fields
// don't parse as an IPv4 address and port, are skipped one at a time; a bad
// line never aborts the rest. Entries naming the local node are skipped.
// Returns the number of peers actually inserted.
//
// Bootstrap runs once, before the listener opens, so it never races with
// connection workers.
func Bootstrap(store *Store, r io.Reader, log *zap.Logger) (int, error) {
	count := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 2 {
			log.Warn("skipping malformed bootstrap line", zap.String("line", line))
			continue
		}
		ip := net.ParseIP(fields[0])
		if ip == nil || ip.To4() == nil {
			log.Warn("skipping bootstrap line with bad address", zap.String("line", line))
			continue
		}
		port, err := strconv.Atoi(fields[1])
		if err != nil || port <= 0 || port > 65535 {
			log.Warn("skipping bootstrap line with bad port", zap.String("line", line))
			continue
		}
		id := NewIdentity(ip.To4(), port)
		if store.Add(id) {
			count++
		} else {
			log.Debug("bootstrap peer not added", zap.String("peer", id.Socket()))
		}
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}
