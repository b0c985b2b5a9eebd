package harbor

import (
	"net"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattnappo/harbor/wire"
)

func TestPeerListingHandler(t *testing.T) {
	peer := newTestPeer(t, nil)
	require.True(t, peer.Store().Add(NewIdentity(net.IPv4(10, 0, 0, 7), 4000)))
	require.True(t, peer.Store().Add(NewIdentity(net.IPv4(10, 0, 0, 8), 4000)))

	rec := httptest.NewRecorder()
	peer.ServeHTTP(rec, httptest.NewRequest("GET", "/peers", nil))

	body := rec.Body.String()
	assert.Contains(t, body, peer.Identity().ID())
	assert.Contains(t, body, "10.0.0.7:4000")
	assert.Contains(t, body, "10.0.0.8:4000")
}

func TestMetricsCountRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	peer := newTestPeer(t, func(cfg *Config) {
		cfg.Metrics = NewMetrics(reg, "harbor")
	})

	res := exchange(t, peer, wire.NewRequest(wire.MsgPing))
	require.Equal(t, wire.MsgPong, res.Type)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	assert.True(t, found["harbor_connections_accepted_total"])
	assert.True(t, found["harbor_requests_total"])
}
