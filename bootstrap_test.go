package harbor

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestBootstrapSkipsMalformedLines(t *testing.T) {
	store := NewStore(NewIdentity(net.IPv4(10, 0, 0, 99), 3300), 32)
	src := strings.NewReader("10.0.0.1:9000\nbad-line\n10.0.0.2:9001\n")

	count, err := Bootstrap(store, src, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, store.Size())
}

func TestBootstrapSkipsSelf(t *testing.T) {
	self := NewIdentity(net.IPv4(10, 0, 0, 1), 3300)
	store := NewStore(self, 32)
	src := strings.NewReader("10.0.0.1:3300\n10.0.0.2:3300\n")

	count, err := Bootstrap(store, src, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, ok := store.Contains(self)
	assert.False(t, ok)
}

func TestBootstrapSkipsUnparseableFields(t *testing.T) {
	store := NewStore(NewIdentity(net.IPv4(10, 0, 0, 99), 3300), 32)
	src := strings.NewReader(strings.Join([]string{
		"10.0.0.1:not-a-port",
		"nonsense:9000",
		"10.0.0.1:0",
		"10.0.0.1:70000",
		"1:2:3",
		"",
		"10.0.0.3:9000",
	}, "\n"))

	count, err := Bootstrap(store, src, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, store.Size())
}

func TestBootstrapSkipsDuplicates(t *testing.T) {
	store := NewStore(NewIdentity(net.IPv4(10, 0, 0, 99), 3300), 32)
	src := strings.NewReader("10.0.0.1:9000\n10.0.0.1:9000\n")

	count, err := Bootstrap(store, src, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, store.Size())
}

func TestBootstrapFileMissingIsNotFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IP = net.IPv4(127, 0, 0, 1)
	cfg.Port = 3300
	peer, err := NewPeer(cfg)
	require.NoError(t, err)

	count, err := peer.BootstrapFile("does/not/exist.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, peer.Store().Size())
}
