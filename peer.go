package harbor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mattnappo/harbor/wire"
)

// Config carries the node's tunables. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// IP is the address to derive the identity from and listen on. When
	// nil, the local IPv4 address is discovered.
	IP   net.IP
	Port int

	// MaxPeers bounds the membership table. Enforced on every insert.
	MaxPeers int

	// MaxTransferSize caps a request at a single read. Every defined
	// request fits well within it; there is no length-prefix framing.
	MaxTransferSize int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger  *zap.Logger
	Metrics *Metrics
}

// DefaultConfig returns the stock node configuration.
func DefaultConfig() Config {
	return Config{
		MaxPeers:        32,
		MaxTransferSize: 4096,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

// HandlerFunc turns one request into its response. Handlers may take the
// store lock but must never perform I/O while holding it.
type HandlerFunc func(req wire.Request) wire.Response

// Peer is the node running on this machine: its identity, its membership
// table, and the accept loop that serves the request/response protocol.
type Peer struct {
	identity  Identity
	store     *Store
	router    *Router
	transport *Transport
	handlers  map[string]HandlerFunc

	cfg      Config
	listener net.Listener
	closed   atomic.Bool
	wg       sync.WaitGroup

	log     *zap.Logger
	metrics *Metrics
}

// NewPeer constructs a node. When cfg.IP is nil the local IPv4 address is
// discovered; a host without one is a fatal construction error.
func NewPeer(cfg Config) (*Peer, error) {
	ip := cfg.IP
	if ip == nil {
		var err error
		ip, err = LocalIPv4()
		if err != nil {
			return nil, err
		}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry(), "harbor")
	}

	identity := NewIdentity(ip, cfg.Port)
	store := NewStore(identity, cfg.MaxPeers)
	p := &Peer{
		identity:  identity,
		store:     store,
		router:    NewRouter(identity, store),
		transport: NewTransport(cfg, log),
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
	}

	// The request -> handler table. One handler per variant; the reserved
	// content-routing requests all answer with MsgErr for now.
	p.handlers = map[string]HandlerFunc{
		wire.MsgPing:       p.handlePing,
		wire.MsgIdentity:   p.handleIdentity,
		wire.MsgList:       p.handleList,
		wire.MsgPeerStore:  p.handlePeerStore,
		wire.MsgJoin:       p.handleJoin,
		wire.MsgLeave:      p.handleLeave,
		wire.MsgQueryKey:   p.handleNotImplemented,
		wire.MsgRespondKey: p.handleNotImplemented,
		wire.MsgGet:        p.handleNotImplemented,
		wire.MsgSyncPeers:  p.handleNotImplemented,
	}
	return p, nil
}

// Identity returns the node's own identity.
func (p *Peer) Identity() Identity { return p.identity }

// Store returns the node's membership table.
func (p *Peer) Store() *Store { return p.store }

// BootstrapFile seeds the store from the named file before the listener
// opens. A missing or unreadable file is not fatal; the node just starts
// with zero peers.
func (p *Peer) BootstrapFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		p.log.Warn("bootstrap file unavailable", zap.String("path", path), zap.Error(err))
		return 0, nil
	}
	defer f.Close()

	count, err := Bootstrap(p.store, f, p.log)
	p.metrics.PeerstoreSize.Set(float64(p.store.Size()))
	if err != nil {
		return count, err
	}
	p.log.Info("bootstrapped peers", zap.Int("count", count), zap.String("path", path))
	return count, nil
}

// Start opens the listening socket and runs the accept loop on its own
// goroutine. The loop blocks only on the next inbound connection; each
// accepted connection gets its own worker.
func (p *Peer) Start() error {
	ln, err := net.Listen("tcp", p.identity.Socket())
	if err != nil {
		return &NetError{Op: "listen", Err: err}
	}
	p.listener = ln
	p.log.Info("listening", zap.String("socket", p.identity.Socket()))

	p.wg.Add(1)
	go p.acceptLoop()
	return nil
}

func (p *Peer) acceptLoop() {
	defer p.wg.Done()
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			if p.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			p.log.Error("accept failed", zap.Error(err))
			continue
		}
		p.wg.Add(1)
		go p.handleConn(conn)
	}
}

// handleConn runs one connection end to end: a single bounded read, decode,
// dispatch, handle, a single response write, close. Failures are contained
// to this worker; nothing here may take down the accept loop.
func (p *Peer) handleConn(conn net.Conn) {
	defer p.wg.Done()
	defer conn.Close()
	p.metrics.ConnectionsAccepted.Inc()

	_ = conn.SetReadDeadline(time.Now().Add(p.cfg.ReadTimeout))
	buf := make([]byte, p.cfg.MaxTransferSize)
	n, err := conn.Read(buf)
	if err != nil {
		p.metrics.RequestErrors.Inc()
		p.log.Warn("request read failed", zap.Error(err))
		return
	}

	req, err := wire.DecodeRequest(buf[:n])
	if err != nil {
		// A malformed request is the client's problem, not ours: answer
		// with MsgErr and close. It must never escape this worker.
		p.metrics.RequestErrors.Inc()
		p.log.Warn("request decode failed", zap.Error(err))
		if _, werr := p.transport.SendResponse(conn, wire.ErrResponse("", "malformed request")); werr != nil {
			p.log.Warn("error response write failed", zap.Error(werr))
		}
		return
	}

	p.metrics.RequestsTotal.WithLabelValues(req.Type).Inc()
	p.log.Debug("dispatching request",
		zap.String("type", req.Type),
		zap.String("msg_id", req.MsgID),
		zap.String("remote", conn.RemoteAddr().String()))

	res := p.handlers[req.Type](req)
	if _, err := p.transport.SendResponse(conn, res); err != nil {
		p.metrics.RequestErrors.Inc()
		p.log.Warn("response write failed", zap.Error(err), zap.String("msg_id", req.MsgID))
	}
}

func (p *Peer) handlePing(req wire.Request) wire.Response {
	return wire.Response{Type: wire.MsgPong, MsgID: req.MsgID}
}

func (p *Peer) handleIdentity(req wire.Request) wire.Response {
	self := p.identity.wirePeer()
	return wire.Response{Type: wire.MsgIdentityResp, MsgID: req.MsgID, Peer: &self}
}

func (p *Peer) handleList(req wire.Request) wire.Response {
	// The key-value layer isn't wired in yet.
	return wire.ErrResponse(req.MsgID, "no keys stored yet")
}

func (p *Peer) handlePeerStore(req wire.Request) wire.Response {
	// Snapshot under the lock, serialize outside it.
	snapshot := p.store.Snapshot()
	peers := make([]wire.Peer, 0, len(snapshot))
	for _, id := range snapshot {
		peers = append(peers, id.wirePeer())
	}
	return wire.Response{Type: wire.MsgPeerStoreResp, MsgID: req.MsgID, Peers: peers}
}

// handleJoin adds the identity carried in the request to the membership
// table. The request's identity, not our own.
func (p *Peer) handleJoin(req wire.Request) wire.Response {
	if req.Peer == nil {
		return wire.ErrResponse(req.MsgID, "join request carries no peer")
	}
	id, err := identityFromWire(*req.Peer)
	if err != nil {
		return wire.ErrResponse(req.MsgID, err.Error())
	}
	if id.Equal(p.identity) {
		return wire.ErrResponse(req.MsgID, "peer cannot join itself")
	}
	if !p.store.Add(id) {
		if _, known := p.store.Contains(id); known {
			return wire.ErrResponse(req.MsgID, "peer already joined")
		}
		return wire.ErrResponse(req.MsgID, "peer table full")
	}
	p.metrics.PeerstoreSize.Set(float64(p.store.Size()))
	p.log.Info("peer joined", zap.String("peer", id.Socket()))
	return wire.TextResponse(req.MsgID, "join success")
}

// handleLeave removes the identity carried in the request. Removal is
// idempotent: leaving twice is still MsgOK.
func (p *Peer) handleLeave(req wire.Request) wire.Response {
	if req.Peer == nil {
		return wire.ErrResponse(req.MsgID, "leave request carries no peer")
	}
	id, err := identityFromWire(*req.Peer)
	if err != nil {
		return wire.ErrResponse(req.MsgID, err.Error())
	}
	p.store.Remove(id)
	p.metrics.PeerstoreSize.Set(float64(p.store.Size()))
	return wire.Response{Type: wire.MsgOK, MsgID: req.MsgID}
}

func (p *Peer) handleNotImplemented(req wire.Request) wire.Response {
	return wire.ErrResponse(req.MsgID, "not implemented")
}

// SendPing pings one peer: resolve the destination, dial, write the
// request, read the response until the remote closes, expect a pong.
func (p *Peer) SendPing(to Identity) error {
	target, err := p.router.Resolve(to, DefaultHops)
	if err != nil {
		return err
	}
	p.metrics.DialsTotal.Inc()
	conn, err := p.transport.SendRequest(target, wire.NewRequest(wire.MsgPing))
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := p.transport.ReadResponse(conn)
	if err != nil {
		return err
	}
	if res.Type != wire.MsgPong {
		return fmt.Errorf("unexpected response to ping: %q", res.Type)
	}
	p.log.Debug("got pong", zap.String("peer", target.Socket()))
	return nil
}

// SendPings pings every peer in a snapshot of the membership table, one
// blocking exchange at a time. Per-peer failures are collected and do not
// stop the pass.
func (p *Peer) SendPings() error {
	var errs error
	for _, id := range p.store.Snapshot() {
		if err := p.SendPing(id); err != nil {
			p.log.Warn("ping failed", zap.String("peer", id.Socket()), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Close shuts the listener down and waits for in-flight workers to finish.
func (p *Peer) Close() error {
	p.closed.Store(true)
	var err error
	if p.listener != nil {
		err = p.listener.Close()
	}
	p.wg.Wait()
	return err
}
