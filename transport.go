package harbor

import (
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/mattnappo/harbor/wire"
)

// Transport dials peers and moves wire messages over one-shot connections.
// Framing is implicit: every connection carries exactly one request in and
// one response out, so one write is one logical message and the response is
// read until the remote closes. Multiple messages per connection would need
// explicit length-prefixed framing first.
type Transport struct {
	dialTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxTransfer  int
	log          *zap.Logger
}

// NewTransport builds a transport with the config's timeouts. Deadlines are
// applied on every dial, read and write so one unresponsive peer cannot
// hold a worker forever.
func NewTransport(cfg Config, log *zap.Logger) *Transport {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{
		dialTimeout:  cfg.DialTimeout,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		maxTransfer:  cfg.MaxTransferSize,
		log:          log,
	}
}

// SendRequest dials a fresh connection to the peer, writes the encoded
// request in a single write, and hands the open connection back to the
// caller for reading the eventual response. The caller owns the connection.
func (t *Transport) SendRequest(to Identity, req wire.Request) (net.Conn, error) {
	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, &NetError{Op: "encode", Err: err}
	}
	if len(data) > t.maxTransfer {
		return nil, &NetError{Op: "encode",
			Err: fmt.Errorf("request of %d bytes exceeds the %d byte transfer cap", len(data), t.maxTransfer)}
	}
	conn, err := net.DialTimeout("tcp", to.Socket(), t.dialTimeout)
	if err != nil {
		return nil, &NetError{Op: "dial", Err: err}
	}
	t.log.Debug("dialed peer",
		zap.String("peer", to.Socket()),
		zap.String("type", req.Type),
		zap.String("msg_id", req.MsgID))

	_ = conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	if _, err := conn.Write(data); err != nil {
		conn.Close()
		return nil, &NetError{Op: "write", Err: err}
	}
	return conn, nil
}

// SendResponse writes the single encoded response on an already-accepted
// connection and returns the number of bytes written.
func (t *Transport) SendResponse(conn net.Conn, res wire.Response) (int, error) {
	data, err := wire.EncodeResponse(res)
	if err != nil {
		return 0, &NetError{Op: "encode", Err: err}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	n, err := conn.Write(data)
	if err != nil {
		return n, &NetError{Op: "write", Err: err}
	}
	return n, nil
}

// ReadResponse reads a response off the connection until the remote closes
// it, then decodes. Used by the requesting side of an exchange.
func (t *Transport) ReadResponse(conn net.Conn) (wire.Response, error) {
	_ = conn.SetReadDeadline(time.Now().Add(t.readTimeout))
	data, err := io.ReadAll(conn)
	if err != nil {
		return wire.Response{}, &NetError{Op: "read", Err: err}
	}
	res, err := wire.DecodeResponse(data)
	if err != nil {
		return wire.Response{}, &NetError{Op: "decode", Err: err}
	}
	return res, nil
}
