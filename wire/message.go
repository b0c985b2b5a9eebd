// Package wire defines the request/response variants exchanged between
// nodes and their on-wire encoding.
package wire

import "github.com/google/uuid"

// Request types understood by a harbor node. The set is closed: decoding a
// request with any other tag is an error.
const (
	MsgPing       = "PING"
	MsgIdentity   = "IDENTITY"
	MsgList       = "LIST"
	MsgPeerStore  = "PEER_STORE"
	MsgJoin       = "JOIN"
	MsgLeave      = "LEAVE"
	MsgQueryKey   = "QUERY_KEY"
	MsgRespondKey = "RESPOND_KEY"
	MsgGet        = "GET"
	MsgSyncPeers  = "SYNC_PEERS"
)

// Response types.
const (
	MsgPong          = "PONG"
	MsgIdentityResp  = "IDENTITY_RESP"
	MsgListResp      = "LIST_RESP"
	MsgPeerStoreResp = "PEER_STORE_RESP"
	MsgText          = "MSG"
	MsgOK            = "OK"
	MsgErr           = "ERR"
)

// Peer is the on-wire form of a peer identity. It deliberately carries the
// ip and port next to the derived id; the receiver recomputes the id from
// the endpoint and rejects a mismatch.
type Peer struct {
	ID   string `json:"id"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Request is a single inbound message. Exactly one request travels on each
// connection. Fields beyond Type are only set for the types that use them.
type Request struct {
	Type  string `json:"type"`
	MsgID string `json:"msg_id"`

	// JOIN and LEAVE carry the peer the operation applies to.
	Peer *Peer `json:"peer,omitempty"`

	// QUERY_KEY, GET and RESPOND_KEY carry a content key. Reserved for the
	// content-routing layer; the membership core answers them with MsgErr.
	Key       string `json:"key,omitempty"`
	HoldingID string `json:"holding_id,omitempty"`

	// TTS is the remaining time-to-spread for recursive queries.
	TTS uint16 `json:"tts,omitempty"`
}

// Response is the single reply written back on the request's connection.
type Response struct {
	Type  string `json:"type"`
	MsgID string `json:"msg_id,omitempty"` // echoes the request's MsgID

	Peer  *Peer    `json:"peer,omitempty"`
	Peers []Peer   `json:"peers,omitempty"`
	Keys  []string `json:"keys,omitempty"`
	Msg   string   `json:"msg,omitempty"`
	Err   string   `json:"err,omitempty"`
}

// NewRequest builds a request of the given type with a fresh message id.
func NewRequest(msgType string) Request {
	return Request{Type: msgType, MsgID: uuid.NewString()}
}

// ErrResponse builds the error reply for a request.
func ErrResponse(msgID, reason string) Response {
	return Response{Type: MsgErr, MsgID: msgID, Err: reason}
}

// TextResponse builds a plain message reply.
func TextResponse(msgID, text string) Response {
	return Response{Type: MsgText, MsgID: msgID, Msg: text}
}
