package wire

import (
	"encoding/json"
	"fmt"
)

var requestTypes = map[string]bool{
	MsgPing:       true,
	MsgIdentity:   true,
	MsgList:       true,
	MsgPeerStore:  true,
	MsgJoin:       true,
	MsgLeave:      true,
	MsgQueryKey:   true,
	MsgRespondKey: true,
	MsgGet:        true,
	MsgSyncPeers:  true,
}

var responseTypes = map[string]bool{
	MsgPong:          true,
	MsgIdentityResp:  true,
	MsgListResp:      true,
	MsgPeerStoreResp: true,
	MsgText:          true,
	MsgOK:            true,
	MsgErr:           true,
}

// EncodeRequest serializes a request for a single write on a fresh
// connection. There is no length prefix; one write is one message.
func EncodeRequest(req Request) ([]byte, error) {
	if !requestTypes[req.Type] {
		return nil, fmt.Errorf("unknown request type %q", req.Type)
	}
	return json.Marshal(req)
}

// DecodeRequest parses the bytes of a single read into a request.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %v", err)
	}
	if !requestTypes[req.Type] {
		return Request{}, fmt.Errorf("unknown request type %q", req.Type)
	}
	return req, nil
}

// EncodeResponse serializes a response for the single reply write.
func EncodeResponse(res Response) ([]byte, error) {
	if !responseTypes[res.Type] {
		return nil, fmt.Errorf("unknown response type %q", res.Type)
	}
	return json.Marshal(res)
}

// DecodeResponse parses a full response, read until the remote closed the
// connection.
func DecodeResponse(data []byte) (Response, error) {
	var res Response
	if err := json.Unmarshal(data, &res); err != nil {
		return Response{}, fmt.Errorf("decode response: %v", err)
	}
	if !responseTypes[res.Type] {
		return Response{}, fmt.Errorf("unknown response type %q", res.Type)
	}
	return res, nil
}
