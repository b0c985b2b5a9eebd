// Package harbor implements a single peer-to-peer network node: it derives
// an endpoint-based identity, seeds a bounded membership table from a
// bootstrap list, and serves a one-shot request/response protocol over TCP.
//
// Each accepted connection carries exactly one request and one response,
// then closes; there is no multiplexing, keep-alive, or length framing. The
// accept loop fans out one worker goroutine per connection, and the only
// state shared between workers is the Store, guarded by a single lock whose
// critical sections never include I/O.
//
// Content storage, multi-hop routing, peer liveness, and cryptographic
// identities are reserved for future layers; the wire protocol already
// names their request types and answers them with errors.
package harbor
