// Package protocol defines the wire format spoken between vinestore clients
// and a vineyard-compatible object-store daemon.
//
// Messages are JSON documents framed with a 4-byte little-endian length
// prefix and exchanged over a Unix domain socket. Every message carries a
// "type" discriminator; the first exchange on a connection is always a
// register/register_reply handshake that pins the protocol version.
//
// Reuse these types when adding new operations so both the client and the
// development daemon stay wire compatible.
package protocol
