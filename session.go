package dtls

import (
	"crypto/x509"

	"github.com/pion/transport/v3/replaydetector"
)

const replayWindowSize = 64

// Session is the negotiated DTLS state that outlives one handshake: it
// is created before the handshake starts, mutated exclusively by the
// driver while the handshake is in progress, and handed to the record
// layer for read/write of cipher state once Active becomes true. The
// driver relinquishes ownership at that point.
//
// Grounded on state.go's State, trimmed to what a client handshake
// driver actually owns: bulk-cipher init/encrypt/decrypt belongs to the
// record layer, and binary (de)serialization for session resumption is
// out of scope (resumption is a named non-goal).
type Session struct {
	ProtocolVersionMajor byte
	ProtocolVersionMinor byte
	SessionID            []byte
	CipherSuite          CipherSuiteID
	CompressionMethod    byte

	ReadEpoch  uint16
	WriteEpoch uint16

	MasterSecret []byte

	// Derived key material (RFC 5246 S6.3), handed to the record layer
	// once Active: neither cipher suite this driver negotiates uses a
	// MAC key, since both are AEAD (AES-128-CCM-8).
	ClientWriteKey []byte
	ServerWriteKey []byte
	ClientWriteIV  []byte
	ServerWriteIV  []byte

	PeerCertificate *x509.Certificate
	PeerRawPublicKey []byte

	SendRawPublicKey    bool
	ReceiveRawPublicKey bool

	Active bool

	replayDetector replaydetector.ReplayDetector
}

// NewSession returns a freshly zeroed Session, ready to be driven through
// one handshake.
func NewSession() *Session {
	return &Session{
		replayDetector: replaydetector.New(replayWindowSize, 1<<48-1),
	}
}

// CheckReplay reports whether seq is a fresh sequence number for the
// current read epoch, and returns the accept callback to call once the
// record has been fully processed. Only meaningful after Active.
func (s *Session) CheckReplay(seq uint64) (accept func() bool, ok bool) {
	return s.replayDetector.Check(seq)
}
