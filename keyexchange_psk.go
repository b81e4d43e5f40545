package dtls

import (
	"encoding/binary"

	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

// pskKeyExchange implements RFC 4279 §2's PSK key exchange: the client
// sends only its identity, and both sides derive the same premaster
// secret from the shared key without ever putting it on the wire.
type pskKeyExchange struct {
	identity string
	key      []byte
}

func newPSKKeyExchange(c *ClientHandshake) (*pskKeyExchange, error) {
	if c.cfg.PSKStore == nil {
		return nil, newHandshakeError(alert.HandshakeFailure, errMissingPSKIdentity)
	}
	identity, ok := c.cfg.PSKStore.GetIdentity(c.peerAddr)
	if !ok {
		return nil, newHandshakeError(alert.HandshakeFailure, errMissingPSKIdentity)
	}
	key, ok := c.cfg.PSKStore.GetKey(identity)
	if !ok {
		return nil, newHandshakeError(alert.HandshakeFailure, errMissingPSKKey)
	}

	return &pskKeyExchange{identity: identity, key: key}, nil
}

// ClientKeyExchange implements KeyExchange.
func (p *pskKeyExchange) ClientKeyExchange() (*handshake.ClientKeyExchange, error) {
	return &handshake.ClientKeyExchange{IdentityHint: []byte(p.identity)}, nil
}

// PremasterSecret implements KeyExchange. Per RFC 4279 §2:
// uint16(len(Z)) || Z || uint16(len(psk)) || psk, where Z is an
// all-zero buffer the same length as the key.
func (p *pskKeyExchange) PremasterSecret() ([]byte, error) {
	n := len(p.key)
	out := make([]byte, 2+n+2+n)
	binary.BigEndian.PutUint16(out, uint16(n))
	// out[2:2+n] is already zero.
	binary.BigEndian.PutUint16(out[2+n:], uint16(n))
	copy(out[2+n+2:], p.key)

	return out, nil
}
