package dtls

import (
	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

// KeyExchange turns a negotiated algorithm into a premaster secret and
// the ClientKeyExchange payload that carries the client's half of it.
// ECDHE_ECDSA, PSK, and NULL share this interface so flight assembly
// can dispatch on the negotiated algorithm without knowing the
// concrete strategy.
type KeyExchange interface {
	// ClientKeyExchange returns the message to send.
	ClientKeyExchange() (*handshake.ClientKeyExchange, error)
	// PremasterSecret returns the premaster secret derived once the
	// ClientKeyExchange payload is known.
	PremasterSecret() ([]byte, error)
}

func newKeyExchange(algo KeyExchangeAlgorithm, c *ClientHandshake) (KeyExchange, error) {
	switch algo {
	case KeyExchangeECDHE:
		return newECDHEKeyExchange(c)
	case KeyExchangePSK:
		return newPSKKeyExchange(c)
	case KeyExchangeNull:
		return &nullKeyExchange{}, nil
	default:
		return nil, newHandshakeError(alert.HandshakeFailure, errUnsupportedCipherSuite)
	}
}
