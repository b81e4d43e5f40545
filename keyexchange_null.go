package dtls

import "github.com/segmentnet/dtlsclient/internal/protocol/handshake"

// nullKeyExchange implements the anonymous NULL key-exchange strategy:
// an empty ClientKeyExchange payload and an empty premaster secret.
type nullKeyExchange struct{}

// ClientKeyExchange implements KeyExchange.
func (nullKeyExchange) ClientKeyExchange() (*handshake.ClientKeyExchange, error) {
	return &handshake.ClientKeyExchange{}, nil
}

// PremasterSecret implements KeyExchange.
func (nullKeyExchange) PremasterSecret() ([]byte, error) {
	return []byte{}, nil
}
