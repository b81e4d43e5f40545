package dtls

import (
	dtlscrypto "github.com/segmentnet/dtlsclient/internal/crypto"
	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

// ecdheKeyExchange implements ECDHE_ECDSA: the client generates an
// ephemeral key pair on the server-chosen named curve, and the
// premaster secret is the raw X-coordinate of the shared point.
type ecdheKeyExchange struct {
	keypair         *dtlscrypto.Keypair
	remotePublicKey []byte
}

func newECDHEKeyExchange(c *ClientHandshake) (*ecdheKeyExchange, error) {
	if c.serverNamedCurve == 0 {
		return nil, newHandshakeError(alert.HandshakeFailure, errUnsupportedNamedCurve)
	}
	kp, err := dtlscrypto.GenerateKeypair(c.serverNamedCurve)
	if err != nil {
		return nil, newHandshakeError(alert.HandshakeFailure, err)
	}

	return &ecdheKeyExchange{keypair: kp, remotePublicKey: c.serverECDHPublicKey}, nil
}

// ClientKeyExchange implements KeyExchange.
func (e *ecdheKeyExchange) ClientKeyExchange() (*handshake.ClientKeyExchange, error) {
	return &handshake.ClientKeyExchange{PublicKey: e.keypair.PublicKey}, nil
}

// PremasterSecret implements KeyExchange.
func (e *ecdheKeyExchange) PremasterSecret() ([]byte, error) {
	return dtlscrypto.SharedSecret(e.keypair, e.remotePublicKey)
}
