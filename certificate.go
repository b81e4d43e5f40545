package dtls

import (
	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

// verifyServerCertificate handles the Certificate transition: for
// RPK it treats the single chain entry as a raw SubjectPublicKeyInfo
// (RFC 7250) and accepts it outright — the driver has no independent
// policy for which raw keys to trust beyond what the caller configured
// via the certificate-type extensions; for X.509 it defers to the
// configured trust store and records the verified leaf.
func (c *ClientHandshake) verifyServerCertificate(cert *handshake.Certificate) error {
	if len(cert.CertificateChain) == 0 {
		return newHandshakeError(alert.BadCertificate, errCertificateRejected)
	}

	if c.session.ReceiveRawPublicKey {
		c.session.PeerRawPublicKey = append([]byte{}, cert.CertificateChain[0]...)

		return nil
	}

	if c.cfg.TrustStore == nil {
		return newHandshakeError(alert.BadCertificate, errCertificateRejected)
	}

	leaf, err := c.cfg.TrustStore.Verify(cert.CertificateChain)
	if err != nil {
		return newHandshakeError(alert.BadCertificate, err)
	}
	c.session.PeerCertificate = leaf

	return nil
}
