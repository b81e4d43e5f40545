package dtls

import (
	"crypto"
	"crypto/x509"

	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

// onHelloVerifyRequest re-sends the stored ClientHello with the
// server-supplied cookie attached. Valid only as the very first message
// of the handshake; the original cookieless ClientHello and this
// HelloVerifyRequest are both excluded from the transcript, per RFC
// 6347 S4.2.1 — only the cookie-bearing ClientHello that follows counts.
func (c *ClientHandshake) onHelloVerifyRequest(msg *handshake.HelloVerifyRequest) (*Flight, error) {
	if c.state != handshake.TypeClientHello || c.helloVerifyReceived {
		return nil, newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	c.helloVerifyReceived = true
	c.clientHello.Cookie = append([]byte{}, msg.Cookie...)

	raw, err := marshalHandshake(c.nextSeq(), c.clientHello)
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	c.clientHelloRaw = raw

	return &Flight{Records: []Record{handshakeRecord(raw)}, RetransmitNeeded: true}, nil
}

// onServerHello records the negotiated parameters. The ClientHello that
// led here is appended to the transcript at this point — not at Start —
// since only now do we know it was the one the server actually acted on.
func (c *ClientHandshake) onServerHello(seq uint16, rawBody []byte, msg *handshake.ServerHello) error {
	if c.state != handshake.TypeClientHello {
		return newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	if !c.clientHelloAppended {
		c.transcript.Append(c.clientHelloRaw)
		c.clientHelloAppended = true
	}
	c.appendInbound(handshake.TypeServerHello, seq, rawBody)

	desc := cipherSuiteForID(CipherSuiteID(msg.CipherSuite))
	if desc == nil {
		return newHandshakeError(alert.HandshakeFailure, errUnsupportedCipherSuite)
	}

	serverRandomRaw, err := msg.Random.Marshal()
	if err != nil {
		return newHandshakeError(alert.InternalError, err)
	}

	c.session.ProtocolVersionMajor = msg.Version.Major
	c.session.ProtocolVersionMinor = msg.Version.Minor
	c.session.CipherSuite = desc.id
	c.session.CompressionMethod = msg.CompressionMethod
	c.keyExchangeAlgo = desc.keyExchange
	c.prfHash = desc.prfHash
	c.serverRandomRaw = serverRandomRaw

	for _, ext := range msg.Extensions {
		ct, ok := ext.(*handshake.CertificateTypeExtension)
		if !ok || len(ct.Types) == 0 {
			continue
		}
		switch ct.TypeValue() {
		case handshake.ExtensionServerCertificateType:
			c.session.ReceiveRawPublicKey = ct.Types[0] == handshake.CertificateTypeRawPublicKey
		case handshake.ExtensionClientCertificateType:
			c.session.SendRawPublicKey = ct.Types[0] == handshake.CertificateTypeRawPublicKey
		}
	}

	c.state = handshake.TypeServerHello

	return nil
}

// onCertificate delegates to verifyServerCertificate (certificate.go).
func (c *ClientHandshake) onCertificate(seq uint16, rawBody []byte, msg *handshake.Certificate) error {
	if c.state != handshake.TypeServerHello {
		return newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	c.appendInbound(handshake.TypeCertificate, seq, rawBody)

	if err := c.verifyServerCertificate(msg); err != nil {
		return err
	}
	c.state = handshake.TypeCertificate

	return nil
}

// onServerKeyExchange verifies the ECDHE signature (when present) and
// records the server's ephemeral public key and named curve; a PSK
// ServerKeyExchange carries only an identity hint this driver does not
// act on, since identity/key resolution goes through the configured
// PSK store instead (keyexchange_psk.go).
func (c *ClientHandshake) onServerKeyExchange(seq uint16, rawBody []byte, msg *handshake.ServerKeyExchange) error {
	switch c.state {
	case handshake.TypeServerHello, handshake.TypeCertificate:
	default:
		return newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	if c.keyExchangeAlgo != KeyExchangeECDHE && c.keyExchangeAlgo != KeyExchangePSK {
		return newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	c.appendInbound(handshake.TypeServerKeyExchange, seq, rawBody)

	if msg.IsPSK {
		c.state = handshake.TypeServerKeyExchange

		return nil
	}

	if msg.NamedCurve != handshake.NamedCurveX25519 && msg.NamedCurve != handshake.NamedCurveP256 {
		return newHandshakeError(alert.HandshakeFailure, errUnsupportedNamedCurve)
	}
	c.serverNamedCurve = msg.NamedCurve
	c.serverECDHPublicKey = append([]byte{}, msg.PublicKey...)

	pub, err := c.peerPublicKey()
	if err != nil {
		return err
	}

	message := serverKeyExchangeSignatureInput(c.clientRandomRaw, c.serverRandomRaw, msg.NamedCurve, msg.PublicKey)
	if err := verifyServerKeySignature(pub, message, msg.Signature, msg.HashAlgorithm, msg.SignatureAlgorithm); err != nil {
		return newHandshakeError(alert.DecryptError, errKeySignatureMismatch)
	}

	c.state = handshake.TypeServerKeyExchange

	return nil
}

// peerPublicKey returns the key verifyServerKeySignature checks the
// ServerKeyExchange signature against: the parsed raw SubjectPublicKeyInfo
// under RPK, or the verified leaf certificate's key under X.509.
func (c *ClientHandshake) peerPublicKey() (crypto.PublicKey, error) {
	if c.session.ReceiveRawPublicKey {
		if c.session.PeerRawPublicKey == nil {
			return nil, newHandshakeError(alert.HandshakeFailure, errCertificateRejected)
		}
		pub, err := x509.ParsePKIXPublicKey(c.session.PeerRawPublicKey)
		if err != nil {
			return nil, newHandshakeError(alert.DecodeError, err)
		}

		return pub, nil
	}
	if c.session.PeerCertificate == nil {
		return nil, newHandshakeError(alert.HandshakeFailure, errCertificateRejected)
	}

	return c.session.PeerCertificate.PublicKey, nil
}

func (c *ClientHandshake) onCertificateRequest(seq uint16, rawBody []byte, msg *handshake.CertificateRequest) error {
	switch c.state {
	case handshake.TypeServerHello, handshake.TypeCertificate, handshake.TypeServerKeyExchange:
	default:
		return newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	c.appendInbound(handshake.TypeCertificateRequest, seq, rawBody)
	c.certificateRequest = msg
	c.state = handshake.TypeCertificateRequest

	return nil
}

// onFinished verifies the server's Finished against the transcript hash
// stored when the client's own Finished was emitted, and activates the
// session on success, emitting any application data queued via
// QueueApplicationData as the final, non-retransmitted flight.
func (c *ClientHandshake) onFinished(seq uint16, rawBody []byte, msg *handshake.Finished) (*Flight, error) {
	if c.state != handshake.TypeServerHelloDone {
		return nil, newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}

	want := c.expectServerVerifyData(c.serverFinishedTranscript)
	if !checkVerifyData(msg.VerifyData, want) {
		return nil, newHandshakeError(alert.DecryptError, errVerifyDataMismatch)
	}
	c.appendInbound(handshake.TypeFinished, seq, rawBody)

	c.session.Active = true
	c.state = handshake.TypeFinished

	var records []Record
	if c.queuedAppData != nil {
		records = append(records, applicationDataRecord(c.queuedAppData))
		c.queuedAppData = nil
	}

	return &Flight{Records: records, RetransmitNeeded: false}, nil
}
