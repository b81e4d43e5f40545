package dtls

import (
	"crypto/x509"

	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
	"github.com/segmentnet/dtlsclient/internal/protocol/recordlayer"
)

// onServerHelloDone assembles and returns the client's response flight:
// optional Certificate, ClientKeyExchange, optional CertificateVerify,
// ChangeCipherSpec, Finished. Grounded on clientFlightHandler's flight5
// case, restructured around the KeyExchange strategy interface instead
// of a single hard-coded ECDHE path.
func (c *ClientHandshake) onServerHelloDone(seq uint16, rawBody []byte) (*Flight, error) {
	switch c.state {
	case handshake.TypeServerHello, handshake.TypeCertificate, handshake.TypeServerKeyExchange, handshake.TypeCertificateRequest:
	default:
		return nil, newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
	c.appendInbound(handshake.TypeServerHelloDone, seq, rawBody)
	c.state = handshake.TypeServerHelloDone

	var records []Record

	if c.certificateRequest != nil {
		raw, err := c.buildClientCertificate()
		if err != nil {
			return nil, err
		}
		records = append(records, handshakeRecord(raw))
	}

	ke, err := newKeyExchange(c.keyExchangeAlgo, c)
	if err != nil {
		return nil, err
	}
	c.keyExchange = ke

	cke, err := ke.ClientKeyExchange()
	if err != nil {
		return nil, newHandshakeError(alert.HandshakeFailure, err)
	}
	ckeRaw, err := marshalHandshake(c.nextSeq(), cke)
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	c.transcript.Append(ckeRaw)
	records = append(records, handshakeRecord(ckeRaw))

	premaster, err := ke.PremasterSecret()
	if err != nil {
		return nil, newHandshakeError(alert.HandshakeFailure, err)
	}
	c.session.MasterSecret = masterSecret(c.prfHash, premaster, c.clientRandomRaw, c.serverRandomRaw)
	c.deriveKeyMaterial()

	if c.certificateRequest != nil {
		cvRaw, err := c.buildCertificateVerify()
		if err != nil {
			return nil, err
		}
		records = append(records, handshakeRecord(cvRaw))
	}

	ccsRaw, err := (recordlayer.ChangeCipherSpec{}).Marshal()
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	records = append(records, changeCipherSpecRecord(ccsRaw))
	c.session.WriteEpoch++

	finishedRaw, err := c.buildFinished()
	if err != nil {
		return nil, err
	}
	records = append(records, handshakeRecord(finishedRaw))

	return &Flight{Records: records, RetransmitNeeded: true}, nil
}

// deriveKeyMaterial expands the master secret into the per-direction write
// keys and IVs the record layer needs, per the negotiated suite's key/IV
// lengths (RFC 5246 S6.3). Neither suite this driver negotiates uses a MAC
// key, since both are AEAD (AES-128-CCM-8), so the key block carries only
// the four write secrets, in that order.
func (c *ClientHandshake) deriveKeyMaterial() {
	desc := cipherSuiteForID(c.session.CipherSuite)
	if desc == nil {
		return
	}

	total := 2*desc.writeKeyLen + 2*desc.writeIVLen
	block := keyBlock(c.prfHash, c.session.MasterSecret, c.clientRandomRaw, c.serverRandomRaw, total)

	offset := 0
	c.session.ClientWriteKey = block[offset : offset+desc.writeKeyLen]
	offset += desc.writeKeyLen
	c.session.ServerWriteKey = block[offset : offset+desc.writeKeyLen]
	offset += desc.writeKeyLen
	c.session.ClientWriteIV = block[offset : offset+desc.writeIVLen]
	offset += desc.writeIVLen
	c.session.ServerWriteIV = block[offset : offset+desc.writeIVLen]
}

// buildClientCertificate sends the RPK-encoded public key when the
// negotiated session uses raw public keys, otherwise the configured
// X.509 chain.
func (c *ClientHandshake) buildClientCertificate() ([]byte, error) {
	cert := &handshake.Certificate{}
	switch {
	case c.session.SendRawPublicKey:
		if c.cfg.PrivateKey == nil {
			return nil, newHandshakeError(alert.HandshakeFailure, errCertificateRejected)
		}
		spki, err := x509.MarshalPKIXPublicKey(c.cfg.PrivateKey.Public())
		if err != nil {
			return nil, newHandshakeError(alert.InternalError, err)
		}
		cert.CertificateChain = [][]byte{spki}
	default:
		cert.CertificateChain = c.cfg.Certificates
	}

	raw, err := marshalHandshake(c.nextSeq(), cert)
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	c.transcript.Append(raw)

	return raw, nil
}

// buildCertificateVerify signs the transcript seen so far — ClientHello
// through the just-appended ClientKeyExchange and Certificate, with the
// HelloVerifyRequest round and anything the server never sent truly
// omitted — under the first signature-and-hash algorithm the server
// offered that this driver's configured signer can honor.
func (c *ClientHandshake) buildCertificateVerify() ([]byte, error) {
	if c.cfg.PrivateKey == nil {
		return nil, newHandshakeError(alert.HandshakeFailure, errNoSharedSignatureAlg)
	}

	hashAlg, sigAlg, err := selectSignatureAlgorithm(c.certificateRequest.SignatureHashAlgorithms, c.cfg.PrivateKey)
	if err != nil {
		return nil, newHandshakeError(alert.HandshakeFailure, err)
	}

	sig, err := signCertificateVerify(c.cfg.PrivateKey, hashAlg, c.transcript.Bytes())
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}

	cv := &handshake.CertificateVerify{HashAlgorithm: hashAlg, SignatureAlgorithm: sigAlg, Signature: sig}
	raw, err := marshalHandshake(c.nextSeq(), cv)
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	c.transcript.Append(raw)

	return raw, nil
}

// buildFinished computes the client's verify_data over the transcript up
// to (not including) this Finished, then stores the extended transcript
// the server's own Finished will be checked against.
func (c *ClientHandshake) buildFinished() ([]byte, error) {
	verifyData := c.clientVerifyData()
	finished := &handshake.Finished{VerifyData: verifyData}

	raw, err := marshalHandshake(c.nextSeq(), finished)
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}

	c.serverFinishedTranscript = append(append([]byte{}, c.transcript.Bytes()...), raw...)
	c.transcript.Append(raw)

	return raw, nil
}
