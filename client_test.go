package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dtlscrypto "github.com/segmentnet/dtlsclient/internal/crypto"
	"github.com/segmentnet/dtlsclient/internal/crypto/psk"
	"github.com/segmentnet/dtlsclient/internal/crypto/trust"
	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
	"github.com/segmentnet/dtlsclient/internal/protocol/recordlayer"
)

func pskTestConfig(t *testing.T, peer net.Addr) *HandshakeConfig {
	t.Helper()

	store := psk.NewMapStore()
	store.SetIdentity(peer, "ID")
	store.SetKey("ID", []byte("KEY"))

	cfg, err := NewConfigBuilder("peer:4444").WithPSKStore(store).Build()
	require.NoError(t, err)

	return cfg
}

// inboundHandshake wraps one handshake message as a single-fragment
// InboundRecord, the shape the external record layer hands the driver
// when a message fits in one record.
func inboundHandshake(t *testing.T, seq uint16, msg handshake.Message) InboundRecord {
	t.Helper()
	raw, err := marshalHandshake(seq, msg)
	require.NoError(t, err)

	return InboundRecord{ContentType: ContentTypeHandshake, Fragment: raw}
}

// decodeOutboundHandshake extracts the message type of an outbound
// handshake record's payload, given it was produced by marshalHandshake
// (header length equal to the body length, never fragmented).
func decodeOutboundHandshake(t *testing.T, rec Record) (handshake.Type, []byte) {
	t.Helper()
	require.Equal(t, ContentTypeHandshake, rec.ContentType)
	var h handshake.Header
	require.NoError(t, h.Unmarshal(rec.Payload))

	return h.Type, rec.Payload[12:]
}

func TestClientHandshake_Start_ReturnsClientHello(t *testing.T) {
	cfg := pskTestConfig(t, &net.UDPAddr{})
	c := NewClientHandshake(cfg, &net.UDPAddr{})

	flight, err := c.Start()
	require.NoError(t, err)
	require.Len(t, flight.Records, 1)
	assert.True(t, flight.RetransmitNeeded)

	typ, body := decodeOutboundHandshake(t, flight.Records[0])
	assert.Equal(t, handshake.TypeClientHello, typ)

	var ch handshake.ClientHello
	require.NoError(t, ch.Unmarshal(body))
	assert.Empty(t, ch.Cookie)
}

// Scenario 6: HelloVerifyRequest round-trip. The re-sent ClientHello
// carries the server's cookie and an unchanged random, with a correctly
// updated fragment length (the two differ only by the cookie bytes).
func TestClientHandshake_HelloVerifyRequestRoundTrip(t *testing.T) {
	cfg := pskTestConfig(t, &net.UDPAddr{})
	c := NewClientHandshake(cfg, &net.UDPAddr{})

	first, err := c.Start()
	require.NoError(t, err)
	_, firstBody := decodeOutboundHandshake(t, first.Records[0])
	var firstHello handshake.ClientHello
	require.NoError(t, firstHello.Unmarshal(firstBody))
	assert.Empty(t, firstHello.Cookie)

	cookie := []byte{0xa1, 0xb2, 0xc3}
	hvr := &handshake.HelloVerifyRequest{Version: recordlayer.Version1_2, Cookie: cookie}
	second, err := c.OnRecord(inboundHandshake(t, 0, hvr))
	require.NoError(t, err)
	require.Len(t, second.Records, 1)
	assert.True(t, second.RetransmitNeeded)

	typ, secondBody := decodeOutboundHandshake(t, second.Records[0])
	assert.Equal(t, handshake.TypeClientHello, typ)
	assert.Equal(t, len(firstBody)+len(cookie), len(secondBody))

	var secondHeader handshake.Header
	require.NoError(t, secondHeader.Unmarshal(second.Records[0].Payload))
	assert.Equal(t, secondHeader.Length, secondHeader.FragmentLength)
	assert.Equal(t, uint32(len(secondBody)), secondHeader.FragmentLength)

	var secondHello handshake.ClientHello
	require.NoError(t, secondHello.Unmarshal(secondBody))
	assert.Equal(t, cookie, secondHello.Cookie)
	assert.Equal(t, firstHello.Random, secondHello.Random)
	assert.Equal(t, firstHello.CipherSuites, secondHello.CipherSuites)
}

// Scenario 7: a PSK handshake with no Certificate/ServerKeyExchange
// reaches activation once the server's Finished verifies.
func TestClientHandshake_PSKHandshakeToActivation(t *testing.T) {
	peer := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4444}
	cfg := pskTestConfig(t, peer)
	c := NewClientHandshake(cfg, peer)

	_, err := c.Start()
	require.NoError(t, err)

	serverHello := &handshake.ServerHello{
		Version:     recordlayer.Version1_2,
		CipherSuite: uint16(TLS_PSK_WITH_AES_128_CCM_8),
	}
	require.NoError(t, serverHello.Random.Populate())
	flight, err := c.OnRecord(inboundHandshake(t, 0, serverHello))
	require.NoError(t, err)
	assert.Nil(t, flight)
	assert.Equal(t, handshake.TypeServerHello, c.state)

	flight, err = c.OnRecord(inboundHandshake(t, 1, &handshake.ServerHelloDone{}))
	require.NoError(t, err)
	require.NotNil(t, flight)
	require.Len(t, flight.Records, 3)
	assert.True(t, flight.RetransmitNeeded)

	typ, ckeBody := decodeOutboundHandshake(t, flight.Records[0])
	assert.Equal(t, handshake.TypeClientKeyExchange, typ)
	// ClientKeyExchange for PSK is a 2-byte length-prefixed identity
	// (RFC 4279 S2); compare the raw wire bytes directly, which pins the
	// exact encoding rather than only the decoded identity.
	assert.Equal(t, []byte{0x00, 0x02, 'I', 'D'}, ckeBody)

	assert.Equal(t, ContentTypeChangeCipherSpec, flight.Records[1].ContentType)

	typ, _ = decodeOutboundHandshake(t, flight.Records[2])
	assert.Equal(t, handshake.TypeFinished, typ)
	assert.Equal(t, uint16(1), c.session.WriteEpoch)
	assert.NotEmpty(t, c.session.MasterSecret)
	assert.False(t, c.session.Active)

	serverVerifyData := c.expectServerVerifyData(c.serverFinishedTranscript)
	finished := &handshake.Finished{VerifyData: serverVerifyData}
	flight, err = c.OnRecord(inboundHandshake(t, 2, finished))
	require.NoError(t, err)
	assert.NotNil(t, flight)
	assert.False(t, flight.RetransmitNeeded)
	assert.True(t, c.session.Active)
}

// Scenario 8: duplicate ServerHello records (identical message_seq)
// cause exactly one transcript append and one state transition.
func TestClientHandshake_DuplicateServerHelloDeduplicated(t *testing.T) {
	peer := &net.UDPAddr{}
	cfg := pskTestConfig(t, peer)
	c := NewClientHandshake(cfg, peer)

	_, err := c.Start()
	require.NoError(t, err)

	serverHello := &handshake.ServerHello{
		Version:     recordlayer.Version1_2,
		CipherSuite: uint16(TLS_PSK_WITH_AES_128_CCM_8),
	}
	require.NoError(t, serverHello.Random.Populate())

	_, err = c.OnRecord(inboundHandshake(t, 0, serverHello))
	require.NoError(t, err)
	lenAfterFirst := c.transcript.Len()
	stateAfterFirst := c.state

	_, err = c.OnRecord(inboundHandshake(t, 0, serverHello))
	require.NoError(t, err)

	assert.Equal(t, lenAfterFirst, c.transcript.Len())
	assert.Equal(t, stateAfterFirst, c.state)
}

// generateSelfSignedECDSA mirrors trust's own test helper: a self-signed
// P-256 leaf, usable both as the chain entry presented on the wire and as
// the trust anchor that verifies it.
func generateSelfSignedECDSA(t *testing.T) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "server.test.invalid"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	return key, der
}

// Scenario 9: a full ECDHE_ECDSA handshake, including mutual
// authentication (CertificateRequest/CertificateVerify), reaches
// activation once the server's Finished verifies, deriving non-empty
// per-direction key material along the way.
func TestClientHandshake_ECDHEHandshakeToActivation(t *testing.T) {
	serverKey, serverCertDER := generateSelfSignedECDSA(t)
	clientKey, clientCertDER := generateSelfSignedECDSA(t)

	roots := x509.NewCertPool()
	roots.AddCert(mustParseCert(t, serverCertDER))

	cfg, err := NewConfigBuilder("peer:4444").
		WithIdentity(clientKey, [][]byte{clientCertDER}, false).
		WithTrustStore(trust.NewX509Store(roots)).
		Build()
	require.NoError(t, err)
	require.Equal(t, []CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8}, cfg.CipherSuites)

	peer := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4444}
	c := NewClientHandshake(cfg, peer)

	_, err = c.Start()
	require.NoError(t, err)

	serverHello := &handshake.ServerHello{
		Version:     recordlayer.Version1_2,
		CipherSuite: uint16(TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8),
	}
	require.NoError(t, serverHello.Random.Populate())
	flight, err := c.OnRecord(inboundHandshake(t, 0, serverHello))
	require.NoError(t, err)
	assert.Nil(t, flight)

	cert := &handshake.Certificate{CertificateChain: [][]byte{serverCertDER}}
	flight, err = c.OnRecord(inboundHandshake(t, 1, cert))
	require.NoError(t, err)
	assert.Nil(t, flight)
	assert.Equal(t, handshake.TypeCertificate, c.state)

	serverKP, err := dtlscrypto.GenerateKeypair(handshake.NamedCurveX25519)
	require.NoError(t, err)

	sigInput := serverKeyExchangeSignatureInput(c.clientRandomRaw, c.serverRandomRaw, handshake.NamedCurveX25519, serverKP.PublicKey)
	digest := sha256.Sum256(sigInput)
	sig, err := ecdsa.SignASN1(rand.Reader, serverKey, digest[:])
	require.NoError(t, err)

	ske := &handshake.ServerKeyExchange{
		NamedCurve:         handshake.NamedCurveX25519,
		PublicKey:          serverKP.PublicKey,
		HashAlgorithm:      handshake.HashAlgorithmSHA256,
		SignatureAlgorithm: handshake.SignatureAlgorithmECDSA,
		Signature:          sig,
	}
	flight, err = c.OnRecord(inboundHandshake(t, 2, ske))
	require.NoError(t, err)
	assert.Nil(t, flight)
	assert.Equal(t, handshake.TypeServerKeyExchange, c.state)

	certReq := &handshake.CertificateRequest{
		CertificateTypes:        []handshake.ClientCertType{handshake.ClientCertTypeECDSASign},
		SignatureHashAlgorithms: []handshake.SignatureHashAlgorithm{{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmECDSA}},
	}
	flight, err = c.OnRecord(inboundHandshake(t, 3, certReq))
	require.NoError(t, err)
	assert.Nil(t, flight)
	assert.Equal(t, handshake.TypeCertificateRequest, c.state)

	flight, err = c.OnRecord(inboundHandshake(t, 4, &handshake.ServerHelloDone{}))
	require.NoError(t, err)
	require.NotNil(t, flight)
	require.Len(t, flight.Records, 5)
	assert.True(t, flight.RetransmitNeeded)

	typ, _ := decodeOutboundHandshake(t, flight.Records[0])
	assert.Equal(t, handshake.TypeCertificate, typ)

	typ, ckeBody := decodeOutboundHandshake(t, flight.Records[1])
	assert.Equal(t, handshake.TypeClientKeyExchange, typ)
	assert.Equal(t, byte(len(ckeBody)-1), ckeBody[0])

	typ, _ = decodeOutboundHandshake(t, flight.Records[2])
	assert.Equal(t, handshake.TypeCertificateVerify, typ)

	assert.Equal(t, ContentTypeChangeCipherSpec, flight.Records[3].ContentType)

	typ, _ = decodeOutboundHandshake(t, flight.Records[4])
	assert.Equal(t, handshake.TypeFinished, typ)

	assert.Len(t, c.session.ClientWriteKey, aes128CCMKeyLen)
	assert.Len(t, c.session.ServerWriteKey, aes128CCMKeyLen)
	assert.Len(t, c.session.ClientWriteIV, aes128CCMIVLen)
	assert.Len(t, c.session.ServerWriteIV, aes128CCMIVLen)
	assert.NotEqual(t, c.session.ClientWriteKey, c.session.ServerWriteKey)
	assert.False(t, c.session.Active)

	require.NoError(t, c.QueueApplicationData([]byte("hello server")))

	serverVerifyData := c.expectServerVerifyData(c.serverFinishedTranscript)
	finished := &handshake.Finished{VerifyData: serverVerifyData}
	flight, err = c.OnRecord(inboundHandshake(t, 5, finished))
	require.NoError(t, err)
	require.NotNil(t, flight)
	assert.False(t, flight.RetransmitNeeded)
	assert.True(t, c.session.Active)

	require.Len(t, flight.Records, 1)
	assert.Equal(t, ContentTypeApplicationData, flight.Records[0].ContentType)
	assert.Equal(t, []byte("hello server"), flight.Records[0].Payload)

	err = c.QueueApplicationData([]byte("too late"))
	assert.ErrorIs(t, err, errQueueAfterActivation)
}

// Scenario 7 (application data): a PSK handshake with data queued before
// activation emits it as part of the flight that processes the server's
// Finished; a handshake with nothing queued emits no application-data
// record at all.
func TestClientHandshake_PSKHandshakeQueuedApplicationData(t *testing.T) {
	peer := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4444}
	cfg := pskTestConfig(t, peer)
	c := NewClientHandshake(cfg, peer)

	_, err := c.Start()
	require.NoError(t, err)

	serverHello := &handshake.ServerHello{
		Version:     recordlayer.Version1_2,
		CipherSuite: uint16(TLS_PSK_WITH_AES_128_CCM_8),
	}
	require.NoError(t, serverHello.Random.Populate())
	_, err = c.OnRecord(inboundHandshake(t, 0, serverHello))
	require.NoError(t, err)

	_, err = c.OnRecord(inboundHandshake(t, 1, &handshake.ServerHelloDone{}))
	require.NoError(t, err)

	require.NoError(t, c.QueueApplicationData([]byte("ping")))

	serverVerifyData := c.expectServerVerifyData(c.serverFinishedTranscript)
	finished := &handshake.Finished{VerifyData: serverVerifyData}
	flight, err := c.OnRecord(inboundHandshake(t, 2, finished))
	require.NoError(t, err)
	require.Len(t, flight.Records, 1)
	assert.Equal(t, ContentTypeApplicationData, flight.Records[0].ContentType)
	assert.Equal(t, []byte("ping"), flight.Records[0].Payload)
}

func TestClientHandshake_PSKHandshakeNoQueuedApplicationData(t *testing.T) {
	peer := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4444}
	cfg := pskTestConfig(t, peer)
	c := NewClientHandshake(cfg, peer)

	_, err := c.Start()
	require.NoError(t, err)

	serverHello := &handshake.ServerHello{
		Version:     recordlayer.Version1_2,
		CipherSuite: uint16(TLS_PSK_WITH_AES_128_CCM_8),
	}
	require.NoError(t, serverHello.Random.Populate())
	_, err = c.OnRecord(inboundHandshake(t, 0, serverHello))
	require.NoError(t, err)

	_, err = c.OnRecord(inboundHandshake(t, 1, &handshake.ServerHelloDone{}))
	require.NoError(t, err)

	serverVerifyData := c.expectServerVerifyData(c.serverFinishedTranscript)
	finished := &handshake.Finished{VerifyData: serverVerifyData}
	flight, err := c.OnRecord(inboundHandshake(t, 2, finished))
	require.NoError(t, err)
	assert.Empty(t, flight.Records)
}

// Warning-level close_notify closes the handshake without error; any
// other warning-level alert is logged and leaves the handshake open.
func TestClientHandshake_OnRecord_WarningAlertHandling(t *testing.T) {
	peer := &net.UDPAddr{}
	cfg := pskTestConfig(t, peer)

	closeNotifyRaw, err := (&alert.Alert{Level: alert.Warning, Description: alert.CloseNotify}).Marshal()
	require.NoError(t, err)
	c := NewClientHandshake(cfg, peer)
	_, err = c.Start()
	require.NoError(t, err)
	flight, err := c.OnRecord(InboundRecord{ContentType: ContentTypeAlert, Fragment: closeNotifyRaw})
	require.NoError(t, err)
	assert.Nil(t, flight)
	assert.True(t, c.closed)

	otherRaw, err := (&alert.Alert{Level: alert.Warning, Description: alert.UserCanceled}).Marshal()
	require.NoError(t, err)
	c2 := NewClientHandshake(cfg, peer)
	_, err = c2.Start()
	require.NoError(t, err)
	flight, err = c2.OnRecord(InboundRecord{ContentType: ContentTypeAlert, Fragment: otherRaw})
	require.NoError(t, err)
	assert.Nil(t, flight)
	assert.False(t, c2.closed)
}

func mustParseCert(t *testing.T, der []byte) *x509.Certificate {
	t.Helper()
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert
}
