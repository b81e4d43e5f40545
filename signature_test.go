package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

func TestSignAndVerifyServerKeySignature_ECDSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	message := serverKeyExchangeSignatureInput(
		make([]byte, 32), make([]byte, 32), handshake.NamedCurveP256, []byte{0x04, 0x01, 0x02},
	)

	sig, err := signCertificateVerify(key, handshake.HashAlgorithmSHA256, message)
	require.NoError(t, err)

	err = verifyServerKeySignature(&key.PublicKey, message, sig, handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmECDSA)
	assert.NoError(t, err)

	err = verifyServerKeySignature(&key.PublicKey, append(message, 0x00), sig, handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmECDSA)
	assert.Error(t, err)
}

func TestSignAndVerifyServerKeySignature_Ed25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte("arbitrary transcript bytes to sign")

	sig, err := signCertificateVerify(priv, handshake.HashAlgorithmSHA256, message)
	require.NoError(t, err)

	err = verifyServerKeySignature(pub, message, sig, handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmEd25519)
	assert.NoError(t, err)

	err = verifyServerKeySignature(pub, message, sig, handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmEd25519)
	assert.NoError(t, err) // deterministic signature, re-verification must still pass

	badSig := append([]byte{}, sig...)
	badSig[0] ^= 0xff
	err = verifyServerKeySignature(pub, message, badSig, handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmEd25519)
	assert.Error(t, err)
}

func TestSelectSignatureAlgorithm_PrefersMatchingKeyType(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	offered := []handshake.SignatureHashAlgorithm{
		{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmRSA},
		{Hash: handshake.HashAlgorithmSHA384, Signature: handshake.SignatureAlgorithmECDSA},
	}

	hashAlg, sigAlg, err := selectSignatureAlgorithm(offered, key)
	require.NoError(t, err)
	assert.Equal(t, handshake.HashAlgorithmSHA384, hashAlg)
	assert.Equal(t, handshake.SignatureAlgorithmECDSA, sigAlg)
}

func TestSelectSignatureAlgorithm_NoIntersectionFails(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	offered := []handshake.SignatureHashAlgorithm{
		{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmRSA},
	}

	_, _, err = selectSignatureAlgorithm(offered, key)
	assert.ErrorIs(t, err, errNoSharedSignatureAlg)
}
