package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmentnet/dtlsclient/internal/crypto/psk"
)

func generateTestECDSAIdentity(t *testing.T) (*ecdsa.PrivateKey, [][]byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return key, [][]byte{{0x01, 0x02, 0x03}}
}

func TestConfigBuilder_PSKOnlyDefaultSuites(t *testing.T) {
	store := psk.NewMapStore()
	store.SetIdentity(&net.UDPAddr{}, "ID")
	store.SetKey("ID", []byte("KEY"))

	cfg, err := NewConfigBuilder("example.test:4444").WithPSKStore(store).Build()
	require.NoError(t, err)
	assert.Equal(t, []CipherSuiteID{TLS_PSK_WITH_AES_128_CCM_8}, cfg.CipherSuites)
}

func TestConfigBuilder_ECDHEOnlyDefaultSuites(t *testing.T) {
	key, chain := generateTestECDSAIdentity(t)

	cfg, err := NewConfigBuilder("example.test:4444").WithIdentity(key, chain, false).Build()
	require.NoError(t, err)
	assert.Equal(t, []CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8}, cfg.CipherSuites)
}

func TestConfigBuilder_BothCredentialsDefaultSuites(t *testing.T) {
	key, chain := generateTestECDSAIdentity(t)
	store := psk.NewMapStore()
	store.SetIdentity(&net.UDPAddr{}, "ID")
	store.SetKey("ID", []byte("KEY"))

	cfg, err := NewConfigBuilder("example.test:4444").
		WithIdentity(key, chain, false).
		WithPSKStore(store).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []CipherSuiteID{
		TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8,
		TLS_PSK_WITH_AES_128_CCM_8,
	}, cfg.CipherSuites)
}

func TestConfigBuilder_ExplicitECDHESuiteWithoutIdentityFails(t *testing.T) {
	_, err := NewConfigBuilder("example.test:4444").
		WithCipherSuites(TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8).
		Build()
	assert.True(t, errors.Is(err, ErrNoCipherSuiteSatisfiable))
}

func TestConfigBuilder_EmptyExplicitSuiteListFails(t *testing.T) {
	_, err := NewConfigBuilder("example.test:4444").
		WithCipherSuites().
		Build()
	assert.True(t, errors.Is(err, ErrInvalidArg))
}

// A credentialed builder would otherwise fall through to default
// derivation and silently ignore the explicit empty list; WithCipherSuites
// must be distinguishable from "never called".
func TestConfigBuilder_EmptyExplicitSuiteListFailsEvenWithCredentials(t *testing.T) {
	store := psk.NewMapStore()
	store.SetIdentity(&net.UDPAddr{}, "ID")
	store.SetKey("ID", []byte("KEY"))

	_, err := NewConfigBuilder("example.test:4444").
		WithPSKStore(store).
		WithCipherSuites().
		Build()
	assert.True(t, errors.Is(err, ErrInvalidArg))
}

func TestConfigBuilder_NoCredentialsFails(t *testing.T) {
	_, err := NewConfigBuilder("example.test:4444").Build()
	assert.True(t, errors.Is(err, ErrNoCipherSuiteSatisfiable))
}

func TestConfigBuilder_WithSendRawPublicKey(t *testing.T) {
	key, chain := generateTestECDSAIdentity(t)

	cfg, err := NewConfigBuilder("example.test:4444").
		WithIdentity(key, chain, false).
		WithSendRawPublicKey(true).
		Build()
	require.NoError(t, err)
	assert.True(t, cfg.SendRawPublicKey)
}

func TestConfigBuilder_UnknownExplicitSuiteFails(t *testing.T) {
	key, chain := generateTestECDSAIdentity(t)

	_, err := NewConfigBuilder("example.test:4444").
		WithIdentity(key, chain, false).
		WithCipherSuites(CipherSuiteID(0xffff)).
		Build()
	assert.True(t, errors.Is(err, ErrInvalidArg))
}
