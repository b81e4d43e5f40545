package dtls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCipherSuiteForID_KnownSuites(t *testing.T) {
	desc := cipherSuiteForID(TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8)
	if assert.NotNil(t, desc) {
		assert.Equal(t, KeyExchangeECDHE, desc.keyExchange)
		assert.Equal(t, prfHashSHA256, desc.prfHash)
	}

	desc = cipherSuiteForID(TLS_PSK_WITH_AES_128_CCM_8)
	if assert.NotNil(t, desc) {
		assert.Equal(t, KeyExchangePSK, desc.keyExchange)
		assert.True(t, TLS_PSK_WITH_AES_128_CCM_8.isPSK())
	}
}

func TestCipherSuiteForID_Unknown(t *testing.T) {
	assert.Nil(t, cipherSuiteForID(CipherSuiteID(0xdead)))
}

func TestCipherSuiteID_String(t *testing.T) {
	assert.Equal(t, "TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8", TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8.String())
	assert.Contains(t, CipherSuiteID(0xdead).String(), "unknown")
}
