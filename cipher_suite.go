package dtls

import "fmt"

// CipherSuiteID is the IANA-registered two-byte cipher suite identifier.
//
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-4
type CipherSuiteID uint16

// Cipher suites this driver negotiates. Both are CCM-8 variants per RFC
// 7251; record-layer AEAD encryption/decryption itself is the external
// record layer's concern, so this registry only carries what the
// handshake needs: key-exchange algorithm, PRF hash and the write key/IV
// lengths of the key block.
const (
	TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8 CipherSuiteID = 0xc0ae //nolint:stylecheck
	TLS_PSK_WITH_AES_128_CCM_8         CipherSuiteID = 0xc0a8 //nolint:stylecheck
)

// KeyExchangeAlgorithm identifies which of the three strategies a cipher
// suite uses.
type KeyExchangeAlgorithm int

// Key-exchange algorithms this driver implements.
const (
	KeyExchangeECDHE KeyExchangeAlgorithm = iota
	KeyExchangePSK
	KeyExchangeNull
)

// cipherSuiteDescriptor is everything the handshake driver needs to know
// about a negotiated suite; it deliberately excludes bulk-cipher state
// (AEAD encrypt/decrypt), which belongs to the record layer. writeKeyLen
// and writeIVLen describe the key-block layout the driver itself derives
// and hands to that record layer.
type cipherSuiteDescriptor struct {
	id          CipherSuiteID
	keyExchange KeyExchangeAlgorithm
	prfHash     prfHashAlgorithm
	writeKeyLen int
	writeIVLen  int
}

// aes128CCMKeyLen/aes128CCMIVLen are RFC 5246 S6.3's key_material_length
// and fixed_iv_length for an AEAD cipher with a 128-bit key and a 4-byte
// implicit (fixed) nonce component, used by every suite this driver
// negotiates (both are AES-128-CCM-8, RFC 7251).
const (
	aes128CCMKeyLen = 16
	aes128CCMIVLen  = 4
)

func (c CipherSuiteID) String() string {
	switch c {
	case TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8:
		return "TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8"
	case TLS_PSK_WITH_AES_128_CCM_8:
		return "TLS_PSK_WITH_AES_128_CCM_8"
	default:
		return fmt.Sprintf("unknown(0x%04x)", uint16(c))
	}
}

func (c CipherSuiteID) isPSK() bool {
	return c == TLS_PSK_WITH_AES_128_CCM_8
}

// cipherSuiteForID returns the descriptor for a recognized suite, or nil.
func cipherSuiteForID(id CipherSuiteID) *cipherSuiteDescriptor {
	switch id {
	case TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8:
		return &cipherSuiteDescriptor{
			id: id, keyExchange: KeyExchangeECDHE, prfHash: prfHashSHA256,
			writeKeyLen: aes128CCMKeyLen, writeIVLen: aes128CCMIVLen,
		}
	case TLS_PSK_WITH_AES_128_CCM_8:
		return &cipherSuiteDescriptor{
			id: id, keyExchange: KeyExchangePSK, prfHash: prfHashSHA256,
			writeKeyLen: aes128CCMKeyLen, writeIVLen: aes128CCMIVLen,
		}
	default:
		return nil
	}
}
