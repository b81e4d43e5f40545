package dtls

import (
	"crypto"
	"crypto/x509"

	"github.com/pion/logging"

	"github.com/segmentnet/dtlsclient/internal/crypto/psk"
	"github.com/segmentnet/dtlsclient/internal/crypto/trust"
)

// HandshakeConfig is the immutable, validated bundle of cipher-suite
// preferences, long-term credentials, trust anchors, and PSK store handle
// a ClientHandshake is built from. Build one with NewConfigBuilder; once
// built it must not be mutated.
type HandshakeConfig struct {
	Endpoint string

	CipherSuites []CipherSuiteID

	PrivateKey  crypto.Signer
	Certificates [][]byte // DER-encoded, leaf first

	PSKStore   psk.Store
	TrustStore trust.Store

	MaxFragmentLength int
	SendRawPublicKey  bool

	Log logging.LeveledLogger
}

// ConfigOption is a functional option over a HandshakeConfig. The
// ConfigBuilder's With* methods set its fields directly and do not take
// ConfigOptions.
type ConfigOption func(*HandshakeConfig)

// ConfigBuilder accumulates configuration and performs the §4.1
// credential/cipher-suite validation on Build.
type ConfigBuilder struct {
	cfg       HandshakeConfig
	suitesSet bool
}

const defaultMaxFragmentLength = 1200

// NewConfigBuilder starts a builder for a handshake against endpoint.
func NewConfigBuilder(endpoint string) *ConfigBuilder {
	return &ConfigBuilder{cfg: HandshakeConfig{
		Endpoint:          endpoint,
		MaxFragmentLength: defaultMaxFragmentLength,
	}}
}

// WithCipherSuites overrides the default cipher-suite derivation. The
// list must be non-empty; Build rejects an explicit empty list, even
// though leaving WithCipherSuites uncalled entirely is fine and falls
// back to derivation from the configured credentials.
func (b *ConfigBuilder) WithCipherSuites(suites ...CipherSuiteID) *ConfigBuilder {
	b.cfg.CipherSuites = append([]CipherSuiteID{}, suites...)
	b.suitesSet = true

	return b
}

// WithIdentity configures ECDHE_ECDSA credentials: a signer and its
// certificate chain (leaf first). sendRawPublicKey selects RFC 7250 wire
// encoding over a full X.509 chain.
func (b *ConfigBuilder) WithIdentity(privateKey crypto.Signer, certChain [][]byte, sendRawPublicKey bool) *ConfigBuilder {
	b.cfg.PrivateKey = privateKey
	b.cfg.Certificates = certChain
	b.cfg.SendRawPublicKey = sendRawPublicKey

	return b
}

// WithPSKStore enables PSK-family suites, resolved against store.
func (b *ConfigBuilder) WithPSKStore(store psk.Store) *ConfigBuilder {
	b.cfg.PSKStore = store

	return b
}

// WithTrustStore sets the anchors used to verify the server's X.509
// chain. Not consulted when RPK (raw public key) is negotiated.
func (b *ConfigBuilder) WithTrustStore(store trust.Store) *ConfigBuilder {
	b.cfg.TrustStore = store

	return b
}

// WithSendRawPublicKey toggles whether the client offers RFC 7250 raw
// public keys instead of a full X.509 chain, independent of WithIdentity
// (which also accepts this as its third argument; the two are
// equivalent, and whichever is called last wins).
func (b *ConfigBuilder) WithSendRawPublicKey(sendRawPublicKey bool) *ConfigBuilder {
	b.cfg.SendRawPublicKey = sendRawPublicKey

	return b
}

// WithMaxFragmentLength stores n as HandshakeConfig.MaxFragmentLength.
// The driver does not fragment outbound handshake messages by it; each
// message is handed over whole.
func (b *ConfigBuilder) WithMaxFragmentLength(n int) *ConfigBuilder {
	b.cfg.MaxFragmentLength = n

	return b
}

// WithLogger injects the leveled logger the driver writes to. The driver
// logs received warning-level alerts other than close_notify; state
// transitions and flights are not logged. If never called, Build falls back to
// logging.NewDefaultLoggerFactory().
func (b *ConfigBuilder) WithLogger(log logging.LeveledLogger) *ConfigBuilder {
	b.cfg.Log = log

	return b
}

// WithTrustedRoots is a convenience over WithTrustStore for the common
// case of verifying against a fixed x509.CertPool.
func (b *ConfigBuilder) WithTrustedRoots(roots *x509.CertPool) *ConfigBuilder {
	return b.WithTrustStore(trust.NewX509Store(roots))
}

// Build validates the accumulated options and derives the default
// cipher-suite list when none was set explicitly: PSK-only
// credentials yield TLS_PSK_WITH_AES_128_CCM_8; ECDHE-only credentials
// yield TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8; both present yield ECDHE
// first, then PSK.
func (b *ConfigBuilder) Build() (*HandshakeConfig, error) {
	cfg := b.cfg

	if b.suitesSet && len(cfg.CipherSuites) == 0 {
		return nil, ErrInvalidArg
	}

	hasECDHE := cfg.PrivateKey != nil && len(cfg.Certificates) > 0
	hasPSK := cfg.PSKStore != nil

	if !b.suitesSet {
		switch {
		case hasECDHE && hasPSK:
			cfg.CipherSuites = []CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8, TLS_PSK_WITH_AES_128_CCM_8}
		case hasECDHE:
			cfg.CipherSuites = []CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8}
		case hasPSK:
			cfg.CipherSuites = []CipherSuiteID{TLS_PSK_WITH_AES_128_CCM_8}
		default:
			return nil, ErrNoCipherSuiteSatisfiable
		}
	}

	satisfiable := false
	for _, id := range cfg.CipherSuites {
		desc := cipherSuiteForID(id)
		if desc == nil {
			return nil, ErrInvalidArg
		}
		switch desc.keyExchange {
		case KeyExchangePSK:
			if hasPSK {
				satisfiable = true
			}
		case KeyExchangeECDHE:
			if hasECDHE {
				satisfiable = true
			}
		}
	}
	if !satisfiable {
		return nil, ErrNoCipherSuiteSatisfiable
	}

	if cfg.Log == nil {
		cfg.Log = logging.NewDefaultLoggerFactory().NewLogger("dtls")
	}

	return &cfg, nil
}
