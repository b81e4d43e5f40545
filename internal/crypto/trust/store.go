// Package trust defines the chain-verification interface the handshake
// driver calls once it has the server's Certificate message, plus a
// default implementation backed by crypto/x509.
package trust

import (
	"crypto/x509"
	"errors"
	"time"
)

// ErrEmptyChain is returned when the server sent no certificates at all.
var ErrEmptyChain = errors.New("trust: empty certificate chain")

// Store verifies a raw DER certificate chain against a set of trust
// anchors. It is read-only from the driver's viewpoint and safe to share
// across concurrent handshakes.
type Store interface {
	// Verify parses chain (leaf first) and checks it against the
	// store's roots, returning the parsed leaf on success.
	Verify(chain [][]byte) (*x509.Certificate, error)
}

// X509Store is a Store backed by a fixed root pool, mirroring the
// RootCAs option the record layer's peers configure elsewhere in this
// stack.
type X509Store struct {
	roots          *x509.CertPool
	insecureSkipVerify bool
}

// NewX509Store builds a Store that verifies against roots. If roots is
// nil, the system root pool is used.
func NewX509Store(roots *x509.CertPool) *X509Store {
	return &X509Store{roots: roots}
}

// NewInsecureStore builds a Store that parses the leaf but performs no
// chain verification. Intended for tests only.
func NewInsecureStore() *X509Store {
	return &X509Store{insecureSkipVerify: true}
}

// Verify implements Store.
func (s *X509Store) Verify(chain [][]byte) (*x509.Certificate, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}

	leaf, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return nil, err
	}
	if s.insecureSkipVerify {
		return leaf, nil
	}

	intermediates := x509.NewCertPool()
	for _, raw := range chain[1:] {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, err
		}
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         s.roots,
		Intermediates: intermediates,
		CurrentTime:   time.Now(),
	}
	if _, err := leaf.Verify(opts); err != nil {
		return nil, err
	}

	return leaf, nil
}
