// Package crypto implements the key-material primitives the handshake
// driver needs to turn a negotiated key-exchange algorithm into a
// premaster secret: ECDHE key agreement today, with PSK and NULL handled
// directly by their own strategies in the root package.
package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/curve25519"

	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

var (
	// ErrInvalidNamedCurve is returned for a curve this driver does not
	// implement.
	ErrInvalidNamedCurve = errors.New("crypto: invalid named curve")
	// ErrWeakPublicKey is returned when a remote ECDH public key lands on
	// a low-order point (X25519 contributory-behavior check).
	ErrWeakPublicKey = errors.New("crypto: weak ECDH public key")
)

// Keypair is an ephemeral ECDH key pair for one named curve.
type Keypair struct {
	Curve      handshake.NamedCurve
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeypair produces a fresh ephemeral key pair for curve. X25519
// uses golang.org/x/crypto/curve25519 directly so the clamping and
// basepoint multiplication stay explicit; P-256 defers to crypto/ecdh.
func GenerateKeypair(curve handshake.NamedCurve) (*Keypair, error) {
	switch curve {
	case handshake.NamedCurveX25519:
		var priv [32]byte
		if _, err := rand.Read(priv[:]); err != nil {
			return nil, err
		}
		pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
		if err != nil {
			return nil, err
		}

		return &Keypair{Curve: curve, PublicKey: pub, PrivateKey: priv[:]}, nil

	case handshake.NamedCurveP256:
		ec := ecdh.P256()
		sk, err := ec.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}

		return &Keypair{Curve: curve, PublicKey: sk.PublicKey().Bytes(), PrivateKey: sk.Bytes()}, nil

	default:
		return nil, ErrInvalidNamedCurve
	}
}

// SharedSecret computes the ECDH shared secret between kp's private key
// and the remote's public key bytes.
func SharedSecret(kp *Keypair, remotePublicKey []byte) ([]byte, error) {
	switch kp.Curve {
	case handshake.NamedCurveX25519:
		secret, err := curve25519.X25519(kp.PrivateKey, remotePublicKey)
		if err != nil {
			// With correctly sized inputs, curve25519 fails only when the
			// result is all zeros, i.e. the remote point has low order.
			if len(kp.PrivateKey) == curve25519.ScalarSize && len(remotePublicKey) == curve25519.PointSize {
				return nil, ErrWeakPublicKey
			}

			return nil, err
		}
		if isAllZero(secret) {
			return nil, ErrWeakPublicKey
		}

		return secret, nil

	case handshake.NamedCurveP256:
		ec := ecdh.P256()
		sk, err := ec.NewPrivateKey(kp.PrivateKey)
		if err != nil {
			return nil, err
		}
		pk, err := ec.NewPublicKey(remotePublicKey)
		if err != nil {
			return nil, err
		}

		return sk.ECDH(pk)

	default:
		return nil, ErrInvalidNamedCurve
	}
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}
