package handshake

// NamedCurve identifies an elliptic curve for ECDHE key exchange.
//
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-8
type NamedCurve uint16

// Curves this driver supports for ECDHE.
const (
	NamedCurveP256   NamedCurve = 23
	NamedCurveX25519 NamedCurve = 29
)

func (n NamedCurve) String() string {
	switch n {
	case NamedCurveP256:
		return "P-256"
	case NamedCurveX25519:
		return "X25519"
	default:
		return "Unknown"
	}
}

// ECCurveType identifies how the curve is specified in ServerKeyExchange.
// This driver only ever sees/sends named_curve (RFC 4492 S5.4).
const ECCurveTypeNamedCurve = 3
