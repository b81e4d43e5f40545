package handshake

import "encoding/binary"

// ClientKeyExchange carries the client's contribution to the premaster
// secret: an ECDH public point for ECDHE suites, a PSK identity for PSK
// suites, or nothing at all for the NULL key-exchange strategy.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.7
// https://tools.ietf.org/html/rfc4279#section-2
type ClientKeyExchange struct {
	PublicKey   []byte
	IdentityHint []byte
}

// Type returns the handshake message type.
func (c *ClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

// Marshal encodes the ClientKeyExchange.
func (c *ClientKeyExchange) Marshal() ([]byte, error) {
	switch {
	case len(c.PublicKey) != 0 && len(c.IdentityHint) != 0:
		return nil, ErrInvalidClientKeyExchange
	case len(c.PublicKey) != 0:
		return append([]byte{byte(len(c.PublicKey))}, c.PublicKey...), nil
	case len(c.IdentityHint) != 0:
		out := make([]byte, 2+len(c.IdentityHint))
		binary.BigEndian.PutUint16(out, uint16(len(c.IdentityHint)))
		copy(out[2:], c.IdentityHint)

		return out, nil
	default:
		return []byte{}, nil
	}
}

// Unmarshal decodes the ClientKeyExchange. The caller is expected to know
// from the negotiated cipher suite which field to look at; this mirrors
// the one-byte-length (ECDHE) vs two-byte-length (PSK) disambiguation the
// wire format itself uses.
func (c *ClientKeyExchange) Unmarshal(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) < 1 {
		return ErrBufferTooSmall
	}

	publicKeyLength := int(data[0])
	if len(data) != 1+publicKeyLength {
		if len(data) < 2 {
			return ErrBufferTooSmall
		}
		pskLength := int(binary.BigEndian.Uint16(data))
		if len(data) < 2+pskLength {
			return ErrBufferTooSmall
		}
		c.IdentityHint = append([]byte{}, data[2:2+pskLength]...)

		return nil
	}

	c.PublicKey = append([]byte{}, data[1:]...)

	return nil
}
