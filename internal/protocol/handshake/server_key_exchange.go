package handshake

import "encoding/binary"

// ServerKeyExchange carries the server's ephemeral ECDH public point and a
// signature over it (ECDHE_ECDSA), or just a PSK identity hint (PSK). Only
// one of the two payload shapes is populated at a time; IsPSK reports
// which.
//
// https://tools.ietf.org/html/rfc4492#section-5.4
// https://tools.ietf.org/html/rfc4279#section-2
type ServerKeyExchange struct {
	IsPSK bool

	// ECDHE_ECDSA fields.
	NamedCurve         NamedCurve
	PublicKey          []byte
	HashAlgorithm      HashAlgorithm
	SignatureAlgorithm SignatureAlgorithm
	Signature          []byte

	// PSK fields.
	IdentityHint []byte
}

// Type returns the handshake message type.
func (s *ServerKeyExchange) Type() Type {
	return TypeServerKeyExchange
}

// Marshal encodes the ServerKeyExchange.
func (s *ServerKeyExchange) Marshal() ([]byte, error) {
	if s.IsPSK {
		out := make([]byte, 2+len(s.IdentityHint))
		binary.BigEndian.PutUint16(out, uint16(len(s.IdentityHint)))
		copy(out[2:], s.IdentityHint)

		return out, nil
	}

	out := []byte{ECCurveTypeNamedCurve, 0, 0, byte(len(s.PublicKey))}
	binary.BigEndian.PutUint16(out[1:], uint16(s.NamedCurve))
	out = append(out, s.PublicKey...)
	out = append(out, byte(s.HashAlgorithm), byte(s.SignatureAlgorithm))
	sigLen := make([]byte, 2)
	binary.BigEndian.PutUint16(sigLen, uint16(len(s.Signature)))
	out = append(out, sigLen...)
	out = append(out, s.Signature...)

	return out, nil
}

// Unmarshal decodes the ServerKeyExchange. Since the wire shape is
// ambiguous without knowing the negotiated key-exchange algorithm, the
// caller sets IsPSK first: Unmarshal then decodes the PSK identity-hint
// shape when IsPSK is set and the ECDHE shape otherwise (unlike
// client_key_exchange.go's length-based disambiguation, the driver
// always knows the cipher suite before this message arrives, so no
// guessing is required).
func (s *ServerKeyExchange) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return ErrBufferTooSmall
	}
	if s.IsPSK {
		return s.unmarshalPSK(data)
	}

	if data[0] != ECCurveTypeNamedCurve {
		return ErrLengthMismatch
	}
	if len(data) < 4 {
		return ErrBufferTooSmall
	}
	s.NamedCurve = NamedCurve(binary.BigEndian.Uint16(data[1:]))
	pubLen := int(data[3])
	offset := 4
	if len(data) < offset+pubLen {
		return ErrBufferTooSmall
	}
	s.PublicKey = append([]byte{}, data[offset:offset+pubLen]...)
	offset += pubLen

	if len(data) < offset+4 {
		return ErrBufferTooSmall
	}
	s.HashAlgorithm = HashAlgorithm(data[offset])
	s.SignatureAlgorithm = SignatureAlgorithm(data[offset+1])
	sigLen := int(binary.BigEndian.Uint16(data[offset+2:]))
	offset += 4
	if len(data) < offset+sigLen {
		return ErrBufferTooSmall
	}
	s.Signature = append([]byte{}, data[offset:offset+sigLen]...)

	return nil
}

func (s *ServerKeyExchange) unmarshalPSK(data []byte) error {
	if len(data) < 2 {
		return ErrBufferTooSmall
	}
	hintLen := int(binary.BigEndian.Uint16(data))
	if len(data) < 2+hintLen {
		return ErrBufferTooSmall
	}
	s.IdentityHint = append([]byte{}, data[2:2+hintLen]...)

	return nil
}
