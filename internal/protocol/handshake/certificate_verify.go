package handshake

import "encoding/binary"

const certificateVerifyMinLength = 4

// CertificateVerify proves possession of the private key matching the
// client's Certificate message, by signing the handshake transcript seen
// so far.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.8
type CertificateVerify struct {
	HashAlgorithm      HashAlgorithm
	SignatureAlgorithm SignatureAlgorithm
	Signature          []byte
}

// Type returns the handshake message type.
func (c *CertificateVerify) Type() Type {
	return TypeCertificateVerify
}

// Marshal encodes the CertificateVerify.
func (c *CertificateVerify) Marshal() ([]byte, error) {
	out := make([]byte, certificateVerifyMinLength+len(c.Signature))
	out[0] = byte(c.HashAlgorithm)
	out[1] = byte(c.SignatureAlgorithm)
	binary.BigEndian.PutUint16(out[2:], uint16(len(c.Signature)))
	copy(out[4:], c.Signature)

	return out, nil
}

// Unmarshal decodes the CertificateVerify.
func (c *CertificateVerify) Unmarshal(data []byte) error {
	if len(data) < certificateVerifyMinLength {
		return ErrBufferTooSmall
	}
	c.HashAlgorithm = HashAlgorithm(data[0])
	c.SignatureAlgorithm = SignatureAlgorithm(data[1])

	sigLen := int(binary.BigEndian.Uint16(data[2:]))
	if sigLen+certificateVerifyMinLength != len(data) {
		return ErrLengthMismatch
	}
	c.Signature = append([]byte{}, data[4:]...)

	return nil
}
