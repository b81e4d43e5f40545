package handshake

import "encoding/binary"

// ClientCertType identifies a certificate type the server is
// willing to accept from the client in CertificateRequest.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.4
type ClientCertType uint8

// Certificate types this driver recognizes in CertificateRequest.
const (
	ClientCertTypeRSASign   ClientCertType = 1
	ClientCertTypeECDSASign ClientCertType = 64
)

// CertificateRequest asks the client to authenticate with a certificate.
// The distinguished_names field is parsed but never acted on: this driver
// selects a client certificate/key pair from configuration, not from a CA
// hint list.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.4
type CertificateRequest struct {
	CertificateTypes     []ClientCertType
	SignatureHashAlgorithms []SignatureHashAlgorithm
	DistinguishedNames   [][]byte
}

// Type returns the handshake message type.
func (c *CertificateRequest) Type() Type {
	return TypeCertificateRequest
}

// Marshal encodes the CertificateRequest.
func (c *CertificateRequest) Marshal() ([]byte, error) {
	out := []byte{byte(len(c.CertificateTypes))}
	for _, t := range c.CertificateTypes {
		out = append(out, byte(t))
	}

	sigAlgs := make([]byte, 2+2*len(c.SignatureHashAlgorithms))
	binary.BigEndian.PutUint16(sigAlgs, uint16(2*len(c.SignatureHashAlgorithms)))
	for i, alg := range c.SignatureHashAlgorithms {
		sigAlgs[2+2*i] = byte(alg.Hash)
		sigAlgs[2+2*i+1] = byte(alg.Signature)
	}
	out = append(out, sigAlgs...)

	dnTotal := 0
	for _, dn := range c.DistinguishedNames {
		dnTotal += 2 + len(dn)
	}
	dnLen := make([]byte, 2)
	binary.BigEndian.PutUint16(dnLen, uint16(dnTotal))
	out = append(out, dnLen...)
	for _, dn := range c.DistinguishedNames {
		entry := make([]byte, 2+len(dn))
		binary.BigEndian.PutUint16(entry, uint16(len(dn)))
		copy(entry[2:], dn)
		out = append(out, entry...)
	}

	return out, nil
}

// Unmarshal decodes the CertificateRequest.
func (c *CertificateRequest) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return ErrBufferTooSmall
	}
	typeCount := int(data[0])
	offset := 1
	if len(data) < offset+typeCount {
		return ErrBufferTooSmall
	}
	for i := 0; i < typeCount; i++ {
		c.CertificateTypes = append(c.CertificateTypes, ClientCertType(data[offset+i]))
	}
	offset += typeCount

	if len(data) < offset+2 {
		return ErrBufferTooSmall
	}
	sigAlgsLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+sigAlgsLen || sigAlgsLen%2 != 0 {
		return ErrBufferTooSmall
	}
	for i := 0; i < sigAlgsLen; i += 2 {
		c.SignatureHashAlgorithms = append(c.SignatureHashAlgorithms, SignatureHashAlgorithm{
			Hash:      HashAlgorithm(data[offset+i]),
			Signature: SignatureAlgorithm(data[offset+i+1]),
		})
	}
	offset += sigAlgsLen

	if len(data) < offset+2 {
		return ErrBufferTooSmall
	}
	dnTotal := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+dnTotal {
		return ErrBufferTooSmall
	}
	remaining := data[offset : offset+dnTotal]
	for len(remaining) > 0 {
		if len(remaining) < 2 {
			return ErrBufferTooSmall
		}
		dnLen := int(binary.BigEndian.Uint16(remaining))
		remaining = remaining[2:]
		if len(remaining) < dnLen {
			return ErrBufferTooSmall
		}
		c.DistinguishedNames = append(c.DistinguishedNames, append([]byte{}, remaining[:dnLen]...))
		remaining = remaining[dnLen:]
	}

	return nil
}
