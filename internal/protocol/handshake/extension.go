package handshake

import "encoding/binary"

// ExtensionTypeValue is the 2-byte IANA-registered TLS extension type.
//
// https://www.iana.org/assignments/tls-extensiontype-values/tls-extensiontype-values.xhtml
type ExtensionTypeValue uint16

// Extension type values used by this driver. ClientCertificateType and
// ServerCertificateType are RFC 7250's Raw Public Key extensions; their
// wire values are taken directly from RFC 7250 S4.
const (
	ExtensionSupportedSignatureAlgorithms ExtensionTypeValue = 13
	ExtensionClientCertificateType        ExtensionTypeValue = 19
	ExtensionServerCertificateType        ExtensionTypeValue = 20
)

// CertificateType identifies the wire representation of a Certificate
// message: a full X.509 chain, or RFC 7250's raw SubjectPublicKeyInfo.
type CertificateType uint8

// Certificate type values (RFC 7250 S4).
const (
	CertificateTypeX509          CertificateType = 0
	CertificateTypeRawPublicKey  CertificateType = 2
)

// Extension is a single TLS extension carried in ClientHello/ServerHello.
type Extension interface {
	TypeValue() ExtensionTypeValue
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// CertificateTypeExtension implements both client_certificate_type and
// server_certificate_type (RFC 7250 S4): in a ClientHello it lists the
// types the sender can send/accept, in a ServerHello it echoes the single
// negotiated type. The driver only ever reads the first listed entry: RPK
// applies when either extension's first entry equals RawPublicKey.
type CertificateTypeExtension struct {
	forServer bool
	Types     []CertificateType
}

// NewClientCertificateTypeExtension builds the client_certificate_type
// extension.
func NewClientCertificateTypeExtension(types []CertificateType) *CertificateTypeExtension {
	return &CertificateTypeExtension{Types: types}
}

// NewServerCertificateTypeExtension builds the server_certificate_type
// extension.
func NewServerCertificateTypeExtension(types []CertificateType) *CertificateTypeExtension {
	return &CertificateTypeExtension{forServer: true, Types: types}
}

// TypeValue returns the extension type value.
func (c *CertificateTypeExtension) TypeValue() ExtensionTypeValue {
	if c.forServer {
		return ExtensionServerCertificateType
	}

	return ExtensionClientCertificateType
}

// Marshal encodes the extension: 2-byte type, 2-byte length, 1-byte list
// length, then one byte per type.
func (c *CertificateTypeExtension) Marshal() ([]byte, error) {
	out := make([]byte, 5+len(c.Types))
	binary.BigEndian.PutUint16(out, uint16(c.TypeValue()))
	binary.BigEndian.PutUint16(out[2:], uint16(1+len(c.Types)))
	out[4] = byte(len(c.Types))
	for i, t := range c.Types {
		out[5+i] = byte(t)
	}

	return out, nil
}

// Unmarshal decodes the extension body (the bytes after the 4-byte
// type+length header).
func (c *CertificateTypeExtension) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return ErrBufferTooSmall
	}
	count := int(data[0])
	if len(data) < 1+count {
		return ErrLengthMismatch
	}
	c.Types = make([]CertificateType, count)
	for i := 0; i < count; i++ {
		c.Types[i] = CertificateType(data[1+i])
	}

	return nil
}

// SignatureHashAlgorithm pairs a hash and signature algorithm as offered
// in the supported_signature_algorithms extension and CertificateVerify.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.4.1
type SignatureHashAlgorithm struct {
	Hash      HashAlgorithm
	Signature SignatureAlgorithm
}

// SupportedSignatureAlgorithms is the supported_signature_algorithms
// ClientHello extension.
type SupportedSignatureAlgorithms struct {
	Algorithms []SignatureHashAlgorithm
}

// TypeValue returns the extension type value.
func (s *SupportedSignatureAlgorithms) TypeValue() ExtensionTypeValue {
	return ExtensionSupportedSignatureAlgorithms
}

// Marshal encodes the extension.
func (s *SupportedSignatureAlgorithms) Marshal() ([]byte, error) {
	out := make([]byte, 6+2*len(s.Algorithms))
	binary.BigEndian.PutUint16(out, uint16(s.TypeValue()))
	binary.BigEndian.PutUint16(out[2:], uint16(2+2*len(s.Algorithms)))
	binary.BigEndian.PutUint16(out[4:], uint16(2*len(s.Algorithms)))
	for i, a := range s.Algorithms {
		out[6+2*i] = byte(a.Hash)
		out[7+2*i] = byte(a.Signature)
	}

	return out, nil
}

// Unmarshal decodes the extension body.
func (s *SupportedSignatureAlgorithms) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return ErrBufferTooSmall
	}
	count := int(binary.BigEndian.Uint16(data) / 2)
	if len(data) < 2+2*count {
		return ErrLengthMismatch
	}
	s.Algorithms = make([]SignatureHashAlgorithm, count)
	for i := 0; i < count; i++ {
		s.Algorithms[i] = SignatureHashAlgorithm{
			Hash:      HashAlgorithm(data[2+2*i]),
			Signature: SignatureAlgorithm(data[3+2*i]),
		}
	}

	return nil
}

// DecodeExtensions decodes the 2-byte-length-prefixed extension list
// carried at the tail of a ClientHello/ServerHello.
func DecodeExtensions(data []byte) ([]Extension, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 2 {
		return nil, ErrBufferTooSmall
	}
	declared := binary.BigEndian.Uint16(data)
	if int(declared) != len(data)-2 {
		return nil, ErrLengthMismatch
	}

	var out []Extension
	offset := 2
	for offset < len(data) {
		if len(data)-offset < 4 {
			return nil, ErrBufferTooSmall
		}
		typeValue := ExtensionTypeValue(binary.BigEndian.Uint16(data[offset:]))
		length := int(binary.BigEndian.Uint16(data[offset+2:]))
		if len(data)-offset-4 < length {
			return nil, ErrLengthMismatch
		}
		body := data[offset+4 : offset+4+length]

		var ext Extension
		switch typeValue {
		case ExtensionClientCertificateType:
			ext = &CertificateTypeExtension{}
		case ExtensionServerCertificateType:
			ext = &CertificateTypeExtension{forServer: true}
		case ExtensionSupportedSignatureAlgorithms:
			ext = &SupportedSignatureAlgorithms{}
		default:
			offset += 4 + length

			continue
		}
		if err := ext.Unmarshal(body); err != nil {
			return nil, err
		}
		out = append(out, ext)
		offset += 4 + length
	}

	return out, nil
}

// EncodeExtensions encodes a list of extensions with its 2-byte length
// prefix.
func EncodeExtensions(extensions []Extension) ([]byte, error) {
	var body []byte
	for _, e := range extensions {
		raw, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		body = append(body, raw...)
	}
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(body)))

	return append(out, body...), nil
}
