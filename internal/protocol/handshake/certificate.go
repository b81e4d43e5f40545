package handshake

// Certificate carries either a full X.509 certificate chain or, when RPK
// is negotiated, a single raw SubjectPublicKeyInfo entry (RFC 7250). Both
// forms use the same length-prefixed-list wire shape.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.2
// https://tools.ietf.org/html/rfc7250#section-3
type Certificate struct {
	CertificateChain [][]byte
}

// Type returns the handshake message type.
func (c *Certificate) Type() Type {
	return TypeCertificate
}

// Marshal encodes the Certificate.
func (c *Certificate) Marshal() ([]byte, error) {
	total := 0
	for _, r := range c.CertificateChain {
		total += 3 + len(r)
	}
	out := make([]byte, 3, 3+total)
	putUint24(out, uint32(total))
	for _, r := range c.CertificateChain {
		entry := make([]byte, 3+len(r))
		putUint24(entry, uint32(len(r)))
		copy(entry[3:], r)
		out = append(out, entry...)
	}

	return out, nil
}

// Unmarshal decodes the Certificate.
func (c *Certificate) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return ErrBufferTooSmall
	}
	total := int(uint24(data))
	if total != len(data)-3 {
		return ErrLengthMismatch
	}
	iter := data[3:]
	for len(iter) > 0 {
		if len(iter) < 3 {
			return ErrBufferTooSmall
		}
		entryLen := int(uint24(iter))
		iter = iter[3:]
		if entryLen > len(iter) {
			return ErrLengthMismatch
		}
		c.CertificateChain = append(c.CertificateChain, append([]byte{}, iter[:entryLen]...))
		iter = iter[entryLen:]
	}

	return nil
}
