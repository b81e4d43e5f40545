package handshake

import (
	"encoding/binary"

	"github.com/segmentnet/dtlsclient/internal/protocol/recordlayer"
)

const clientHelloFixedWidth = 2 + RandomLength

// ClientHello is the first message a client sends, and the message it
// re-sends (with a server-supplied cookie attached) after a
// HelloVerifyRequest.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
type ClientHello struct {
	Version            recordlayer.ProtocolVersion
	Random             Random
	Cookie             []byte
	CipherSuites       []uint16
	CompressionMethods []byte
	Extensions         []Extension
}

// Type returns the handshake message type.
func (c *ClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the ClientHello.
func (c *ClientHello) Marshal() ([]byte, error) {
	if len(c.Cookie) > 255 {
		return nil, ErrCookieTooLong
	}

	out := make([]byte, clientHelloFixedWidth)
	out[0] = c.Version.Major
	out[1] = c.Version.Minor

	rnd, err := c.Random.Marshal()
	if err != nil {
		return nil, err
	}
	copy(out[2:], rnd)

	out = append(out, 0x00) // session_id, always empty: no session resumption

	out = append(out, byte(len(c.Cookie)))
	out = append(out, c.Cookie...)

	suites := make([]byte, 2+2*len(c.CipherSuites))
	binary.BigEndian.PutUint16(suites, uint16(2*len(c.CipherSuites)))
	for i, s := range c.CipherSuites {
		binary.BigEndian.PutUint16(suites[2+2*i:], s)
	}
	out = append(out, suites...)

	out = append(out, byte(len(c.CompressionMethods)))
	out = append(out, c.CompressionMethods...)

	extensions, err := EncodeExtensions(c.Extensions)
	if err != nil {
		return nil, err
	}

	return append(out, extensions...), nil
}

// Unmarshal decodes the ClientHello.
func (c *ClientHello) Unmarshal(data []byte) error {
	if len(data) < clientHelloFixedWidth {
		return ErrBufferTooSmall
	}
	c.Version.Major = data[0]
	c.Version.Minor = data[1]
	if err := c.Random.Unmarshal(data[2 : 2+RandomLength]); err != nil {
		return err
	}

	offset := clientHelloFixedWidth
	if len(data) <= offset {
		return ErrBufferTooSmall
	}
	offset += int(data[offset]) + 1 // session_id

	if len(data) <= offset {
		return ErrBufferTooSmall
	}
	cookieLen := int(data[offset])
	offset++
	if len(data) < offset+cookieLen {
		return ErrBufferTooSmall
	}
	if cookieLen > 0 {
		c.Cookie = append([]byte{}, data[offset:offset+cookieLen]...)
	}
	offset += cookieLen

	if len(data) < offset+2 {
		return ErrBufferTooSmall
	}
	suiteBytes := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+suiteBytes {
		return ErrBufferTooSmall
	}
	c.CipherSuites = make([]uint16, suiteBytes/2)
	for i := range c.CipherSuites {
		c.CipherSuites[i] = binary.BigEndian.Uint16(data[offset+2*i:])
	}
	offset += suiteBytes

	if len(data) <= offset {
		return ErrBufferTooSmall
	}
	compCount := int(data[offset])
	offset++
	if len(data) < offset+compCount {
		return ErrBufferTooSmall
	}
	c.CompressionMethods = append([]byte{}, data[offset:offset+compCount]...)
	offset += compCount

	if offset >= len(data) {
		return nil
	}
	extensions, err := DecodeExtensions(data[offset:])
	if err != nil {
		return err
	}
	c.Extensions = extensions

	return nil
}
