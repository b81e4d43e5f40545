package handshake

import (
	"encoding/binary"

	"github.com/segmentnet/dtlsclient/internal/protocol/recordlayer"
)

const serverHelloFixedWidth = 2 + RandomLength

// ServerHello is the server's response when it found an acceptable set of
// algorithms; it carries the negotiated version, cipher suite, compression
// method and any extensions the server chose to echo.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.3
type ServerHello struct {
	Version           recordlayer.ProtocolVersion
	Random            Random
	CipherSuite       uint16
	CompressionMethod byte
	Extensions        []Extension
}

// Type returns the handshake message type.
func (s *ServerHello) Type() Type {
	return TypeServerHello
}

// Marshal encodes the ServerHello.
func (s *ServerHello) Marshal() ([]byte, error) {
	out := make([]byte, serverHelloFixedWidth)
	out[0] = s.Version.Major
	out[1] = s.Version.Minor
	rnd, err := s.Random.Marshal()
	if err != nil {
		return nil, err
	}
	copy(out[2:], rnd)

	out = append(out, 0x00) // session_id, always empty

	suite := make([]byte, 2)
	binary.BigEndian.PutUint16(suite, s.CipherSuite)
	out = append(out, suite...)
	out = append(out, s.CompressionMethod)

	extensions, err := EncodeExtensions(s.Extensions)
	if err != nil {
		return nil, err
	}

	return append(out, extensions...), nil
}

// Unmarshal decodes the ServerHello.
func (s *ServerHello) Unmarshal(data []byte) error {
	if len(data) < serverHelloFixedWidth {
		return ErrBufferTooSmall
	}
	s.Version.Major = data[0]
	s.Version.Minor = data[1]
	if err := s.Random.Unmarshal(data[2 : 2+RandomLength]); err != nil {
		return err
	}

	offset := serverHelloFixedWidth
	if len(data) <= offset {
		return ErrBufferTooSmall
	}
	offset += int(data[offset]) + 1 // session_id

	if len(data) < offset+2 {
		return ErrBufferTooSmall
	}
	s.CipherSuite = binary.BigEndian.Uint16(data[offset:])
	offset += 2

	if len(data) <= offset {
		return ErrBufferTooSmall
	}
	s.CompressionMethod = data[offset]
	offset++

	if offset >= len(data) {
		return nil
	}
	extensions, err := DecodeExtensions(data[offset:])
	if err != nil {
		return err
	}
	s.Extensions = extensions

	return nil
}
