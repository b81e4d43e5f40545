// Package handshake implements the DTLS 1.2 handshake message envelope and
// the wire codecs for every message type the client handshake driver
// exchanges (RFC 5246 S7.3-7.4, RFC 6347 S4.2).
package handshake

import (
	"encoding/binary"
	"errors"
)

// Typed errors returned by the codecs in this package.
var (
	ErrBufferTooSmall           = errors.New("handshake: buffer is too small")
	ErrLengthMismatch           = errors.New("handshake: data length and declared length do not match")
	ErrCookieTooLong            = errors.New("handshake: cookie must not be longer than 255 bytes")
	ErrInvalidClientKeyExchange = errors.New("handshake: unable to determine if ClientKeyExchange is a public key or PSK identity")
	ErrUnknownMessageType       = errors.New("handshake: unknown handshake message type")
)

// Type is the one-byte handshake message type tag.
//
// https://tools.ietf.org/html/rfc5246#section-7.4
type Type uint8

// Handshake message types used by the client driver.
const (
	TypeHelloRequest       Type = 0
	TypeClientHello        Type = 1
	TypeServerHello        Type = 2
	TypeHelloVerifyRequest Type = 3
	TypeCertificate        Type = 11
	TypeServerKeyExchange  Type = 12
	TypeCertificateRequest Type = 13
	TypeServerHelloDone    Type = 14
	TypeCertificateVerify  Type = 15
	TypeClientKeyExchange  Type = 16
	TypeFinished           Type = 20
)

func (t Type) String() string {
	switch t {
	case TypeHelloRequest:
		return "HelloRequest"
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case TypeCertificate:
		return "Certificate"
	case TypeServerKeyExchange:
		return "ServerKeyExchange"
	case TypeCertificateRequest:
		return "CertificateRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Message is implemented by every concrete handshake message body.
type Message interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

const headerLength = 12

// Header is the per-message framing DTLS adds on top of the TLS handshake
// header: a message sequence number and fragment offset/length, to support
// reordering and fragmentation over an unreliable transport.
//
// https://tools.ietf.org/html/rfc6347#section-4.2.2
type Header struct {
	Type            Type
	Length          uint32 // uint24 on the wire
	MessageSequence uint16
	FragmentOffset  uint32 // uint24 on the wire
	FragmentLength  uint32 // uint24 on the wire
}

// Marshal encodes the Header.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, headerLength)
	out[0] = byte(h.Type)
	putUint24(out[1:], h.Length)
	binary.BigEndian.PutUint16(out[4:], h.MessageSequence)
	putUint24(out[6:], h.FragmentOffset)
	putUint24(out[9:], h.FragmentLength)

	return out, nil
}

// Unmarshal decodes a Header.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < headerLength {
		return ErrBufferTooSmall
	}
	h.Type = Type(data[0])
	h.Length = uint24(data[1:])
	h.MessageSequence = binary.BigEndian.Uint16(data[4:])
	h.FragmentOffset = uint24(data[6:])
	h.FragmentLength = uint24(data[9:])

	return nil
}

// Handshake is one complete (unfragmented) handshake message: header plus
// typed body. Reassembling inbound DTLS fragments into a complete body is
// done by the client driver, not by this type.
type Handshake struct {
	Header  Header
	Message Message
}

// Marshal encodes the full handshake message (header + body).
func (h *Handshake) Marshal() ([]byte, error) {
	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}
	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(body))
	if h.Header.FragmentLength == 0 {
		h.Header.FragmentLength = h.Header.Length
	}

	headerBytes, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerBytes, body...), nil
}

// Unmarshal decodes a full handshake message (header + body). It decodes
// the header itself and picks the body type from the header's message
// type.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}
	if uint32(len(data)-headerLength) < h.Header.Length {
		return ErrBufferTooSmall
	}

	msg, err := newMessage(h.Header.Type)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(data[headerLength : headerLength+int(h.Header.Length)]); err != nil {
		return err
	}
	h.Message = msg

	return nil
}

func newMessage(t Type) (Message, error) {
	switch t {
	case TypeHelloRequest:
		return &HelloRequest{}, nil
	case TypeClientHello:
		return &ClientHello{}, nil
	case TypeServerHello:
		return &ServerHello{}, nil
	case TypeHelloVerifyRequest:
		return &HelloVerifyRequest{}, nil
	case TypeCertificate:
		return &Certificate{}, nil
	case TypeServerKeyExchange:
		return &ServerKeyExchange{}, nil
	case TypeCertificateRequest:
		return &CertificateRequest{}, nil
	case TypeServerHelloDone:
		return &ServerHelloDone{}, nil
	case TypeCertificateVerify:
		return &CertificateVerify{}, nil
	case TypeClientKeyExchange:
		return &ClientKeyExchange{}, nil
	case TypeFinished:
		return &Finished{}, nil
	default:
		return nil, ErrUnknownMessageType
	}
}

func putUint24(out []byte, in uint32) {
	out[0] = byte(in >> 16)
	out[1] = byte(in >> 8)
	out[2] = byte(in)
}

func uint24(in []byte) uint32 {
	return uint32(in[0])<<16 | uint32(in[1])<<8 | uint32(in[2])
}
