// Package recordlayer defines the wire shapes the client handshake driver
// receives from, and hands back to, the external record layer: the typed
// content envelope and the DTLS 1.2 record header. Retry timing and
// actual record (en|de)cryption belong to that external record layer and
// are not implemented here; handshake fragment reassembly is done by the
// client driver.
package recordlayer

import (
	"encoding/binary"
	"errors"
)

var (
	errBufferTooSmall            = errors.New("recordlayer: buffer is too small")
	errSequenceNumberOverflow    = errors.New("recordlayer: sequence number overflow")
	errUnsupportedProtocolVersion = errors.New("recordlayer: unsupported protocol version")
)

// ContentType identifies the payload carried by a Record.
//
// https://tools.ietf.org/html/rfc4346#section-6.2.1
type ContentType uint8

// Content types handled by the client handshake driver.
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeChangeCipherSpec:
		return "ChangeCipherSpec"
	case ContentTypeAlert:
		return "Alert"
	case ContentTypeHandshake:
		return "Handshake"
	case ContentTypeApplicationData:
		return "ApplicationData"
	default:
		return "Unknown"
	}
}

// ProtocolVersion is the two-byte DTLS version field.
//
// https://tools.ietf.org/html/rfc4346#section-6.2.1
type ProtocolVersion struct {
	Major, Minor uint8
}

// Equal reports whether two versions match.
func (v ProtocolVersion) Equal(x ProtocolVersion) bool {
	return v.Major == x.Major && v.Minor == x.Minor
}

// DTLS 1.2 and 1.0 wire version constants (1.2's wire bytes predate 1.0's
// by convention: DTLS versions count down from TLS's 0xffff complement).
const (
	dtls1_0Major = 0xfe
	dtls1_0Minor = 0xff

	dtls1_2Major = 0xfe
	dtls1_2Minor = 0xfd
)

// Protocol version values this driver negotiates or tolerates.
var (
	Version1_0 = ProtocolVersion{dtls1_0Major, dtls1_0Minor}
	Version1_2 = ProtocolVersion{dtls1_2Major, dtls1_2Minor}
)

const (
	headerSize        = 13
	maxSequenceNumber = 0x0000FFFFFFFFFFFF
)

// Header is the 13-byte DTLS record layer header.
//
// https://tools.ietf.org/html/rfc6347#section-4.1
type Header struct {
	ContentType     ContentType
	ContentLen      uint16
	ProtocolVersion ProtocolVersion
	Epoch           uint16
	SequenceNumber  uint64 // uint48 on the wire
}

// Marshal encodes the Header.
func (h *Header) Marshal() ([]byte, error) {
	if h.SequenceNumber > maxSequenceNumber {
		return nil, errSequenceNumberOverflow
	}

	out := make([]byte, headerSize)
	out[0] = byte(h.ContentType)
	out[1] = h.ProtocolVersion.Major
	out[2] = h.ProtocolVersion.Minor
	binary.BigEndian.PutUint16(out[3:], h.Epoch)
	putUint48(out[5:], h.SequenceNumber)
	binary.BigEndian.PutUint16(out[headerSize-2:], h.ContentLen)

	return out, nil
}

// Unmarshal decodes a Header.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < headerSize {
		return errBufferTooSmall
	}
	h.ContentType = ContentType(data[0])
	h.ProtocolVersion.Major = data[1]
	h.ProtocolVersion.Minor = data[2]
	h.Epoch = binary.BigEndian.Uint16(data[3:])

	seqCopy := make([]byte, 8)
	copy(seqCopy[2:], data[5:11])
	h.SequenceNumber = binary.BigEndian.Uint64(seqCopy)
	h.ContentLen = binary.BigEndian.Uint16(data[headerSize-2:])

	if !h.ProtocolVersion.Equal(Version1_0) && !h.ProtocolVersion.Equal(Version1_2) {
		return errUnsupportedProtocolVersion
	}

	return nil
}

func putUint48(out []byte, in uint64) {
	out[0] = byte(in >> 40)
	out[1] = byte(in >> 32)
	out[2] = byte(in >> 24)
	out[3] = byte(in >> 16)
	out[4] = byte(in >> 8)
	out[5] = byte(in)
}
