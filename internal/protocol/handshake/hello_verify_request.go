package handshake

import "github.com/segmentnet/dtlsclient/internal/protocol/recordlayer"

// HelloVerifyRequest is sent by the server in response to a ClientHello it
// wants to verify is attached to a real source address before committing
// state (DoS mitigation).
//
// https://tools.ietf.org/html/rfc6347#section-4.2.1
type HelloVerifyRequest struct {
	Version recordlayer.ProtocolVersion
	Cookie  []byte
}

// Type returns the handshake message type.
func (h *HelloVerifyRequest) Type() Type {
	return TypeHelloVerifyRequest
}

// Marshal encodes the HelloVerifyRequest.
func (h *HelloVerifyRequest) Marshal() ([]byte, error) {
	if len(h.Cookie) > 255 {
		return nil, ErrCookieTooLong
	}
	out := make([]byte, 3+len(h.Cookie))
	out[0] = h.Version.Major
	out[1] = h.Version.Minor
	out[2] = byte(len(h.Cookie))
	copy(out[3:], h.Cookie)

	return out, nil
}

// Unmarshal decodes the HelloVerifyRequest.
func (h *HelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return ErrBufferTooSmall
	}
	h.Version.Major = data[0]
	h.Version.Minor = data[1]
	cookieLen := int(data[2])
	if len(data) < 3+cookieLen {
		return ErrBufferTooSmall
	}
	h.Cookie = append([]byte{}, data[3:3+cookieLen]...)

	return nil
}
