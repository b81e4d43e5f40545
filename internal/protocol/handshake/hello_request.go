package handshake

// HelloRequest may be sent by the server at any time to ask the client to
// begin a new handshake. The client is only obligated to honor it while
// idle.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.1
type HelloRequest struct{}

// Type returns the handshake message type.
func (h *HelloRequest) Type() Type {
	return TypeHelloRequest
}

// Marshal encodes the HelloRequest (empty body).
func (h *HelloRequest) Marshal() ([]byte, error) {
	return []byte{}, nil
}

// Unmarshal decodes the HelloRequest (empty body).
func (h *HelloRequest) Unmarshal(data []byte) error {
	if len(data) != 0 {
		return ErrLengthMismatch
	}

	return nil
}
