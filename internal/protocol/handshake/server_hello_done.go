package handshake

// ServerHelloDone signals the end of the server's first flight; the
// client may now assemble its response flight.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.5
type ServerHelloDone struct{}

// Type returns the handshake message type.
func (s *ServerHelloDone) Type() Type {
	return TypeServerHelloDone
}

// Marshal encodes the ServerHelloDone (empty body).
func (s *ServerHelloDone) Marshal() ([]byte, error) {
	return []byte{}, nil
}

// Unmarshal decodes the ServerHelloDone (empty body).
func (s *ServerHelloDone) Unmarshal(data []byte) error {
	if len(data) != 0 {
		return ErrLengthMismatch
	}

	return nil
}
