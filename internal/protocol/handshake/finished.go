package handshake

// Finished carries the verify_data computed over the full handshake
// transcript; it is the last message of a flight and the thing that
// proves both sides agree on everything exchanged so far.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.9
type Finished struct {
	VerifyData []byte
}

// Type returns the handshake message type.
func (f *Finished) Type() Type {
	return TypeFinished
}

// Marshal encodes the Finished.
func (f *Finished) Marshal() ([]byte, error) {
	return append([]byte{}, f.VerifyData...), nil
}

// Unmarshal decodes the Finished.
func (f *Finished) Unmarshal(data []byte) error {
	f.VerifyData = append([]byte{}, data...)

	return nil
}
