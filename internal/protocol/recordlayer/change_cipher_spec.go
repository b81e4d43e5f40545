package recordlayer

import "errors"

var errInvalidChangeCipherSpec = errors.New("recordlayer: invalid change cipher spec")

// ChangeCipherSpec signals a transition in ciphering strategy. The message
// consists of a single byte of value 1.
//
// https://tools.ietf.org/html/rfc5246#section-7.1
type ChangeCipherSpec struct{}

// ContentType returns the record content type carrying this message.
func (c ChangeCipherSpec) ContentType() ContentType {
	return ContentTypeChangeCipherSpec
}

// Marshal encodes the ChangeCipherSpec.
func (c ChangeCipherSpec) Marshal() ([]byte, error) {
	return []byte{0x01}, nil
}

// Unmarshal decodes a ChangeCipherSpec.
func (c *ChangeCipherSpec) Unmarshal(data []byte) error {
	if len(data) != 1 || data[0] != 0x01 {
		return errInvalidChangeCipherSpec
	}

	return nil
}
