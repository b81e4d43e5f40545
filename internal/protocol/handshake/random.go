package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RandomLength is the wire length of a Random value.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
const RandomLength = 32

// Random is the 32-byte value each side contributes to the handshake:
// a 4-byte gmt_unix_time followed by 28 bytes of cryptographically random
// data. RFC 5246 S7.4.1.2 permits either interpreting the first four
// bytes as a timestamp or, per a later erratum, treating all 32 bytes as
// uniform randomness; this implementation follows the original text and
// always stamps the timestamp, matching what most deployed stacks send.
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [28]byte
}

// Populate fills the Random with the current time, truncated to whole
// seconds as on the wire, and fresh entropy. Safe to call more than once;
// the last call wins.
func (r *Random) Populate() error {
	r.GMTUnixTime = time.Unix(time.Now().Unix(), 0)
	_, err := rand.Read(r.RandomBytes[:])

	return err
}

// Marshal encodes the Random to its fixed 32-byte wire form.
func (r *Random) Marshal() ([]byte, error) {
	out := make([]byte, RandomLength)
	binary.BigEndian.PutUint32(out, uint32(r.GMTUnixTime.Unix())) //nolint:gosec
	copy(out[4:], r.RandomBytes[:])

	return out, nil
}

// Unmarshal decodes a Random from its fixed 32-byte wire form.
func (r *Random) Unmarshal(data []byte) error {
	if len(data) != RandomLength {
		return ErrBufferTooSmall
	}
	r.GMTUnixTime = time.Unix(int64(binary.BigEndian.Uint32(data[0:])), 0)
	copy(r.RandomBytes[:], data[4:])

	return nil
}
