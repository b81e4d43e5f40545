// Package alert implements the DTLS/TLS 1.2 alert protocol content type.
package alert

import "errors"

// errBufferTooSmall is returned when a raw alert record is not exactly
// two bytes long.
var errBufferTooSmall = errors.New("alert: buffer is too small")

// Level is the severity of an Alert.
//
// https://tools.ietf.org/html/rfc5246#section-7.2
type Level byte

// Alert levels.
const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Fatal:
		return "Fatal"
	default:
		return "Invalid alert level"
	}
}

// Description identifies the specific condition an Alert reports.
//
// https://tools.ietf.org/html/rfc5246#section-7.2
type Description byte

// Alert descriptions.
const (
	CloseNotify            Description = 0
	UnexpectedMessage      Description = 10
	BadRecordMac           Description = 20
	DecryptionFailed       Description = 21
	RecordOverflow         Description = 22
	DecompressionFailure   Description = 30
	HandshakeFailure       Description = 40
	NoCertificate          Description = 41
	BadCertificate         Description = 42
	UnsupportedCertificate Description = 43
	CertificateRevoked     Description = 44
	CertificateExpired     Description = 45
	CertificateUnknown     Description = 46
	IllegalParameter       Description = 47
	UnknownCA              Description = 48
	AccessDenied           Description = 49
	DecodeError            Description = 50
	DecryptError           Description = 51
	ExportRestriction      Description = 60
	ProtocolVersion        Description = 70
	InsufficientSecurity   Description = 71
	InternalError          Description = 80
	UserCanceled           Description = 90
	NoRenegotiation        Description = 100
	UnsupportedExtension   Description = 110
)

// Alert conveys the severity of a message and a description of why it
// was sent. An Alert at level Fatal terminates the handshake immediately.
//
// https://tools.ietf.org/html/rfc5246#section-7.2
type Alert struct {
	Level       Level
	Description Description
}

// Marshal encodes the Alert to its two-byte wire form.
func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

// Unmarshal decodes an Alert from its two-byte wire form.
func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errBufferTooSmall
	}
	a.Level = Level(data[0])
	a.Description = Description(data[1])

	return nil
}
