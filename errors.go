package dtls

import (
	"errors"
	"fmt"

	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
)

// Config-time sentinel errors; these never reach the wire, they are
// returned directly from ConfigBuilder.Build.
var (
	ErrInvalidArg               = errors.New("dtls: invalid configuration argument")
	ErrNoCipherSuiteSatisfiable = errors.New("dtls: no configured cipher suite is satisfiable by the provided credentials")
)

// Handshake-time sentinels; each is wrapped by a *HandshakeError carrying
// the alert.Description to send on the wire.
var (
	errUnsupportedCipherSuite = errors.New("dtls: unsupported or unnegotiated cipher suite")
	errUnsupportedNamedCurve  = errors.New("dtls: server chose an unsupported named curve")
	errMissingPSKIdentity     = errors.New("dtls: PSK store has no identity for this peer")
	errMissingPSKKey          = errors.New("dtls: PSK store has no key for this identity")
	errUnexpectedMessage      = errors.New("dtls: handshake message received out of order")
	errKeySignatureMismatch   = errors.New("dtls: server key exchange signature verification failed")
	errVerifyDataMismatch     = errors.New("dtls: Finished verify_data mismatch")
	errNoSharedSignatureAlg   = errors.New("dtls: no shared signature-and-hash algorithm with the server's CertificateRequest")
	errCertificateRejected    = errors.New("dtls: certificate chain rejected by trust store")
	errMalformedMessage       = errors.New("dtls: malformed handshake message")
	errUnknownContentType     = errors.New("dtls: record content type not handled by the client driver")
	errHandshakeClosed        = errors.New("dtls: handshake already terminated by a prior fatal alert")
	errPeerFatalAlert         = errors.New("dtls: peer sent a fatal alert")
	errQueueAfterActivation   = errors.New("dtls: cannot queue application data once the session is active")
)

// HandshakeError is a fatal handshake-time failure. It carries the alert
// that must be sent to the peer and wraps the underlying diagnostic
// error. Once returned from Start or OnRecord, the driver is done: no
// further calls are valid.
type HandshakeError struct {
	Alert alert.Description
	Err   error
}

func newHandshakeError(desc alert.Description, err error) *HandshakeError {
	return &HandshakeError{Alert: desc, Err: err}
}

// Error implements error.
func (e *HandshakeError) Error() string {
	return fmt.Sprintf("dtls: handshake failed (alert %v): %v", e.Alert, e.Err)
}

// Unwrap lets errors.Is/errors.As reach the wrapped sentinel.
func (e *HandshakeError) Unwrap() error {
	return e.Err
}
