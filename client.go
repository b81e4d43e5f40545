package dtls

import (
	"net"

	"github.com/pion/logging"

	"github.com/segmentnet/dtlsclient/internal/protocol/alert"
	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
	"github.com/segmentnet/dtlsclient/internal/protocol/recordlayer"
)

// stateNotStarted is a sentinel distinct from every real handshake.Type
// value, meaning Start has not yet been called.
const stateNotStarted handshake.Type = 0xff

// ClientHandshake is the message-driven client-side handshake state
// machine: it consumes inbound records via OnRecord, maintains the
// transcript and reassembly/ordering buffers, drives the three
// key-exchange strategies, and hands flights back to the record layer.
// A ClientHandshake drives exactly one handshake; discard it and build a
// new one to retry.
//
// Grounded on client_handlers.go/clientFlightHandler's flight-driven
// shape, collapsed from the teacher's separate currFlight/handshakeCache/
// fragmentBuffer fields on Conn into one self-contained driver that owns
// its own Session rather than a shared connection object.
type ClientHandshake struct {
	cfg      *HandshakeConfig
	session  *Session
	peerAddr net.Addr
	log      logging.LeveledLogger

	state               handshake.Type
	helloVerifyReceived bool
	closed              bool

	clientRandomRaw []byte
	serverRandomRaw []byte

	clientHello         *handshake.ClientHello
	clientHelloRaw      []byte
	clientHelloAppended bool

	localSeq          uint16
	expectedServerSeq uint16
	acceptedSeq       map[handshake.Type]uint16

	transcript *Transcript
	pending    *PendingMessages
	reassembly *ReassemblyState

	keyExchangeAlgo KeyExchangeAlgorithm
	prfHash         prfHashAlgorithm
	keyExchange     KeyExchange

	serverNamedCurve    handshake.NamedCurve
	serverECDHPublicKey []byte

	certificateRequest *handshake.CertificateRequest

	serverFinishedTranscript []byte

	queuedAppData []byte
}

// NewClientHandshake builds a driver for one handshake against peerAddr,
// under cfg. The returned value is ready for Start.
func NewClientHandshake(cfg *HandshakeConfig, peerAddr net.Addr) *ClientHandshake {
	session := NewSession()
	session.SendRawPublicKey = cfg.SendRawPublicKey

	return &ClientHandshake{
		cfg:         cfg,
		session:     session,
		peerAddr:    peerAddr,
		log:         cfg.Log,
		state:       stateNotStarted,
		acceptedSeq: make(map[handshake.Type]uint16),
		transcript:  NewTranscript(),
		pending:     NewPendingMessages(),
		reassembly:  NewReassemblyState(),
	}
}

// Session returns the handshake's Session. Before Session.Active, it is
// owned by the driver and must not be mutated by the caller.
func (c *ClientHandshake) Session() *Session {
	return c.session
}

// QueueApplicationData stores data to be sent as the client's first
// application-data record the instant the session activates (i.e. as part
// of the flight returned from the transition that processes the server's
// Finished). A later call before activation replaces the previously
// queued message; calling it after Session().Active is an error, since
// that flight has already been emitted.
func (c *ClientHandshake) QueueApplicationData(data []byte) error {
	if c.session.Active {
		return newHandshakeError(alert.InternalError, errQueueAfterActivation)
	}
	c.queuedAppData = append([]byte{}, data...)

	return nil
}

func (c *ClientHandshake) nextSeq() uint16 {
	seq := c.localSeq
	c.localSeq++

	return seq
}

func clientExtensions(cfg *HandshakeConfig) []handshake.Extension {
	extensions := []handshake.Extension{
		&handshake.SupportedSignatureAlgorithms{
			Algorithms: []handshake.SignatureHashAlgorithm{
				{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmECDSA},
				{Hash: handshake.HashAlgorithmSHA384, Signature: handshake.SignatureAlgorithmECDSA},
				{Hash: handshake.HashAlgorithmSHA512, Signature: handshake.SignatureAlgorithmECDSA},
				{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmRSA},
				{Hash: handshake.HashAlgorithmSHA384, Signature: handshake.SignatureAlgorithmRSA},
				{Hash: handshake.HashAlgorithmSHA512, Signature: handshake.SignatureAlgorithmRSA},
			},
		},
		handshake.NewServerCertificateTypeExtension([]handshake.CertificateType{
			handshake.CertificateTypeRawPublicKey,
			handshake.CertificateTypeX509,
		}),
	}

	if cfg.SendRawPublicKey {
		extensions = append(extensions, handshake.NewClientCertificateTypeExtension(
			[]handshake.CertificateType{handshake.CertificateTypeRawPublicKey},
		))
	}

	return extensions
}

// Start returns the initial ClientHello flight. It must be called
// exactly once, before any call to OnRecord.
func (c *ClientHandshake) Start() (*Flight, error) {
	var random handshake.Random
	if err := random.Populate(); err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	clientRandomRaw, err := random.Marshal()
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	c.clientRandomRaw = clientRandomRaw

	ids := make([]uint16, len(c.cfg.CipherSuites))
	for i, id := range c.cfg.CipherSuites {
		ids[i] = uint16(id)
	}

	c.clientHello = &handshake.ClientHello{
		Version:            recordlayer.Version1_2,
		Random:             random,
		CipherSuites:       ids,
		CompressionMethods: []byte{0},
		Extensions:         clientExtensions(c.cfg),
	}

	raw, err := marshalHandshake(c.nextSeq(), c.clientHello)
	if err != nil {
		return nil, newHandshakeError(alert.InternalError, err)
	}
	c.clientHelloRaw = raw
	c.state = handshake.TypeClientHello

	return &Flight{Records: []Record{handshakeRecord(raw)}, RetransmitNeeded: true}, nil
}

// OnRecord drives the handshake with one inbound record and returns zero
// or more outbound records as a Flight.
func (c *ClientHandshake) OnRecord(rec InboundRecord) (*Flight, error) {
	if c.closed {
		return nil, newHandshakeError(alert.InternalError, errHandshakeClosed)
	}

	switch rec.ContentType {
	case ContentTypeChangeCipherSpec:
		var ccs recordlayer.ChangeCipherSpec
		if err := ccs.Unmarshal(rec.Fragment); err != nil {
			return c.fail(alert.DecodeError, errMalformedMessage)
		}
		c.session.ReadEpoch++

		return nil, nil

	case ContentTypeAlert:
		var a alert.Alert
		if err := a.Unmarshal(rec.Fragment); err != nil {
			return c.fail(alert.DecodeError, errMalformedMessage)
		}
		if a.Level == alert.Fatal {
			c.closed = true

			return nil, newHandshakeError(a.Description, errPeerFatalAlert)
		}
		if a.Description == alert.CloseNotify {
			c.closed = true

			return nil, nil
		}
		if c.log != nil {
			c.log.Warnf("dtls: received warning alert %d", a.Description)
		}

		return nil, nil

	case ContentTypeHandshake:
		return c.onHandshakeRecord(rec.Fragment)

	default:
		return c.fail(alert.HandshakeFailure, errUnknownContentType)
	}
}

func (c *ClientHandshake) onHandshakeRecord(fragment []byte) (*Flight, error) {
	var header handshake.Header
	if err := header.Unmarshal(fragment); err != nil {
		return c.fail(alert.DecodeError, errMalformedMessage)
	}
	if uint32(len(fragment))-12 < header.FragmentLength {
		return c.fail(alert.DecodeError, errMalformedMessage)
	}
	body := fragment[12 : 12+header.FragmentLength]

	if header.Type == handshake.TypeHelloRequest {
		return c.onHelloRequest()
	}

	assembled, complete, err := c.reassembly.Insert(
		byte(header.Type), header.MessageSequence, header.Length, header.FragmentOffset, header.FragmentLength, body,
	)
	if err != nil {
		return c.fail(alert.DecodeError, err)
	}
	if !complete {
		return nil, nil
	}

	return c.deliver(header.Type, header.MessageSequence, assembled)
}

// deliver applies duplicate suppression and in-order gating, then
// dispatches assembled to its transition handler and drains any
// messages that arrived out of turn and are now processable.
func (c *ClientHandshake) deliver(t handshake.Type, seq uint16, assembled []byte) (*Flight, error) {
	if dedupType(t) {
		if prevSeq, ok := c.acceptedSeq[t]; ok && prevSeq == seq {
			return nil, nil
		}
	}
	if seq < c.expectedServerSeq {
		return nil, nil
	}
	if seq > c.expectedServerSeq {
		c.pending.Park(seq, append([]byte{byte(t)}, assembled...))

		return nil, nil
	}

	flight, err := c.processOne(t, seq, assembled)
	if err != nil {
		c.closed = true

		return flight, err
	}
	c.expectedServerSeq++
	if dedupType(t) {
		c.acceptedSeq[t] = seq
	}

	for {
		raw, ok := c.pending.Take(c.expectedServerSeq)
		if !ok {
			break
		}
		nt := handshake.Type(raw[0])
		nbody := raw[1:]

		nf, err := c.processOne(nt, c.expectedServerSeq, nbody)
		if err != nil {
			c.closed = true

			return nf, err
		}
		if dedupType(nt) {
			c.acceptedSeq[nt] = c.expectedServerSeq
		}
		c.expectedServerSeq++
		if nf != nil {
			flight = nf
		}
	}

	return flight, nil
}

func (c *ClientHandshake) processOne(t handshake.Type, seq uint16, body []byte) (*Flight, error) {
	msg, err := c.parseMessage(t, body)
	if err != nil {
		return nil, newHandshakeError(alert.DecodeError, errMalformedMessage)
	}

	switch typed := msg.(type) {
	case *handshake.HelloVerifyRequest:
		return c.onHelloVerifyRequest(typed)
	case *handshake.ServerHello:
		return nil, c.onServerHello(seq, body, typed)
	case *handshake.Certificate:
		return nil, c.onCertificate(seq, body, typed)
	case *handshake.ServerKeyExchange:
		return nil, c.onServerKeyExchange(seq, body, typed)
	case *handshake.CertificateRequest:
		return nil, c.onCertificateRequest(seq, body, typed)
	case *handshake.ServerHelloDone:
		return c.onServerHelloDone(seq, body)
	case *handshake.Finished:
		return c.onFinished(seq, body, typed)
	default:
		return nil, newHandshakeError(alert.UnexpectedMessage, errUnexpectedMessage)
	}
}

func (c *ClientHandshake) onHelloRequest() (*Flight, error) {
	if !c.session.Active {
		return nil, nil
	}

	return c.Start()
}

func (c *ClientHandshake) parseMessage(t handshake.Type, body []byte) (handshake.Message, error) {
	var msg handshake.Message
	switch t {
	case handshake.TypeHelloVerifyRequest:
		msg = &handshake.HelloVerifyRequest{}
	case handshake.TypeServerHello:
		msg = &handshake.ServerHello{}
	case handshake.TypeCertificate:
		msg = &handshake.Certificate{}
	case handshake.TypeServerKeyExchange:
		msg = &handshake.ServerKeyExchange{IsPSK: c.keyExchangeAlgo == KeyExchangePSK}
	case handshake.TypeCertificateRequest:
		msg = &handshake.CertificateRequest{}
	case handshake.TypeServerHelloDone:
		msg = &handshake.ServerHelloDone{}
	case handshake.TypeFinished:
		msg = &handshake.Finished{}
	default:
		return nil, handshake.ErrUnknownMessageType
	}
	if err := msg.Unmarshal(body); err != nil {
		return nil, err
	}

	return msg, nil
}

func dedupType(t handshake.Type) bool {
	switch t {
	case handshake.TypeServerHello, handshake.TypeCertificate, handshake.TypeServerKeyExchange, handshake.TypeServerHelloDone:
		return true
	default:
		return false
	}
}

func marshalHandshake(seq uint16, msg handshake.Message) ([]byte, error) {
	h := &handshake.Handshake{Header: handshake.Header{MessageSequence: seq}, Message: msg}

	return h.Marshal()
}

// appendInbound records an inbound message's canonical (unfragmented)
// wire form in the transcript, reconstructing the header as though the
// message had arrived as a single fragment (RFC 6347 S4.2.6).
func (c *ClientHandshake) appendInbound(t handshake.Type, seq uint16, body []byte) {
	header := handshake.Header{
		Type:            t,
		Length:          uint32(len(body)),
		MessageSequence: seq,
		FragmentOffset:  0,
		FragmentLength:  uint32(len(body)),
	}
	headerBytes, _ := header.Marshal() //nolint:errcheck // Header.Marshal never errors
	c.transcript.Append(append(headerBytes, body...))
}

// fail builds the fatal-alert flight accompanying a handshake-ending
// error and marks the driver closed.
func (c *ClientHandshake) fail(desc alert.Description, err error) (*Flight, error) {
	c.closed = true
	handshakeErr := newHandshakeError(desc, err)

	return c.closeWithAlert(handshakeErr), handshakeErr
}

func (c *ClientHandshake) closeWithAlert(err *HandshakeError) *Flight {
	a := alert.Alert{Level: alert.Fatal, Description: err.Alert}
	raw, marshalErr := a.Marshal()
	if marshalErr != nil {
		return nil
	}

	return &Flight{Records: []Record{alertRecord(raw)}, RetransmitNeeded: false}
}
