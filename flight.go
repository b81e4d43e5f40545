package dtls

/*
  DTLS messages are grouped into flights; although each flight may
  carry several messages they are retransmitted as one unit.
  https://tools.ietf.org/html/rfc4347#section-4.2.4

  Client                                          Server
  ------                                          ------
  ClientHello             -------->                           Flight 1

                          <-------    HelloVerifyRequest      Flight 2

  ClientHello              -------->                           Flight 3

                                             ServerHello    \
                                            Certificate*     \
                                      ServerKeyExchange*      Flight 4
                                     CertificateRequest*     /
                          <--------      ServerHelloDone    /

  Certificate*                                              \
  ClientKeyExchange                                          \
  CertificateVerify*                                          Flight 5
  [ChangeCipherSpec]                                         /
  Finished                -------->                         /

                                      [ChangeCipherSpec]    \ Flight 6
                          <--------             Finished    /
*/

// ContentType identifies the kind of payload one outbound Record carries.
type ContentType byte

// Content types a Flight's records may carry.
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

// Record is one outbound wire unit the record layer is asked to send.
// The driver does not serialize the DTLS record header itself (epoch,
// sequence number, and fragmentation are the record layer's concern);
// it hands over the content type and the unfragmented payload bytes.
type Record struct {
	ContentType ContentType
	Payload     []byte
}

// Flight is zero or more outbound Records plus whether the record layer
// should retain them for retransmission. RetransmitNeeded is false for
// the activation handoff after the server's Finished (queued application
// data only, possibly no records) and for a fatal-alert flight; every
// other flight sets it.
type Flight struct {
	Records          []Record
	RetransmitNeeded bool
}

func handshakeRecord(payload []byte) Record {
	return Record{ContentType: ContentTypeHandshake, Payload: payload}
}

func changeCipherSpecRecord(payload []byte) Record {
	return Record{ContentType: ContentTypeChangeCipherSpec, Payload: payload}
}

func alertRecord(payload []byte) Record {
	return Record{ContentType: ContentTypeAlert, Payload: payload}
}

func applicationDataRecord(payload []byte) Record {
	return Record{ContentType: ContentTypeApplicationData, Payload: payload}
}

// InboundRecord is one content-type envelope the external record layer
// delivers to the driver: already demultiplexed from the DTLS record
// header, but for ContentTypeHandshake still possibly just one fragment
// of a larger message.
type InboundRecord struct {
	ContentType    ContentType
	Epoch          uint16
	SequenceNumber uint64
	Fragment       []byte
}
