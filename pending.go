package dtls

// PendingMessages parks complete handshake messages that arrived ahead
// of their turn (message_seq greater than the next one the driver
// expects), keyed by message_seq. After every successfully processed
// message, the driver loops calling Take for the next expected
// message_seq until nothing processable is parked.
//
// Grounded on client_handlers.go's queued-message handling, with one
// change: the teacher's historical drain never actually removed a
// consumed entry from its map; this one does, via a real delete() call,
// so a message_seq can never be processed twice out of the pending set.
type PendingMessages struct {
	byMessageSeq map[uint16][]byte
}

// NewPendingMessages returns an empty PendingMessages buffer.
func NewPendingMessages() *PendingMessages {
	return &PendingMessages{byMessageSeq: make(map[uint16][]byte)}
}

// Park stores a message that cannot be processed yet.
func (p *PendingMessages) Park(messageSeq uint16, rawHandshake []byte) {
	if _, exists := p.byMessageSeq[messageSeq]; exists {
		return
	}
	p.byMessageSeq[messageSeq] = rawHandshake
}

// Take removes and returns the parked message for messageSeq, if any.
func (p *PendingMessages) Take(messageSeq uint16) ([]byte, bool) {
	raw, ok := p.byMessageSeq[messageSeq]
	if !ok {
		return nil, false
	}
	delete(p.byMessageSeq, messageSeq)

	return raw, true
}
