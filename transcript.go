package dtls

// Transcript is the append-only byte buffer of every handshake message
// exchanged so far, in canonical order. It backs both the Finished
// verify_data computation and the CertificateVerify signature input.
// Exactly one call to Append happens per accepted handshake message;
// retransmissions and duplicates never touch it.
//
// Grounded on the teacher's handshakeCache, simplified: this driver only
// ever needs the ordered concatenation of what has been appended so far
// (for Finished and CertificateVerify alike; pieces the handshake never
// produced were simply never appended), so there is no per-flight
// exclusion-rule machinery here.
type Transcript struct {
	messages [][]byte
}

// NewTranscript returns an empty Transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records one complete handshake message's wire bytes.
func (t *Transcript) Append(data []byte) {
	t.messages = append(t.messages, append([]byte{}, data...))
}

// Bytes returns the concatenation of every recorded message.
func (t *Transcript) Bytes() []byte {
	var out []byte
	for _, m := range t.messages {
		out = append(out, m...)
	}

	return out
}

// Len reports how many messages have been recorded.
func (t *Transcript) Len() int {
	return len(t.messages)
}
