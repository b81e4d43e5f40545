package dtls

import "crypto/subtle"

const (
	clientFinishedLabel = "client finished"
	serverFinishedLabel = "server finished"
)

// clientVerifyData computes the client's Finished verify_data over the
// transcript of every message emitted or received so far (not including
// the client's own Finished).
func (c *ClientHandshake) clientVerifyData() []byte {
	return verifyData(c.prfHash, c.session.MasterSecret, clientFinishedLabel, c.transcript.Bytes())
}

// expectServerVerifyData computes the verify_data the server's Finished
// must carry, over the transcript extended with the client's own
// Finished bytes.
func (c *ClientHandshake) expectServerVerifyData(extendedTranscript []byte) []byte {
	return verifyData(c.prfHash, c.session.MasterSecret, serverFinishedLabel, extendedTranscript)
}

// checkVerifyData reports whether got matches want in constant time.
func checkVerifyData(got, want []byte) bool {
	return len(got) == len(want) && subtle.ConstantTimeCompare(got, want) == 1
}
