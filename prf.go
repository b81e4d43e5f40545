package dtls

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// prfHashAlgorithm identifies which hash backs a cipher suite's PRF.
// Every suite this driver negotiates today uses SHA-256, but the PRF
// itself is written against the interface so adding a SHA-384 suite
// later is a one-line registry change, not a rewrite.
type prfHashAlgorithm int

// PRF hashes this driver can produce P_hash output with.
const (
	prfHashSHA256 prfHashAlgorithm = iota
	prfHashSHA384
)

func (a prfHashAlgorithm) new() func() hash.Hash {
	switch a {
	case prfHashSHA384:
		return sha512.New384
	default:
		return sha256.New
	}
}

func (a prfHashAlgorithm) size() int {
	switch a {
	case prfHashSHA384:
		return 48
	default:
		return 32
	}
}

// pHash implements the TLS 1.2 PRF's P_hash(secret, seed) data expansion
// function, producing at least length bytes.
//
// https://tools.ietf.org/html/rfc5246#section-5
func pHash(newHash func() hash.Hash, secret, seed []byte, length int) []byte {
	hmacHash := func(key, data []byte) []byte {
		mac := hmac.New(newHash, key)
		mac.Write(data)

		return mac.Sum(nil)
	}

	var out []byte
	a := seed
	for len(out) < length {
		a = hmacHash(secret, a)
		out = append(out, hmacHash(secret, append(append([]byte{}, a...), seed...))...)
	}

	return out[:length]
}

// prf is the full TLS 1.2 PRF: PRF(secret, label, seed) = P_hash(secret, label || seed).
func prf(hashAlg prfHashAlgorithm, secret []byte, label string, seed []byte, length int) []byte {
	fullSeed := append([]byte(label), seed...)

	return pHash(hashAlg.new(), secret, fullSeed, length)
}

const masterSecretLength = 48

// masterSecret derives the 48-byte master secret from the premaster
// secret and both hello randoms.
//
// https://tools.ietf.org/html/rfc5246#section-8.1
func masterSecret(hashAlg prfHashAlgorithm, preMasterSecret, clientRandom, serverRandom []byte) []byte {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)

	return prf(hashAlg, preMasterSecret, "master secret", seed, masterSecretLength)
}

// keyBlock derives length bytes of key material from the master secret.
// Seed order is reversed relative to masterSecret: server_random then
// client_random.
//
// https://tools.ietf.org/html/rfc5246#section-6.3
func keyBlock(hashAlg prfHashAlgorithm, master, clientRandom, serverRandom []byte, length int) []byte {
	seed := append(append([]byte{}, serverRandom...), clientRandom...)

	return prf(hashAlg, master, "key expansion", seed, length)
}

const verifyDataLength = 12

// verifyData computes a Finished message's verify_data: the PRF over the
// handshake transcript hash, keyed by the master secret, under label
// (either "client finished" or "server finished").
//
// https://tools.ietf.org/html/rfc5246#section-7.4.9
func verifyData(hashAlg prfHashAlgorithm, master []byte, label string, transcript []byte) []byte {
	h := hashAlg.new()()
	h.Write(transcript)
	handshakeHash := h.Sum(nil)

	return prf(hashAlg, master, label, handshakeHash, verifyDataLength)
}
