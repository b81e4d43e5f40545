package dtls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/asn1"
	"encoding/binary"
	"math/big"

	"github.com/segmentnet/dtlsclient/internal/protocol/handshake"
)

// ecdsaSignature is the ASN.1 structure an ECDSA signature is wrapped in
// on the wire.
type ecdsaSignature struct {
	R, S *big.Int
}

// serverKeyExchangeSignatureInput builds the exact byte string the
// server's ECDHE ServerKeyExchange signature covers.
//
// https://tools.ietf.org/html/rfc4492#section-5.4
func serverKeyExchangeSignatureInput(clientRandom, serverRandom []byte, curve handshake.NamedCurve, publicKey []byte) []byte {
	params := []byte{handshake.ECCurveTypeNamedCurve, 0, 0, byte(len(publicKey))}
	binary.BigEndian.PutUint16(params[1:], uint16(curve))

	out := append([]byte{}, clientRandom...)
	out = append(out, serverRandom...)
	out = append(out, params...)
	out = append(out, publicKey...)

	return out
}

func cryptoHash(h handshake.HashAlgorithm) crypto.Hash {
	switch h {
	case handshake.HashAlgorithmSHA384:
		return crypto.SHA384
	case handshake.HashAlgorithmSHA512:
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}

// verifyServerKeySignature checks the server's ECDHE ServerKeyExchange
// signature against the leaf public key, covering the three signature
// algorithms this driver negotiates.
func verifyServerKeySignature(pub crypto.PublicKey, message, sig []byte, hashAlg handshake.HashAlgorithm, sigAlg handshake.SignatureAlgorithm) error {
	switch key := pub.(type) {
	case ed25519.PublicKey:
		if !ed25519.Verify(key, message, sig) {
			return errKeySignatureMismatch
		}

		return nil

	case *ecdsa.PublicKey:
		parsed := &ecdsaSignature{}
		if _, err := asn1.Unmarshal(sig, parsed); err != nil {
			return err
		}
		if parsed.R.Sign() <= 0 || parsed.S.Sign() <= 0 {
			return errKeySignatureMismatch
		}
		h := cryptoHash(hashAlg).New()
		h.Write(message)
		if !ecdsa.Verify(key, h.Sum(nil), parsed.R, parsed.S) {
			return errKeySignatureMismatch
		}

		return nil

	case *rsa.PublicKey:
		h := cryptoHash(hashAlg).New()
		h.Write(message)
		if rsa.VerifyPKCS1v15(key, cryptoHash(hashAlg), h.Sum(nil), sig) != nil {
			return errKeySignatureMismatch
		}

		return nil

	default:
		return errKeySignatureMismatch
	}
}

// selectSignatureAlgorithm picks the first signature-and-hash pair the
// server offered in CertificateRequest that this driver's configured
// signer can honor.
func selectSignatureAlgorithm(offered []handshake.SignatureHashAlgorithm, signer crypto.Signer) (handshake.HashAlgorithm, handshake.SignatureAlgorithm, error) {
	wantECDSA := false
	wantRSA := false
	switch signer.Public().(type) {
	case *ecdsa.PublicKey:
		wantECDSA = true
	case *rsa.PublicKey:
		wantRSA = true
	case ed25519.PublicKey:
	default:
		return 0, 0, errNoSharedSignatureAlg
	}

	for _, alg := range offered {
		switch {
		case wantECDSA && alg.Signature == handshake.SignatureAlgorithmECDSA:
			return alg.Hash, alg.Signature, nil
		case wantRSA && alg.Signature == handshake.SignatureAlgorithmRSA:
			return alg.Hash, alg.Signature, nil
		case alg.Signature == handshake.SignatureAlgorithmEd25519:
			if _, ok := signer.Public().(ed25519.PublicKey); ok {
				return alg.Hash, alg.Signature, nil
			}
		}
	}

	return 0, 0, errNoSharedSignatureAlg
}

// signCertificateVerify signs the handshake transcript with the
// configured long-term key, per the selected signature algorithm.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.8
func signCertificateVerify(signer crypto.Signer, hashAlg handshake.HashAlgorithm, transcript []byte) ([]byte, error) {
	if _, ok := signer.Public().(ed25519.PublicKey); ok {
		return signer.Sign(rand.Reader, transcript, crypto.Hash(0))
	}

	h := cryptoHash(hashAlg).New()
	h.Write(transcript)

	return signer.Sign(rand.Reader, h.Sum(nil), cryptoHash(hashAlg))
}
