package handshake

// HashAlgorithm is the one-byte hash algorithm identifier used in
// signature_algorithms and CertificateVerify/ServerKeyExchange.
//
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-18
type HashAlgorithm uint8

// Hash algorithm values this driver negotiates.
const (
	HashAlgorithmSHA256 HashAlgorithm = 4
	HashAlgorithmSHA384 HashAlgorithm = 5
	HashAlgorithmSHA512 HashAlgorithm = 6
)

// SignatureAlgorithm is the one-byte signature algorithm identifier used
// alongside HashAlgorithm.
//
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-16
type SignatureAlgorithm uint8

// Signature algorithm values this driver negotiates.
const (
	SignatureAlgorithmAnonymous SignatureAlgorithm = 0
	SignatureAlgorithmRSA       SignatureAlgorithm = 1
	SignatureAlgorithmECDSA     SignatureAlgorithm = 3
	SignatureAlgorithmEd25519   SignatureAlgorithm = 7
)
