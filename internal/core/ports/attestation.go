package ports

type AttestationVerifier interface {
	// RecoverSigner returns the account that produced an eth_sign signature
	// over the 32-byte digest.
	RecoverSigner(digest []byte, signature string) (string, error)
}

type AttestationSigner interface {
	Address() string
	Sign(digest []byte) (string, error)
}
