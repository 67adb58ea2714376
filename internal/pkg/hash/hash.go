package hash

// Hash abstracts one-way hashing of secrets.
//
// Implementations may be slow password hashes (bcrypt) or keyed
// fast hashes (HMAC) for tokens stored at rest.
type Hash interface {
	// Hash returns the hash of the plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the previously produced hash.
	Verify(hashed, plaintext string) bool
}
