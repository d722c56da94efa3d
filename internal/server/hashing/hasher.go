// Package hashing provides the credential-hashing capability used by the
// data accessor and the auth resolver.
package hashing

import "golang.org/x/crypto/bcrypt"

// Hasher turns a plaintext credential into a one-way digest and checks a
// plaintext candidate against a stored digest.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher implements Hasher with bcrypt. Hashing is intentionally slow;
// it runs inside the accessor's serialized worker, so the cost directly
// bounds mutation throughput.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
