package auth

import (
	"crypto/rand"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a plaintext secret against a stored hash.
type Verifier interface {
	Verify(password, hash string) bool
}

// BcryptVerifier verifies bcrypt hashes. bcrypt compares digests in constant time.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(password, hash string) bool {
	return VerifyPassword(hash, password) == nil
}

// HashPassword hashes plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// fallbackDummyHash is a well-formed cost-10 bcrypt hash used when a random
// one cannot be generated.
const fallbackDummyHash = "$2a$10$bL.jzcPl5JyiHfFFT9LUl.jEwslz8pReSzZi6kQD9ANbVE.dJwYey"

var (
	dummyOnce sync.Once
	dummyHash string
)

// DummyHash returns a bcrypt hash of random bytes that no password matches.
// Verifying against it costs the same as a real check, which keeps unknown
// usernames indistinguishable by response time.
func DummyHash() string {
	dummyOnce.Do(func() {
		dummyHash = newDummyHash(rand.Read)
	})
	return dummyHash
}

func newDummyHash(read func([]byte) (int, error)) string {
	secret := make([]byte, 32)
	if _, err := read(secret); err != nil {
		return fallbackDummyHash
	}
	hash, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return fallbackDummyHash
	}
	return string(hash)
}
