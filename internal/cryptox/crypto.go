// Package cryptox seals small local state blobs at rest.
//
// A 32-byte key is derived with Argon2id from a secret (a user passphrase or
// a per-device random key) and a stored salt. Values are JSON encoded and
// sealed with AES-256-GCM; the random nonce is prepended to the ciphertext so
// a sealed blob is self-contained.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

// ErrMalformed is returned by Open when the blob is shorter than a nonce.
var ErrMalformed = errors.New("sealed blob is malformed")

// DeriveMasterKey derives a 32-byte key from secret and salt with Argon2id.
func DeriveMasterKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns a digest of the key that can be stored next to the
// salt and compared later to detect a wrong secret before any Open call.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal serializes v to JSON and encrypts it with AES-GCM under key.
// The result is nonce || ciphertext.
func Seal(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal and unmarshals the plaintext JSON into v.
func Open(sealed, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	if len(sealed) < aead.NonceSize() {
		return ErrMalformed
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}
