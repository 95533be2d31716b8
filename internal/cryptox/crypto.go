// Package cryptox implements the key stretching and credential-blob
// encryption used by the auth core.
//
// The same derivation primitive serves two distinct purposes with
// independently generated salts: verifying a password against the stored
// hash, and deriving the symmetric key that encrypts the credential record
// itself. The second key derives from the raw username+password
// concatenation (see KeyInput) because it must be reconstructible from only
// what the user supplies at login time, before the record is decrypted.
//
// Accepted limitation: with no server to hold a secret, the blob key is by
// construction reconstructible from the correct credentials. This protects
// the stored record against casual inspection and tampering, not against an
// attacker who already knows or guesses the password.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/FalconEthics/lotus-auth/internal/common"
)

const (
	// KeySize is the derived key length in bytes (256-bit).
	KeySize = 32

	// SaltSize is the length of freshly generated salts.
	SaltSize = 32

	// MinIterations is the lowest PBKDF2 iteration count the module accepts.
	MinIterations = 10000

	nonceSize = 12
)

// DeriveKey stretches secret with salt using PBKDF2-SHA256. Deterministic:
// same inputs always produce the same key; different salts produce different
// keys even for identical secrets.
func DeriveKey(secret, salt []byte, iterations int) []byte {
	return pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New)
}

// KeyInput returns the derivation input for the credential-blob key: the
// username+password concatenation. Kept as an explicit function so the
// blob-key call sites are visibly distinct from password-hash call sites.
func KeyInput(username, password string) []byte {
	return []byte(username + password)
}

// VerifyHash compares a stored hash against a candidate in constant time.
func VerifyHash(stored, candidate []byte) bool {
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}

// envelope is the serialized form of an encrypted record. The key salt
// travels in clear alongside the ciphertext so the blob key can be
// re-derived from user-supplied credentials alone.
type envelope struct {
	KeySalt    []byte `json:"key_salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal serializes v to JSON and encrypts it with AES-256-GCM under a key
// derived from secret and a freshly generated key salt. The returned string
// is the JSON envelope carrying key salt, nonce and ciphertext.
//
// Every call generates a new key salt and nonce, so sealing the same value
// twice never yields the same output.
func Seal(v any, secret []byte, iterations int) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	keySalt := common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(secret, keySalt, iterations)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(nonceSize)
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	blob, err := json.Marshal(envelope{KeySalt: keySalt, Nonce: nonce, Ciphertext: ciphertext})
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// Open decrypts a blob produced by Seal, re-deriving the key from secret and
// the envelope's key salt, and unmarshals the plaintext into v. A malformed
// envelope, a wrong secret, or tampered ciphertext all yield
// common.ErrDecryptionFailure.
func Open(blob string, secret []byte, iterations int, v any) error {
	var env envelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return fmt.Errorf("%w: malformed envelope", common.ErrDecryptionFailure)
	}
	// GCM panics on a wrong-length nonce rather than returning an error.
	if len(env.Nonce) != nonceSize {
		return fmt.Errorf("%w: malformed envelope", common.ErrDecryptionFailure)
	}

	key := DeriveKey(secret, env.KeySalt, iterations)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecryptionFailure, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: invalid plaintext", common.ErrDecryptionFailure)
	}
	return nil
}
