// Package hash derives the keys used to encrypt the draft store.
package hash

import "crypto/sha256"

// PassphraseKey returns the 32 byte AES-256 key badger encrypts the draft store with.
func PassphraseKey(passphrase []byte) []byte {
	key := sha256.Sum256(passphrase)
	return key[:]
}
