// Package body encrypts draft bodies with the sender address key before they are stored or uploaded.
package body

import (
	"errors"
	"fmt"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

var ErrNoKeyRing = errors.New("no key ring to encrypt the draft body with")

// Encrypt returns the armored PGP message of the plaintext body, signed with the same key ring.
// A body which already is an armored PGP message is returned unchanged.
func Encrypt(kr *crypto.KeyRing, plaintext string) (string, error) {
	if kr == nil {
		return "", ErrNoKeyRing
	}

	if plaintext == "" {
		return "", nil
	}

	if msg, err := crypto.NewPGPMessageFromArmored(plaintext); err == nil {
		return msg.GetArmored()
	}

	enc, err := kr.Encrypt(crypto.NewPlainMessageFromString(plaintext), kr)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt draft body: %w", err)
	}

	return enc.GetArmored()
}

// Decrypt returns the plaintext of the armored body.
func Decrypt(kr *crypto.KeyRing, armored string) (string, error) {
	if kr == nil {
		return "", ErrNoKeyRing
	}

	if armored == "" {
		return "", nil
	}

	msg, err := crypto.NewPGPMessageFromArmored(armored)
	if err != nil {
		return "", fmt.Errorf("failed to parse draft body: %w", err)
	}

	dec, err := kr.Decrypt(msg, nil, 0)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt draft body: %w", err)
	}

	return dec.GetString(), nil
}
