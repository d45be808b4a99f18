package body

import (
	"encoding/base64"
	"fmt"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

// EncryptedAttachment is the content of an attachment ready for upload.
type EncryptedAttachment struct {
	// KeyPackets holds the base64 encoded session key packets, encrypted for the key ring.
	KeyPackets string

	DataPacket []byte

	// Signature is the armored detached signature of the plaintext content.
	Signature string
}

// EncryptAttachment splits the content into key and data packets and signs it with the same key ring.
func EncryptAttachment(kr *crypto.KeyRing, name string, data []byte) (EncryptedAttachment, error) {
	if kr == nil {
		return EncryptedAttachment{}, ErrNoKeyRing
	}

	plain := crypto.NewPlainMessage(data)

	split, err := kr.EncryptAttachment(plain, name)
	if err != nil {
		return EncryptedAttachment{}, fmt.Errorf("failed to encrypt attachment: %w", err)
	}

	sig, err := kr.SignDetached(plain)
	if err != nil {
		return EncryptedAttachment{}, fmt.Errorf("failed to sign attachment: %w", err)
	}

	armored, err := sig.GetArmored()
	if err != nil {
		return EncryptedAttachment{}, fmt.Errorf("failed to armor attachment signature: %w", err)
	}

	return EncryptedAttachment{
		KeyPackets: base64.StdEncoding.EncodeToString(split.KeyPacket),
		DataPacket: split.DataPacket,
		Signature:  armored,
	}, nil
}

// DecryptAttachment returns the plaintext content of an attachment encrypted with EncryptAttachment.
func DecryptAttachment(kr *crypto.KeyRing, keyPackets string, dataPacket []byte) ([]byte, error) {
	if kr == nil {
		return nil, ErrNoKeyRing
	}

	keyPacket, err := base64.StdEncoding.DecodeString(keyPackets)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment key packets: %w", err)
	}

	plain, err := kr.DecryptAttachment(crypto.NewPGPSplitMessage(keyPacket, dataPacket))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt attachment: %w", err)
	}

	return plain.GetBinary(), nil
}
