// Package widgetprefs provides an adapter for the encryption package.
package widgetprefs

import (
	"github.com/CreativeUnicorns/widgetprefs/encryption"
)

// EncryptionAdapter adapts encryption.Manager to the Encryptor interface.
type EncryptionAdapter struct {
	manager *encryption.Manager
}

// NewEncryptionAdapter creates an EncryptionAdapter with the key from the
// environment. It fails fast if the key is missing or too short.
func NewEncryptionAdapter() (*EncryptionAdapter, error) {
	manager, err := encryption.NewManager()
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// NewEncryptionAdapterWithKey creates an EncryptionAdapter from explicit key material.
func NewEncryptionAdapterWithKey(key []byte) (*EncryptionAdapter, error) {
	manager, err := encryption.NewManagerWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// Encrypt encrypts plaintext and returns the encrypted value as a string.
func (e *EncryptionAdapter) Encrypt(plaintext string) (string, error) {
	return e.manager.Encrypt(plaintext)
}

// Decrypt decrypts an encrypted value and returns the original plaintext.
func (e *EncryptionAdapter) Decrypt(encrypted string) (string, error) {
	return e.manager.Decrypt(encrypted)
}
