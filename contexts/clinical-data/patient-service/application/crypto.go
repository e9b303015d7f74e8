package application

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// MRNCipher encrypts medical record numbers with AES-GCM before they reach a
// repository. Ciphertexts are self-contained: nonce || sealed, base64-encoded.
type MRNCipher struct {
	aead cipher.AEAD
}

func NewMRNCipher(key []byte) (MRNCipher, error) {
	if len(key) != 32 {
		return MRNCipher{}, fmt.Errorf("mrn cipher key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return MRNCipher{}, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return MRNCipher{}, err
	}
	return MRNCipher{aead: aead}, nil
}

func (c MRNCipher) Encrypt(plain string) (string, error) {
	if c.aead == nil {
		return "", errors.New("mrn cipher is not initialized")
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c MRNCipher) Decrypt(encoded string) (string, error) {
	if c.aead == nil {
		return "", errors.New("mrn cipher is not initialized")
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", errors.New("mrn ciphertext is too short")
	}
	nonce, body := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
