package service

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"io"
	mrand "math/rand/v2"
)

const nonceBytes = 16

// NonceSource produces correlation tokens for sign-in messages and signing requests.
// It reads from a cryptographic source and falls back to math/rand when that source fails.
type NonceSource struct {
	strong io.Reader
}

// NewNonceSource creates a nonce source backed by crypto/rand
func NewNonceSource() *NonceSource {
	return &NonceSource{strong: rand.Reader}
}

// Next returns a fresh 32 character hex nonce. It never returns an empty string.
func (n *NonceSource) Next() string {
	buf := make([]byte, nonceBytes)
	if n.strong == nil {
		fillWeak(buf)
		return hex.EncodeToString(buf)
	}
	if _, err := io.ReadFull(n.strong, buf); err != nil {
		fillWeak(buf)
	}
	return hex.EncodeToString(buf)
}

func fillWeak(buf []byte) {
	for i := 0; i < len(buf); i += 8 {
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], mrand.Uint64())
		copy(buf[i:], word[:])
	}
}
