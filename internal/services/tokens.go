package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const (
	shareTokenLen   = 32
	shareTokenChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewShareToken returns a 32-char alphanumeric token for a user's public
// send-link. Collision handling is the caller's job (retry on unique
// constraint), same as registration codes elsewhere.
func NewShareToken() string {
	buf := make([]byte, shareTokenLen)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	for i, b := range buf {
		buf[i] = shareTokenChars[int(b)%len(shareTokenChars)]
	}
	return string(buf)
}

// NewSessionToken returns a 64-char hex bearer token for admin sessions.
func NewSessionToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
