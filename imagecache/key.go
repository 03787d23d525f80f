// Package imagecache implements the content-addressed local image cache.
//
// key.go contains the pure key derivation atom. A cache key identifies
// one unique combination of effective prompt, negative prompt, and
// output dimensions.
package imagecache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
)

// Key is a deterministic, filesystem-safe cache identifier: the lowercase
// hex encoding of a SHA-256 digest (64 characters).
type Key string

// String returns the key as a plain string.
func (k Key) String() string { return string(k) }

// Valid reports whether the key looks like a well-formed digest.
// Used by HTTP handlers to reject path-traversal attempts before any
// filesystem access.
func (k Key) Valid() bool {
	if len(k) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(string(k))
	return err == nil
}

// DeriveKey computes the cache key for one generation request.
//
// The canonical form frames every field with its byte length before
// hashing, so no arrangement of field contents can collide: the inputs
// ("a|b", "") and ("a", "b") hash differently regardless of what
// characters the prompt contains. Determinism and collision resistance
// are the only required properties; the digest carries no secret.
func DeriveKey(effectivePrompt, negative string, width, height int) Key {
	h := sha256.New()
	writeFramed(h, []byte(effectivePrompt))
	writeFramed(h, []byte(negative))

	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:4], uint32(width))
	binary.BigEndian.PutUint32(dims[4:8], uint32(height))
	h.Write(dims[:])

	return Key(hex.EncodeToString(h.Sum(nil)))
}

// writeFramed writes a length prefix followed by the field bytes.
func writeFramed(h io.Writer, field []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(field)))
	h.Write(n[:])
	h.Write(field)
}
